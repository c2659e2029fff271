package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

const dbTimeout = 5 * time.Second

// tenantOf resolves the tenant a request operates on. Staff and customers
// are pinned to their own tenant; a super admin selects one with the
// tenant_id query parameter.
func tenantOf(c echo.Context) (uint64, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return 0, errors.New("no authenticated user")
	}
	if u.Role == model.RoleSuperAdmin {
		if s := c.QueryParam("tenant_id"); s != "" {
			if id, err := strconv.ParseUint(s, 10, 64); err == nil && id != 0 {
				return id, nil
			}
		}
		return 0, errors.New("tenant_id required for super admin")
	}
	if u.TenantID == nil {
		return 0, errors.New("user has no tenant")
	}
	return *u.TenantID, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// paging reads limit/offset query params with sane bounds.
func paging(c echo.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// repoError maps repository sentinels onto HTTP responses.
func repoError(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "operation conflicts with existing data"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
}

// newRefNumber builds a human-readable reference like RO-20260826-3F2A9C.
func newRefNumber(prefix string) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(b)))
}
