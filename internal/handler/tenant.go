package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// TenantHandler serves the public garage directory and super-admin tenant
// management.
type TenantHandler struct {
	Tenants *repository.TenantRepo
}

func NewTenantHandler(t *repository.TenantRepo) *TenantHandler {
	return &TenantHandler{Tenants: t}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type createTenantReq struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Directory lists active garages. Public, served behind the response cache.
func (h *TenantHandler) Directory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tenants, err := h.Tenants.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"garages": tenants})
}

// BySlug returns one active garage. Public.
func (h *TenantHandler) BySlug(c echo.Context) error {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tenants.GetBySlug(ctx, slug)
	if err != nil {
		return repoError(c, err, "garage not found")
	}
	return c.JSON(http.StatusOK, t)
}

// Create registers a new garage. Super admin only.
func (h *TenantHandler) Create(c echo.Context) error {
	var req createTenantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and slug required"})
	}
	if !slugPattern.MatchString(req.Slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug must be lowercase letters, digits and hyphens"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t := &model.Tenant{
		Name:     req.Name,
		Slug:     req.Slug,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: true,
	}
	if err := h.Tenants.Create(ctx, t); err != nil {
		return repoError(c, err, "garage not found")
	}
	return c.JSON(http.StatusCreated, t)
}
