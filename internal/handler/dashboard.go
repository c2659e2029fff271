package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// DashboardHandler serves the aggregated stats view for staff.
type DashboardHandler struct {
	Dashboard *repository.DashboardRepo
}

func NewDashboardHandler(d *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// Mechanics get their personal workload counters filled in.
	var userID uint64
	if u := middleware.CurrentUser(c); u != nil && u.Role == model.RoleMechanic {
		userID = u.ID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Dashboard.Stats(ctx, tenantID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
