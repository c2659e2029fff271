package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// ServiceCatalogHandler manages a garage's bookable service catalog. The
// public catalog endpoint is served behind the response cache.
type ServiceCatalogHandler struct {
	Services *repository.ServiceRepo
	Tenants  *repository.TenantRepo
}

func NewServiceCatalogHandler(s *repository.ServiceRepo, t *repository.TenantRepo) *ServiceCatalogHandler {
	return &ServiceCatalogHandler{Services: s, Tenants: t}
}

type serviceReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`

	DurationMinutes int   `json:"duration_minutes"`
	BasePriceCents  int64 `json:"base_price_cents"`

	IsActive        *bool `json:"is_active"`
	RequiresVehicle *bool `json:"requires_vehicle"`
	SortOrder       int   `json:"sort_order"`
}

// PublicCatalog lists the active services of one garage by slug. Public.
func (h *ServiceCatalogHandler) PublicCatalog(c echo.Context) error {
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
	services, err := h.Services.List(ctx, t.ID, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"garage": t, "services": services})
}

func (h *ServiceCatalogHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMinutes <= 0 || req.BasePriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, duration and price required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := &model.Service{
		TenantID:        tenantID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		BasePriceCents:  req.BasePriceCents,
		IsActive:        true,
		SortOrder:       req.SortOrder,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if req.RequiresVehicle != nil {
		s.RequiresVehicle = *req.RequiresVehicle
	}
	if err := h.Services.Create(ctx, s); err != nil {
		return repoError(c, err, "service not found")
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *ServiceCatalogHandler) Get(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Services.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "service not found")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ServiceCatalogHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	activeOnly := c.QueryParam("active") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	services, err := h.Services.List(ctx, tenantID, activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"services": services})
}

func (h *ServiceCatalogHandler) Update(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Services.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "service not found")
	}
	if req.Name != "" {
		s.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		s.Description = req.Description
	}
	if req.Category != "" {
		s.Category = req.Category
	}
	if req.DurationMinutes > 0 {
		s.DurationMinutes = req.DurationMinutes
	}
	if req.BasePriceCents > 0 {
		s.BasePriceCents = req.BasePriceCents
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if req.RequiresVehicle != nil {
		s.RequiresVehicle = *req.RequiresVehicle
	}
	if req.SortOrder != 0 {
		s.SortOrder = req.SortOrder
	}
	if err := h.Services.Update(ctx, s); err != nil {
		return repoError(c, err, "service not found")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ServiceCatalogHandler) Delete(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Services.Delete(ctx, tenantID, id); err != nil {
		return repoError(c, err, "service not found")
	}
	return c.NoContent(http.StatusNoContent)
}
