package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// InventoryHandler manages a garage's parts inventory.
type InventoryHandler struct {
	Inventory *repository.InventoryRepo
}

func NewInventoryHandler(r *repository.InventoryRepo) *InventoryHandler {
	return &InventoryHandler{Inventory: r}
}

type inventoryReq struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`

	StockQuantity int   `json:"stock_quantity"`
	ReorderLevel  int   `json:"reorder_level"`
	CostCents     int64 `json:"cost_cents"`
	PriceCents    int64 `json:"price_cents"`

	SupplierName    string `json:"supplier_name"`
	SupplierContact string `json:"supplier_contact"`
}

type adjustStockReq struct {
	Delta int `json:"delta"`
}

func (h *InventoryHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku and name required"})
	}
	if req.StockQuantity < 0 || req.ReorderLevel < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantities must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it := &model.InventoryItem{
		TenantID:        tenantID,
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		StockQuantity:   req.StockQuantity,
		ReorderLevel:    req.ReorderLevel,
		CostCents:       req.CostCents,
		PriceCents:      req.PriceCents,
		SupplierName:    req.SupplierName,
		SupplierContact: req.SupplierContact,
	}
	if err := h.Inventory.Create(ctx, it); err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *InventoryHandler) Get(c echo.Context) error {
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

	it, err := h.Inventory.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.JSON(http.StatusOK, it)
}

func (h *InventoryHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)
	lowStockOnly := c.QueryParam("low_stock") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Inventory.List(ctx, tenantID, lowStockOnly, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit, "offset": offset})
}

func (h *InventoryHandler) Update(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Inventory.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "inventory item not found")
	}
	if req.Name != "" {
		it.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		it.Description = req.Description
	}
	if req.Category != "" {
		it.Category = req.Category
	}
	if req.ReorderLevel >= 0 {
		it.ReorderLevel = req.ReorderLevel
	}
	if req.CostCents > 0 {
		it.CostCents = req.CostCents
	}
	if req.PriceCents > 0 {
		it.PriceCents = req.PriceCents
	}
	if req.SupplierName != "" {
		it.SupplierName = req.SupplierName
	}
	if req.SupplierContact != "" {
		it.SupplierContact = req.SupplierContact
	}
	if err := h.Inventory.Update(ctx, it); err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.JSON(http.StatusOK, it)
}

// AdjustStock applies a signed delta to the stock level. Driving the count
// below zero is a 409.
func (h *InventoryHandler) AdjustStock(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adjustStockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delta must be non-zero"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Inventory.AdjustStock(ctx, tenantID, id, req.Delta)
	if err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.JSON(http.StatusOK, it)
}

func (h *InventoryHandler) Delete(c echo.Context) error {
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

	if err := h.Inventory.Delete(ctx, tenantID, id); err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.NoContent(http.StatusNoContent)
}
