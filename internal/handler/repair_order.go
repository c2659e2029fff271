package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// RepairOrderHandler manages the repair order lifecycle including parts and
// labor lines.
type RepairOrderHandler struct {
	Orders    *repository.RepairOrderRepo
	Customers *repository.CustomerRepo
	Vehicles  *repository.VehicleRepo
}

func NewRepairOrderHandler(o *repository.RepairOrderRepo, cu *repository.CustomerRepo, v *repository.VehicleRepo) *RepairOrderHandler {
	return &RepairOrderHandler{Orders: o, Customers: cu, Vehicles: v}
}

// orderTransitions lists the statuses reachable from each status. Orders
// move forward; cancellation is allowed from any non-terminal state.
var orderTransitions = map[string][]string{
	model.OrderDraft:      {model.OrderQuoted, model.OrderCancelled},
	model.OrderQuoted:     {model.OrderApproved, model.OrderCancelled},
	model.OrderApproved:   {model.OrderInProgress, model.OrderCancelled},
	model.OrderInProgress: {model.OrderCompleted, model.OrderCancelled},
	model.OrderCompleted:  {model.OrderInvoiced, model.OrderCancelled},
	model.OrderInvoiced:   {model.OrderPaid, model.OrderCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type createOrderReq struct {
	CustomerID    uint64 `json:"customer_id"`
	VehicleID     uint64 `json:"vehicle_id"`
	Description   string `json:"description"`
	CustomerNotes string `json:"customer_notes"`
}

type updateOrderReq struct {
	Description        string  `json:"description"`
	CustomerNotes      string  `json:"customer_notes"`
	InternalNotes      string  `json:"internal_notes"`
	AssignedMechanicID *uint64 `json:"assigned_mechanic_id"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type addPartReq struct {
	InventoryID uint64 `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
}

type addLaborReq struct {
	ServiceCode     string  `json:"service_code"`
	Description     string  `json:"description"`
	HoursHundredths int     `json:"hours_hundredths"`
	HourlyRateCents int64   `json:"hourly_rate_cents"`
	MechanicID      *uint64 `json:"mechanic_id"`
}

func (h *RepairOrderHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CustomerID == 0 || req.VehicleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and vehicle_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, tenantID, req.CustomerID); err != nil {
		return repoError(c, err, "customer not found")
	}
	v, err := h.Vehicles.GetByID(ctx, tenantID, req.VehicleID)
	if err != nil {
		return repoError(c, err, "vehicle not found")
	}
	if v.CustomerID != req.CustomerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle does not belong to customer"})
	}

	o := &model.RepairOrder{
		TenantID:      tenantID,
		CustomerID:    req.CustomerID,
		VehicleID:     req.VehicleID,
		OrderNumber:   newRefNumber("RO"),
		Status:        model.OrderDraft,
		Description:   strings.TrimSpace(req.Description),
		CustomerNotes: req.CustomerNotes,
	}
	if err := h.Orders.Create(ctx, o); err != nil {
		return repoError(c, err, "repair order not found")
	}
	return c.JSON(http.StatusCreated, o)
}

// Get returns the order together with its parts and labor lines.
func (h *RepairOrderHandler) Get(c echo.Context) error {
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

	o, err := h.Orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if deny := h.denyForeignCustomer(c, o.CustomerID); deny != nil {
		return deny
	}

	parts, err := h.Orders.Parts(ctx, tenantID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	labor, err := h.Orders.LaborLines(ctx, tenantID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": o, "parts": parts, "labor": labor})
}

func (h *RepairOrderHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)

	status := c.QueryParam("status")
	if status != "" && !model.ValidOrderStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	customerID := uint64(0)
	if s := c.QueryParam("customer_id"); s != "" {
		customerID, _ = strconv.ParseUint(s, 10, 64)
	}
	u := middleware.CurrentUser(c)
	if u.Role == model.RoleCustomer {
		if u.CustomerID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no customer profile"})
		}
		customerID = *u.CustomerID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx, tenantID, status, customerID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "limit": limit, "offset": offset})
}

func (h *RepairOrderHandler) Update(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if req.Description != "" {
		o.Description = strings.TrimSpace(req.Description)
	}
	if req.CustomerNotes != "" {
		o.CustomerNotes = req.CustomerNotes
	}
	if req.InternalNotes != "" {
		o.InternalNotes = req.InternalNotes
	}
	if req.AssignedMechanicID != nil {
		o.AssignedMechanicID = req.AssignedMechanicID
	}
	if err := h.Orders.Update(ctx, o); err != nil {
		return repoError(c, err, "repair order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *RepairOrderHandler) UpdateStatus(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if !canTransition(o.Status, req.Status) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "cannot move order from " + o.Status + " to " + req.Status,
		})
	}
	if err := h.Orders.UpdateStatus(ctx, tenantID, id, req.Status); err != nil {
		return repoError(c, err, "repair order not found")
	}
	o.Status = req.Status
	return c.JSON(http.StatusOK, o)
}

// AddPart consumes inventory onto the order. Stock is decremented in the
// same transaction; insufficient stock is a 409.
func (h *RepairOrderHandler) AddPart(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req addPartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.InventoryID == 0 || req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inventory_id and positive quantity required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if o.Status == model.OrderPaid || o.Status == model.OrderCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is closed"})
	}

	p := &model.PartsUsage{
		TenantID:      tenantID,
		RepairOrderID: id,
		InventoryID:   req.InventoryID,
		Quantity:      req.Quantity,
	}
	if err := h.Orders.AddPart(ctx, p); err != nil {
		return repoError(c, err, "inventory item not found")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RepairOrderHandler) AddLabor(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req addLaborReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Description == "" || req.HoursHundredths <= 0 || req.HourlyRateCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description, hours and rate required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if o.Status == model.OrderPaid || o.Status == model.OrderCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is closed"})
	}

	l := &model.Labor{
		TenantID:        tenantID,
		RepairOrderID:   id,
		ServiceCode:     strings.TrimSpace(req.ServiceCode),
		Description:     strings.TrimSpace(req.Description),
		HoursHundredths: req.HoursHundredths,
		HourlyRateCents: req.HourlyRateCents,
		MechanicID:      req.MechanicID,
	}
	if err := h.Orders.AddLabor(ctx, l); err != nil {
		return repoError(c, err, "repair order not found")
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *RepairOrderHandler) denyForeignCustomer(c echo.Context, ownerID uint64) error {
	u := middleware.CurrentUser(c)
	if u.Role != model.RoleCustomer {
		return nil
	}
	if u.CustomerID == nil || *u.CustomerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your repair order"})
	}
	return nil
}
