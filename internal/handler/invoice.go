package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// InvoiceHandler issues invoices against completed repair orders.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Orders   *repository.RepairOrderRepo
}

func NewInvoiceHandler(i *repository.InvoiceRepo, o *repository.RepairOrderRepo) *InvoiceHandler {
	return &InvoiceHandler{Invoices: i, Orders: o}
}

type createInvoiceReq struct {
	RepairOrderID uint64     `json:"repair_order_id"`
	TaxCents      int64      `json:"tax_cents"`
	DiscountCents int64      `json:"discount_cents"`
	DueDate       *time.Time `json:"due_date"`
	Notes         string     `json:"notes"`
}

// Create issues an invoice for a completed repair order. The subtotal is the
// order's running total; one invoice per order.
func (h *InvoiceHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req createInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RepairOrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "repair_order_id required"})
	}
	if req.TaxCents < 0 || req.DiscountCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tax and discount must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, tenantID, req.RepairOrderID)
	if err != nil {
		return repoError(c, err, "repair order not found")
	}
	if o.Status != model.OrderCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order must be completed before invoicing"})
	}

	total := o.TotalCents + req.TaxCents - req.DiscountCents
	if total < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount exceeds invoice total"})
	}

	due := req.DueDate
	if due == nil {
		d := time.Now().UTC().AddDate(0, 0, 30)
		due = &d
	}

	inv := &model.Invoice{
		TenantID:      tenantID,
		RepairOrderID: o.ID,
		InvoiceNumber: newRefNumber("INV"),
		Status:        model.InvoiceDraft,
		SubtotalCents: o.TotalCents,
		TaxCents:      req.TaxCents,
		DiscountCents: req.DiscountCents,
		TotalCents:    total,
		DueDate:       due,
		Notes:         req.Notes,
	}
	if err := h.Invoices.Create(ctx, inv); err != nil {
		return repoError(c, err, "invoice not found")
	}
	if err := h.Orders.UpdateStatus(ctx, tenantID, o.ID, model.OrderInvoiced); err != nil {
		return repoError(c, err, "repair order not found")
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) Get(c echo.Context) error {
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

	inv, err := h.Invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "invoice not found")
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)
	status := c.QueryParam("status")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	invoices, err := h.Invoices.List(ctx, tenantID, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": invoices, "limit": limit, "offset": offset})
}

// Send moves a draft invoice to sent.
func (h *InvoiceHandler) Send(c echo.Context) error {
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

	inv, err := h.Invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "invoice not found")
	}
	if inv.Status != model.InvoiceDraft {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only draft invoices can be sent"})
	}
	if err := h.Invoices.UpdateStatus(ctx, tenantID, id, model.InvoiceSent); err != nil {
		return repoError(c, err, "invoice not found")
	}
	inv.Status = model.InvoiceSent
	return c.JSON(http.StatusOK, inv)
}

// Void cancels an unpaid invoice.
func (h *InvoiceHandler) Void(c echo.Context) error {
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

	inv, err := h.Invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "invoice not found")
	}
	if inv.Status == model.InvoicePaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "paid invoices cannot be voided"})
	}
	if err := h.Invoices.UpdateStatus(ctx, tenantID, id, model.InvoiceCancelled); err != nil {
		return repoError(c, err, "invoice not found")
	}
	inv.Status = model.InvoiceCancelled
	return c.JSON(http.StatusOK, inv)
}
