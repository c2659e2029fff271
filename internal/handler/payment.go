package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/gateway"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// PaymentHandler records payments against invoices. Cash-like methods
// complete immediately; Stripe payments start pending with a client secret
// and are completed by Complete once the intent succeeds.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Invoices *repository.InvoiceRepo
	Orders   *repository.RepairOrderRepo
	Stripe   *gateway.StripeClient
}

func NewPaymentHandler(p *repository.PaymentRepo, i *repository.InvoiceRepo, o *repository.RepairOrderRepo, stripe *gateway.StripeClient) *PaymentHandler {
	return &PaymentHandler{Payments: p, Invoices: i, Orders: o, Stripe: stripe}
}

type createPaymentReq struct {
	InvoiceID   uint64 `json:"invoice_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Notes       string `json:"notes"`
}

func (h *PaymentHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.InvoiceID == 0 || req.AmountCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invoice_id and positive amount required"})
	}
	if !model.ValidPaymentMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	inv, err := h.Invoices.GetByID(ctx, tenantID, req.InvoiceID)
	if err != nil {
		return repoError(c, err, "invoice not found")
	}
	if inv.Status == model.InvoicePaid || inv.Status == model.InvoiceCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invoice is closed"})
	}
	if req.AmountCents > inv.TotalCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount exceeds invoice total"})
	}

	p := &model.Payment{
		TenantID:      tenantID,
		InvoiceID:     inv.ID,
		PaymentNumber: newRefNumber("PAY"),
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Notes:         req.Notes,
	}

	if req.Method == model.PayMethodStripe {
		intent, err := h.Stripe.CreatePaymentIntent(ctx, req.AmountCents, "usd", "",
			fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
			map[string]string{
				"invoice_id": strconv.FormatUint(inv.ID, 10),
				"tenant_id":  strconv.FormatUint(tenantID, 10),
			})
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
		}
		p.Status = model.PayPending
		p.StripePaymentIntentID = intent.ID
		if err := h.Payments.Create(ctx, p); err != nil {
			return repoError(c, err, "payment not found")
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"payment":       p,
			"client_secret": intent.ClientSecret,
		})
	}

	// Cash, check, ACH and other offline methods settle immediately.
	p.Status = model.PayCompleted
	if err := h.Payments.Create(ctx, p); err != nil {
		return repoError(c, err, "payment not found")
	}
	if err := h.settleIfCovered(ctx, tenantID, inv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Complete finalizes a pending Stripe payment after the intent succeeded.
func (h *PaymentHandler) Complete(c echo.Context) error {
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

	p, err := h.Payments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "payment not found")
	}
	if p.Status != model.PayPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment is not pending"})
	}
	if err := h.Payments.UpdateStatus(ctx, tenantID, id, model.PayCompleted); err != nil {
		return repoError(c, err, "payment not found")
	}
	p.Status = model.PayCompleted

	inv, err := h.Invoices.GetByID(ctx, tenantID, p.InvoiceID)
	if err != nil {
		return repoError(c, err, "invoice not found")
	}
	if err := h.settleIfCovered(ctx, tenantID, inv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) ListByInvoice(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	invoiceID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	payments, err := h.Payments.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

// settleIfCovered marks the invoice (and its order) paid once completed
// payments cover the invoice total.
func (h *PaymentHandler) settleIfCovered(ctx context.Context, tenantID uint64, inv *model.Invoice) error {
	payments, err := h.Payments.ListByInvoice(ctx, tenantID, inv.ID)
	if err != nil {
		return err
	}
	var paid int64
	for _, p := range payments {
		if p.Status == model.PayCompleted {
			paid += p.AmountCents
		}
	}
	if paid < inv.TotalCents {
		return nil
	}
	now := time.Now().UTC()
	if err := h.Invoices.MarkPaid(ctx, tenantID, inv.ID, now); err != nil {
		return err
	}
	return h.Orders.UpdateStatus(ctx, tenantID, inv.RepairOrderID, model.OrderPaid)
}
