package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/gateway"
	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// AppointmentHandler books and manages service appointments. Price and
// duration are snapshotted from the catalog at booking time.
type AppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Services     *repository.ServiceRepo
	Customers    *repository.CustomerRepo
	Vehicles     *repository.VehicleRepo
	Stripe       *gateway.StripeClient
}

func NewAppointmentHandler(a *repository.AppointmentRepo, s *repository.ServiceRepo, cu *repository.CustomerRepo, v *repository.VehicleRepo, stripe *gateway.StripeClient) *AppointmentHandler {
	return &AppointmentHandler{Appointments: a, Services: s, Customers: cu, Vehicles: v, Stripe: stripe}
}

type createAppointmentReq struct {
	CustomerID    uint64    `json:"customer_id"`
	VehicleID     *uint64   `json:"vehicle_id"`
	ServiceID     uint64    `json:"service_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	CustomerNotes string    `json:"customer_notes"`
}

func (h *AppointmentHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req createAppointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ServiceID == 0 || req.ScheduledAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id and scheduled_at required"})
	}
	if req.ScheduledAt.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be in the future"})
	}

	u := middleware.CurrentUser(c)
	if u.Role == model.RoleCustomer {
		if u.CustomerID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no customer profile"})
		}
		req.CustomerID = *u.CustomerID
	}
	if req.CustomerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, tenantID, req.CustomerID); err != nil {
		return repoError(c, err, "customer not found")
	}
	svc, err := h.Services.GetByID(ctx, tenantID, req.ServiceID)
	if err != nil {
		return repoError(c, err, "service not found")
	}
	if !svc.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service is not bookable"})
	}
	if svc.RequiresVehicle && req.VehicleID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "this service requires a vehicle"})
	}
	if req.VehicleID != nil {
		v, err := h.Vehicles.GetByID(ctx, tenantID, *req.VehicleID)
		if err != nil {
			return repoError(c, err, "vehicle not found")
		}
		if v.CustomerID != req.CustomerID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle does not belong to customer"})
		}
	}

	a := &model.Appointment{
		TenantID:           tenantID,
		CustomerID:         req.CustomerID,
		VehicleID:          req.VehicleID,
		ServiceID:          req.ServiceID,
		ScheduledAt:        req.ScheduledAt.UTC(),
		DurationMinutes:    svc.DurationMinutes,
		Status:             model.AppointmentPending,
		PriceCents:         svc.BasePriceCents,
		CustomerNotes:      req.CustomerNotes,
		ConfirmationNumber: newRefNumber("APT"),
	}
	if err := h.Appointments.Create(ctx, a); err != nil {
		return repoError(c, err, "appointment not found")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AppointmentHandler) Get(c echo.Context) error {
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

	a, err := h.Appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "appointment not found")
	}
	if deny := h.denyForeignCustomer(c, a.CustomerID); deny != nil {
		return deny
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)

	status := c.QueryParam("status")
	if status != "" && !model.ValidAppointmentStatus(status) {
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

	appts, err := h.Appointments.List(ctx, tenantID, customerID, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": appts, "limit": limit, "offset": offset})
}

func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
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
	if !model.ValidAppointmentStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "appointment not found")
	}
	if a.Status == model.AppointmentCancelled || a.Status == model.AppointmentCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is closed"})
	}
	if err := h.Appointments.UpdateStatus(ctx, tenantID, id, req.Status); err != nil {
		return repoError(c, err, "appointment not found")
	}
	a.Status = req.Status
	return c.JSON(http.StatusOK, a)
}

// Cancel is the customer-facing cancellation endpoint.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
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

	a, err := h.Appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "appointment not found")
	}
	if deny := h.denyForeignCustomer(c, a.CustomerID); deny != nil {
		return deny
	}
	if a.Status == model.AppointmentCancelled || a.Status == model.AppointmentCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is closed"})
	}
	if err := h.Appointments.UpdateStatus(ctx, tenantID, id, model.AppointmentCancelled); err != nil {
		return repoError(c, err, "appointment not found")
	}
	a.Status = model.AppointmentCancelled
	return c.JSON(http.StatusOK, a)
}

// Pay creates a Stripe payment intent for a pending appointment and returns
// the client secret for the frontend to confirm.
func (h *AppointmentHandler) Pay(c echo.Context) error {
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

	a, err := h.Appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "appointment not found")
	}
	if deny := h.denyForeignCustomer(c, a.CustomerID); deny != nil {
		return deny
	}
	if a.Status != model.AppointmentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not awaiting payment"})
	}
	if a.PriceCents <= 0 {
		// Free services skip payment entirely.
		if err := h.Appointments.MarkPaid(ctx, tenantID, id, time.Now().UTC()); err != nil {
			return repoError(c, err, "appointment not found")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "appointment confirmed"})
	}

	cust, err := h.Customers.GetByID(ctx, tenantID, a.CustomerID)
	if err != nil {
		return repoError(c, err, "customer not found")
	}

	intent, err := h.Stripe.CreatePaymentIntent(ctx, a.PriceCents, "usd", cust.StripeCustomerID,
		fmt.Sprintf("Appointment %s", a.ConfirmationNumber),
		map[string]string{
			"appointment_id": strconv.FormatUint(a.ID, 10),
			"tenant_id":      strconv.FormatUint(tenantID, 10),
		})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}
	if err := h.Appointments.SetPaymentIntent(ctx, tenantID, id, intent.ID); err != nil {
		return repoError(c, err, "appointment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"amount_cents":      a.PriceCents,
	})
}

// ConfirmPayment marks the appointment paid once the frontend reports the
// intent succeeded.
func (h *AppointmentHandler) ConfirmPayment(c echo.Context) error {
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

	a, err := h.Appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "appointment not found")
	}
	if deny := h.denyForeignCustomer(c, a.CustomerID); deny != nil {
		return deny
	}
	if a.Status != model.AppointmentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not awaiting payment"})
	}
	if err := h.Appointments.MarkPaid(ctx, tenantID, id, time.Now().UTC()); err != nil {
		return repoError(c, err, "appointment not found")
	}
	a.Status = model.AppointmentConfirmed
	return c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) denyForeignCustomer(c echo.Context, ownerID uint64) error {
	u := middleware.CurrentUser(c)
	if u.Role != model.RoleCustomer {
		return nil
	}
	if u.CustomerID == nil || *u.CustomerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your appointment"})
	}
	return nil
}
