package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
	notifier "github.com/truckpitstop/garage-backend/internal/service"
)

// NotificationHandler lets staff send ad-hoc notifications and inspect
// delivery status.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Notifier      *notifier.Notifier
}

func NewNotificationHandler(r *repository.NotificationRepo, n *notifier.Notifier) *NotificationHandler {
	return &NotificationHandler{Notifications: r, Notifier: n}
}

type sendNotificationReq struct {
	Type           string `json:"type"` // email or sms
	RecipientEmail string `json:"recipient_email"`
	RecipientPhone string `json:"recipient_phone"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// Send enqueues a notification for background dispatch and returns the
// pending row.
func (h *NotificationHandler) Send(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req sendNotificationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}
	switch req.Type {
	case model.NotifyEmail:
		if strings.TrimSpace(req.RecipientEmail) == "" || req.Subject == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_email and subject required"})
		}
	case model.NotifySMS:
		if strings.TrimSpace(req.RecipientPhone) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_phone required"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be email or sms"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	note := &model.Notification{
		TenantID:       tenantID,
		Type:           req.Type,
		RecipientEmail: strings.TrimSpace(req.RecipientEmail),
		RecipientPhone: strings.TrimSpace(req.RecipientPhone),
		Subject:        req.Subject,
		Body:           req.Body,
	}
	if err := h.Notifier.Enqueue(ctx, note); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "notification could not be queued"})
	}
	return c.JSON(http.StatusAccepted, note)
}

func (h *NotificationHandler) Get(c echo.Context) error {
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

	n, err := h.Notifications.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "notification not found")
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	notes, err := h.Notifications.List(ctx, tenantID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": notes, "limit": limit, "offset": offset})
}
