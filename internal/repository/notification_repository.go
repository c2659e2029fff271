package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notificationCols = "id,tenant_id,type,status,recipient_email,recipient_phone,subject,body," +
	"template_name,external_id,error_message,sent_at,delivered_at,created_at"

// Create inserts a pending notification row before dispatch.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (tenant_id, type, status, recipient_email, recipient_phone, subject, body, template_name) VALUES (?,?,?,?,?,?,?,?)",
		n.TenantID, n.Type, n.Status, n.RecipientEmail, n.RecipientPhone, n.Subject, n.Body, n.TemplateName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&n.ID, &n.TenantID, &n.Type, &n.Status, &n.RecipientEmail, &n.RecipientPhone,
			&n.Subject, &n.Body, &n.TemplateName, &n.ExternalID, &n.ErrorMessage,
			&n.SentAt, &n.DeliveredAt, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) List(ctx context.Context, tenantID uint64, limit, offset int) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE tenant_id=? ORDER BY id DESC LIMIT ? OFFSET ?",
		tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Type, &n.Status, &n.RecipientEmail, &n.RecipientPhone,
			&n.Subject, &n.Body, &n.TemplateName, &n.ExternalID, &n.ErrorMessage,
			&n.SentAt, &n.DeliveredAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkSent records a successful gateway dispatch with the provider's id.
func (r *NotificationRepo) MarkSent(ctx context.Context, id uint64, externalID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET status=?, external_id=?, sent_at=? WHERE id=?",
		model.NotifySent, externalID, at.UTC(), id)
	return err
}

// MarkFailed records a gateway failure.
func (r *NotificationRepo) MarkFailed(ctx context.Context, id uint64, cause string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET status=?, error_message=? WHERE id=?",
		model.NotifyFailed, cause, id)
	return err
}
