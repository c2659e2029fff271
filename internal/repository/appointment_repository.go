package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

const appointmentCols = "id,tenant_id,customer_id,vehicle_id,service_id,scheduled_at,duration_minutes," +
	"status,price_cents,stripe_payment_intent_id,paid_at,customer_notes,internal_notes," +
	"confirmation_number,repair_order_id,created_at,updated_at"

func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO appointments (tenant_id, customer_id, vehicle_id, service_id, scheduled_at, duration_minutes, status, price_cents, customer_notes, confirmation_number) VALUES (?,?,?,?,?,?,?,?,?,?)",
		a.TenantID, a.CustomerID, a.VehicleID, a.ServiceID, a.ScheduledAt.UTC(), a.DurationMinutes,
		a.Status, a.PriceCents, a.CustomerNotes, a.ConfirmationNumber)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Appointment, error) {
	var a model.Appointment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&a.ID, &a.TenantID, &a.CustomerID, &a.VehicleID, &a.ServiceID, &a.ScheduledAt, &a.DurationMinutes,
			&a.Status, &a.PriceCents, &a.StripePaymentIntentID, &a.PaidAt, &a.CustomerNotes, &a.InternalNotes,
			&a.ConfirmationNumber, &a.RepairOrderID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns appointments newest first; customerID 0 means all customers,
// status "" means all statuses.
func (r *AppointmentRepo) List(ctx context.Context, tenantID, customerID uint64, status string, limit, offset int) ([]model.Appointment, error) {
	q := "SELECT " + appointmentCols + " FROM appointments WHERE tenant_id=?"
	args := []any{tenantID}
	if customerID != 0 {
		q += " AND customer_id=?"
		args = append(args, customerID)
	}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	q += " ORDER BY scheduled_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.CustomerID, &a.VehicleID, &a.ServiceID, &a.ScheduledAt,
			&a.DurationMinutes, &a.Status, &a.PriceCents, &a.StripePaymentIntentID, &a.PaidAt,
			&a.CustomerNotes, &a.InternalNotes, &a.ConfirmationNumber, &a.RepairOrderID,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, tenantID, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status=?, updated_at=NOW() WHERE id=? AND tenant_id=?", status, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaymentIntent stores the Stripe intent id created for the booking.
func (r *AppointmentRepo) SetPaymentIntent(ctx context.Context, tenantID, id uint64, intentID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET stripe_payment_intent_id=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		intentID, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid flips the appointment to confirmed and records the payment time.
func (r *AppointmentRepo) MarkPaid(ctx context.Context, tenantID, id uint64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status=?, paid_at=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		model.AppointmentConfirmed, at.UTC(), id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
