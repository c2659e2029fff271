package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentCols = "id,tenant_id,invoice_id,payment_number,amount_cents,method,status," +
	"stripe_payment_intent_id,stripe_charge_id,notes,receipt_url,created_at,updated_at"

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (tenant_id, invoice_id, payment_number, amount_cents, method, status, stripe_payment_intent_id, stripe_charge_id, notes, receipt_url) VALUES (?,?,?,?,?,?,?,?,?,?)",
		p.TenantID, p.InvoiceID, p.PaymentNumber, p.AmountCents, p.Method, p.Status,
		p.StripePaymentIntentID, p.StripeChargeID, p.Notes, p.ReceiptURL)
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
	p.ID = uint64(id)
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.PaymentNumber, &p.AmountCents, &p.Method, &p.Status,
			&p.StripePaymentIntentID, &p.StripeChargeID, &p.Notes, &p.ReceiptURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) ListByInvoice(ctx context.Context, tenantID, invoiceID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE invoice_id=? AND tenant_id=? ORDER BY id", invoiceID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.PaymentNumber, &p.AmountCents, &p.Method,
			&p.Status, &p.StripePaymentIntentID, &p.StripeChargeID, &p.Notes, &p.ReceiptURL,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, tenantID, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET status=?, updated_at=NOW() WHERE id=? AND tenant_id=?", status, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
