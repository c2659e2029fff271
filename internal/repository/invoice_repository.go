package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

const invoiceCols = "id,tenant_id,repair_order_id,invoice_number,status,subtotal_cents,tax_cents," +
	"discount_cents,total_cents,due_date,paid_at,notes,created_at,updated_at"

// Create inserts an invoice. The unique key on repair_order_id enforces one
// invoice per order.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO invoices (tenant_id, repair_order_id, invoice_number, status, subtotal_cents, tax_cents, discount_cents, total_cents, due_date, notes) VALUES (?,?,?,?,?,?,?,?,?,?)",
		inv.TenantID, inv.RepairOrderID, inv.InvoiceNumber, inv.Status,
		inv.SubtotalCents, inv.TaxCents, inv.DiscountCents, inv.TotalCents, inv.DueDate, inv.Notes)
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
	inv.ID = uint64(id)
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Invoice, error) {
	return scanInvoice(r.DB.QueryRowContext(ctx,
		"SELECT "+invoiceCols+" FROM invoices WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID))
}

func (r *InvoiceRepo) GetByOrder(ctx context.Context, tenantID, orderID uint64) (*model.Invoice, error) {
	return scanInvoice(r.DB.QueryRowContext(ctx,
		"SELECT "+invoiceCols+" FROM invoices WHERE repair_order_id=? AND tenant_id=? LIMIT 1", orderID, tenantID))
}

func (r *InvoiceRepo) List(ctx context.Context, tenantID uint64, status string, limit, offset int) ([]model.Invoice, error) {
	q := "SELECT " + invoiceCols + " FROM invoices WHERE tenant_id=?"
	args := []any{tenantID}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Invoice{}
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.RepairOrderID, &inv.InvoiceNumber, &inv.Status,
			&inv.SubtotalCents, &inv.TaxCents, &inv.DiscountCents, &inv.TotalCents,
			&inv.DueDate, &inv.PaidAt, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, tenantID, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invoices SET status=?, updated_at=NOW() WHERE id=? AND tenant_id=?", status, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid sets the invoice paid and stamps the time.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, tenantID, id uint64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invoices SET status=?, paid_at=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		model.InvoicePaid, at.UTC(), id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanInvoice(row *sql.Row) (*model.Invoice, error) {
	var inv model.Invoice
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.RepairOrderID, &inv.InvoiceNumber, &inv.Status,
		&inv.SubtotalCents, &inv.TaxCents, &inv.DiscountCents, &inv.TotalCents,
		&inv.DueDate, &inv.PaidAt, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
