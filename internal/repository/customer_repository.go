package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerCols = "id,tenant_id,first_name,last_name,email,phone," +
	"billing_address_line1,billing_address_line2,billing_city,billing_state,billing_zip,billing_country," +
	"stripe_customer_id,notes,created_at,updated_at"

// Create inserts a customer. Email is unique per tenant.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (tenant_id, first_name, last_name, email, phone, billing_address_line1, billing_address_line2, billing_city, billing_state, billing_zip, billing_country, notes) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		c.TenantID, c.FirstName, c.LastName, strings.ToLower(strings.TrimSpace(c.Email)), c.Phone,
		c.BillingAddressLine1, c.BillingAddressLine2, c.BillingCity, c.BillingState, c.BillingZip, c.BillingCountry, c.Notes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a customer within the tenant scope.
func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID))
}

// List returns a page of the tenant's customers.
func (r *CustomerRepo) List(ctx context.Context, tenantID uint64, limit, offset int) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE tenant_id=? ORDER BY last_name, first_name LIMIT ? OFFSET ?",
		tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomerRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update writes the mutable customer fields.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET first_name=?, last_name=?, email=?, phone=?, billing_address_line1=?, billing_address_line2=?, billing_city=?, billing_state=?, billing_zip=?, billing_country=?, notes=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		c.FirstName, c.LastName, strings.ToLower(strings.TrimSpace(c.Email)), c.Phone,
		c.BillingAddressLine1, c.BillingAddressLine2, c.BillingCity, c.BillingState, c.BillingZip, c.BillingCountry,
		c.Notes, c.ID, c.TenantID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStripeCustomerID stores the gateway customer reference.
func (r *CustomerRepo) SetStripeCustomerID(ctx context.Context, tenantID, id uint64, stripeID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET stripe_customer_id=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		stripeID, id, tenantID)
	return err
}

// Delete removes a customer. Vehicles cascade at the schema level; repair
// orders block deletion.
func (r *CustomerRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM repair_orders WHERE customer_id=? AND tenant_id=?", id, tenantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM customers WHERE id=? AND tenant_id=?", id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.BillingAddressLine1, &c.BillingAddressLine2, &c.BillingCity, &c.BillingState, &c.BillingZip, &c.BillingCountry,
		&c.StripeCustomerID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCustomerRows(rows *sql.Rows) (*model.Customer, error) {
	var c model.Customer
	err := rows.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.BillingAddressLine1, &c.BillingAddressLine2, &c.BillingCity, &c.BillingState, &c.BillingZip, &c.BillingCountry,
		&c.StripeCustomerID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
