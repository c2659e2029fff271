package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type TenantRepo struct{ DB *sql.DB }

func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

const tenantCols = "id,name,slug,address,phone,email,is_active,created_at,updated_at"

// Create inserts a tenant (garage). Slugs are unique.
func (r *TenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tenants (name, slug, address, phone, email, is_active) VALUES (?,?,?,?,?,?)",
		t.Name, t.Slug, t.Address, t.Phone, t.Email, t.IsActive)
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
	t.ID = uint64(id)
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (*model.Tenant, error) {
	return scanTenant(r.DB.QueryRowContext(ctx,
		"SELECT "+tenantCols+" FROM tenants WHERE id=? LIMIT 1", id))
}

// GetBySlug resolves a tenant by its URL slug. Only active tenants resolve;
// registration against a deactivated garage behaves as if it never existed.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return scanTenant(r.DB.QueryRowContext(ctx,
		"SELECT "+tenantCols+" FROM tenants WHERE slug=? AND is_active=1 LIMIT 1",
		strings.ToLower(strings.TrimSpace(slug))))
}

// ListActive returns the public garage directory.
func (r *TenantRepo) ListActive(ctx context.Context) ([]model.Tenant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tenantCols+" FROM tenants WHERE is_active=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tenant{}
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Address, &t.Phone, &t.Email,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTenant(row *sql.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Address, &t.Phone, &t.Email,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
