package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

const serviceCols = "id,tenant_id,name,description,category,duration_minutes,base_price_cents," +
	"is_active,requires_vehicle,sort_order,created_at,updated_at"

func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO services (tenant_id, name, description, category, duration_minutes, base_price_cents, is_active, requires_vehicle, sort_order) VALUES (?,?,?,?,?,?,?,?,?)",
		s.TenantID, s.Name, s.Description, s.Category, s.DurationMinutes, s.BasePriceCents,
		s.IsActive, s.RequiresVehicle, s.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Service, error) {
	var s model.Service
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM services WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.Category, &s.DurationMinutes,
			&s.BasePriceCents, &s.IsActive, &s.RequiresVehicle, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the tenant's catalog in display order. activeOnly hides
// disabled services (the public catalog always sets it).
func (r *ServiceRepo) List(ctx context.Context, tenantID uint64, activeOnly bool) ([]model.Service, error) {
	q := "SELECT " + serviceCols + " FROM services WHERE tenant_id=?"
	if activeOnly {
		q += " AND is_active=1"
	}
	q += " ORDER BY sort_order, name"

	rows, err := r.DB.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.Category, &s.DurationMinutes,
			&s.BasePriceCents, &s.IsActive, &s.RequiresVehicle, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE services SET name=?, description=?, category=?, duration_minutes=?, base_price_cents=?, is_active=?, requires_vehicle=?, sort_order=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		s.Name, s.Description, s.Category, s.DurationMinutes, s.BasePriceCents,
		s.IsActive, s.RequiresVehicle, s.SortOrder, s.ID, s.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointments WHERE service_id=? AND tenant_id=?", id, tenantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM services WHERE id=? AND tenant_id=?", id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
