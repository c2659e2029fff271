package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleCols = "id,tenant_id,customer_id,vin,make,model,year,license_plate,color,mileage,notes,created_at,updated_at"

func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicles (tenant_id, customer_id, vin, make, model, year, license_plate, color, mileage, notes) VALUES (?,?,?,?,?,?,?,?,?,?)",
		v.TenantID, v.CustomerID, v.VIN, v.Make, v.Model, v.Year, v.LicensePlate, v.Color, v.Mileage, v.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

func (r *VehicleRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Vehicle, error) {
	var v model.Vehicle
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&v.ID, &v.TenantID, &v.CustomerID, &v.VIN, &v.Make, &v.Model, &v.Year,
			&v.LicensePlate, &v.Color, &v.Mileage, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns the tenant's vehicles, optionally filtered to one customer
// (customerID 0 means all).
func (r *VehicleRepo) List(ctx context.Context, tenantID, customerID uint64, limit, offset int) ([]model.Vehicle, error) {
	q := "SELECT " + vehicleCols + " FROM vehicles WHERE tenant_id=?"
	args := []any{tenantID}
	if customerID != 0 {
		q += " AND customer_id=?"
		args = append(args, customerID)
	}
	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Vehicle{}
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.TenantID, &v.CustomerID, &v.VIN, &v.Make, &v.Model, &v.Year,
			&v.LicensePlate, &v.Color, &v.Mileage, &v.Notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET vin=?, make=?, model=?, year=?, license_plate=?, color=?, mileage=?, notes=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		v.VIN, v.Make, v.Model, v.Year, v.LicensePlate, v.Color, v.Mileage, v.Notes, v.ID, v.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VehicleRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM repair_orders WHERE vehicle_id=? AND tenant_id=?", id, tenantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM vehicles WHERE id=? AND tenant_id=?", id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
