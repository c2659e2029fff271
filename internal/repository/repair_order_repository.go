package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type RepairOrderRepo struct{ DB *sql.DB }

func NewRepairOrderRepo(db *sql.DB) *RepairOrderRepo { return &RepairOrderRepo{DB: db} }

const orderCols = "id,tenant_id,customer_id,vehicle_id,order_number,status,description," +
	"customer_notes,internal_notes,assigned_mechanic_id,total_parts_cents,total_labor_cents,total_cents,created_at,updated_at"

func (r *RepairOrderRepo) Create(ctx context.Context, o *model.RepairOrder) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO repair_orders (tenant_id, customer_id, vehicle_id, order_number, status, description, customer_notes, internal_notes, assigned_mechanic_id) VALUES (?,?,?,?,?,?,?,?,?)",
		o.TenantID, o.CustomerID, o.VehicleID, o.OrderNumber, o.Status, o.Description, o.CustomerNotes, o.InternalNotes, o.AssignedMechanicID)
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
	o.ID = uint64(id)
	return nil
}

func (r *RepairOrderRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.RepairOrder, error) {
	return scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM repair_orders WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID))
}

// List returns the tenant's orders newest first, optionally filtered by
// status and/or customer (zero values mean no filter).
func (r *RepairOrderRepo) List(ctx context.Context, tenantID uint64, status string, customerID uint64, limit, offset int) ([]model.RepairOrder, error) {
	q := "SELECT " + orderCols + " FROM repair_orders WHERE tenant_id=?"
	args := []any{tenantID}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
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

	out := []model.RepairOrder{}
	for rows.Next() {
		var o model.RepairOrder
		if err := scanOrderInto(rows.Scan, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Update writes description, notes and mechanic assignment.
func (r *RepairOrderRepo) Update(ctx context.Context, o *model.RepairOrder) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE repair_orders SET description=?, customer_notes=?, internal_notes=?, assigned_mechanic_id=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		o.Description, o.CustomerNotes, o.InternalNotes, o.AssignedMechanicID, o.ID, o.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RepairOrderRepo) UpdateStatus(ctx context.Context, tenantID, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE repair_orders SET status=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		status, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPart consumes inventory on an order inside one transaction: lock the
// item to read its current price, decrement stock (refusing to go negative),
// insert the parts_usage line and bump the order totals. The unit price is
// always the inventory price at the moment of use, never caller-supplied.
func (r *RepairOrderRepo) AddPart(ctx context.Context, p *model.PartsUsage) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		"SELECT price_cents FROM inventory WHERE id=? AND tenant_id=? FOR UPDATE",
		p.InventoryID, p.TenantID).Scan(&p.UnitPriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE inventory SET stock_quantity = stock_quantity - ?, updated_at=NOW() WHERE id=? AND tenant_id=? AND stock_quantity >= ?",
		p.Quantity, p.InventoryID, p.TenantID, p.Quantity)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict // insufficient stock
	}

	p.TotalCents = int64(p.Quantity) * p.UnitPriceCents
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO parts_usage (tenant_id, repair_order_id, inventory_id, quantity, unit_price_cents, total_cents) VALUES (?,?,?,?,?,?)",
		p.TenantID, p.RepairOrderID, p.InventoryID, p.Quantity, p.UnitPriceCents, p.TotalCents)
	if err != nil {
		return err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE repair_orders SET total_parts_cents = total_parts_cents + ?, total_cents = total_cents + ?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		p.TotalCents, p.TotalCents, p.RepairOrderID, p.TenantID); err != nil {
		return err
	}
	return tx.Commit()
}

// AddLabor records a labor line and bumps the order totals in one
// transaction.
func (r *RepairOrderRepo) AddLabor(ctx context.Context, l *model.Labor) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	l.TotalCents = int64(l.HoursHundredths) * l.HourlyRateCents / 100
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO labor (tenant_id, repair_order_id, service_code, description, hours_hundredths, hourly_rate_cents, total_cents, mechanic_id) VALUES (?,?,?,?,?,?,?,?)",
		l.TenantID, l.RepairOrderID, l.ServiceCode, l.Description, l.HoursHundredths, l.HourlyRateCents, l.TotalCents, l.MechanicID)
	if err != nil {
		return err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE repair_orders SET total_labor_cents = total_labor_cents + ?, total_cents = total_cents + ?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		l.TotalCents, l.TotalCents, l.RepairOrderID, l.TenantID); err != nil {
		return err
	}
	return tx.Commit()
}

// Parts lists the usage lines of an order.
func (r *RepairOrderRepo) Parts(ctx context.Context, tenantID, orderID uint64) ([]model.PartsUsage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,tenant_id,repair_order_id,inventory_id,quantity,unit_price_cents,total_cents,created_at FROM parts_usage WHERE repair_order_id=? AND tenant_id=? ORDER BY id",
		orderID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PartsUsage{}
	for rows.Next() {
		var p model.PartsUsage
		if err := rows.Scan(&p.ID, &p.TenantID, &p.RepairOrderID, &p.InventoryID,
			&p.Quantity, &p.UnitPriceCents, &p.TotalCents, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LaborLines lists the labor lines of an order.
func (r *RepairOrderRepo) LaborLines(ctx context.Context, tenantID, orderID uint64) ([]model.Labor, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,tenant_id,repair_order_id,service_code,description,hours_hundredths,hourly_rate_cents,total_cents,mechanic_id,created_at FROM labor WHERE repair_order_id=? AND tenant_id=? ORDER BY id",
		orderID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Labor{}
	for rows.Next() {
		var l model.Labor
		if err := rows.Scan(&l.ID, &l.TenantID, &l.RepairOrderID, &l.ServiceCode, &l.Description,
			&l.HoursHundredths, &l.HourlyRateCents, &l.TotalCents, &l.MechanicID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanOrder(row *sql.Row) (*model.RepairOrder, error) {
	var o model.RepairOrder
	err := scanOrderInto(row.Scan, &o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderInto(scan func(dest ...any) error, o *model.RepairOrder) error {
	return scan(&o.ID, &o.TenantID, &o.CustomerID, &o.VehicleID, &o.OrderNumber, &o.Status,
		&o.Description, &o.CustomerNotes, &o.InternalNotes, &o.AssignedMechanicID,
		&o.TotalPartsCents, &o.TotalLaborCents, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
}
