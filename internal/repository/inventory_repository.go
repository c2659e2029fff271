package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truckpitstop/garage-backend/internal/model"
)

type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

const inventoryCols = "id,tenant_id,sku,name,description,category,stock_quantity,reorder_level," +
	"cost_cents,price_cents,supplier_name,supplier_contact,created_at,updated_at"

func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO inventory (tenant_id, sku, name, description, category, stock_quantity, reorder_level, cost_cents, price_cents, supplier_name, supplier_contact) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		it.TenantID, it.SKU, it.Name, it.Description, it.Category, it.StockQuantity, it.ReorderLevel,
		it.CostCents, it.PriceCents, it.SupplierName, it.SupplierContact)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict // duplicate sku within tenant
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+inventoryCols+" FROM inventory WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID).
		Scan(&it.ID, &it.TenantID, &it.SKU, &it.Name, &it.Description, &it.Category,
			&it.StockQuantity, &it.ReorderLevel, &it.CostCents, &it.PriceCents,
			&it.SupplierName, &it.SupplierContact, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns a page of inventory, optionally only low-stock items.
func (r *InventoryRepo) List(ctx context.Context, tenantID uint64, lowStockOnly bool, limit, offset int) ([]model.InventoryItem, error) {
	q := "SELECT " + inventoryCols + " FROM inventory WHERE tenant_id=?"
	if lowStockOnly {
		q += " AND stock_quantity <= reorder_level"
	}
	q += " ORDER BY name LIMIT ? OFFSET ?"

	rows, err := r.DB.QueryContext(ctx, q, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.InventoryItem{}
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.SKU, &it.Name, &it.Description, &it.Category,
			&it.StockQuantity, &it.ReorderLevel, &it.CostCents, &it.PriceCents,
			&it.SupplierName, &it.SupplierContact, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *InventoryRepo) Update(ctx context.Context, it *model.InventoryItem) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET sku=?, name=?, description=?, category=?, reorder_level=?, cost_cents=?, price_cents=?, supplier_name=?, supplier_contact=?, updated_at=NOW() WHERE id=? AND tenant_id=?",
		it.SKU, it.Name, it.Description, it.Category, it.ReorderLevel, it.CostCents, it.PriceCents,
		it.SupplierName, it.SupplierContact, it.ID, it.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies a delta to the stock quantity. The guard in the WHERE
// clause refuses adjustments that would drive the quantity negative;
// ErrConflict is returned in that case (or when the item does not exist).
func (r *InventoryRepo) AdjustStock(ctx context.Context, tenantID, id uint64, delta int) (*model.InventoryItem, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET stock_quantity = stock_quantity + ?, updated_at=NOW() WHERE id=? AND tenant_id=? AND stock_quantity + ? >= 0",
		delta, id, tenantID, delta)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, tenantID, id); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, tenantID, id)
}

func (r *InventoryRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parts_usage WHERE inventory_id=? AND tenant_id=?", id, tenantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM inventory WHERE id=? AND tenant_id=?", id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
