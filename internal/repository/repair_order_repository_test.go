package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckpitstop/garage-backend/internal/model"
)

func newOrderRepoMock(t *testing.T) (*RepairOrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepairOrderRepo(db), mock
}

func TestAddPartPricesFromInventory(t *testing.T) {
	repo, mock := newOrderRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT price_cents FROM inventory WHERE id=? AND tenant_id=? FOR UPDATE").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents"}).AddRow(int64(1999)))
	mock.ExpectExec("UPDATE inventory SET stock_quantity = stock_quantity - ?, updated_at=NOW() WHERE id=? AND tenant_id=? AND stock_quantity >= ?").
		WithArgs(2, int64(9), int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO parts_usage (tenant_id, repair_order_id, inventory_id, quantity, unit_price_cents, total_cents) VALUES (?,?,?,?,?,?)").
		WithArgs(int64(1), int64(4), int64(9), 2, int64(1999), int64(3998)).
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE repair_orders SET total_parts_cents = total_parts_cents + ?, total_cents = total_cents + ?, updated_at=NOW() WHERE id=? AND tenant_id=?").
		WithArgs(int64(3998), int64(3998), int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &model.PartsUsage{TenantID: 1, RepairOrderID: 4, InventoryID: 9, Quantity: 2}
	require.NoError(t, repo.AddPart(context.Background(), p))

	assert.Equal(t, int64(1999), p.UnitPriceCents)
	assert.Equal(t, int64(3998), p.TotalCents)
	assert.Equal(t, uint64(77), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPartUnknownItem(t *testing.T) {
	repo, mock := newOrderRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT price_cents FROM inventory WHERE id=? AND tenant_id=? FOR UPDATE").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents"}))
	mock.ExpectRollback()

	p := &model.PartsUsage{TenantID: 1, RepairOrderID: 4, InventoryID: 9, Quantity: 1}
	err := repo.AddPart(context.Background(), p)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPartInsufficientStock(t *testing.T) {
	repo, mock := newOrderRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT price_cents FROM inventory WHERE id=? AND tenant_id=? FOR UPDATE").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents"}).AddRow(int64(500)))
	mock.ExpectExec("UPDATE inventory SET stock_quantity = stock_quantity - ?, updated_at=NOW() WHERE id=? AND tenant_id=? AND stock_quantity >= ?").
		WithArgs(50, int64(9), int64(1), 50).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	p := &model.PartsUsage{TenantID: 1, RepairOrderID: 4, InventoryID: 9, Quantity: 50}
	err := repo.AddPart(context.Background(), p)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLaborComputesTotalFromHundredths(t *testing.T) {
	repo, mock := newOrderRepoMock(t)

	// 2.50h at $90.00/h -> $225.00
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO labor (tenant_id, repair_order_id, service_code, description, hours_hundredths, hourly_rate_cents, total_cents, mechanic_id) VALUES (?,?,?,?,?,?,?,?)").
		WithArgs(int64(1), int64(4), "BRAKE", "front pads", 250, int64(9000), int64(22500), nil).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE repair_orders SET total_labor_cents = total_labor_cents + ?, total_cents = total_cents + ?, updated_at=NOW() WHERE id=? AND tenant_id=?").
		WithArgs(int64(22500), int64(22500), int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l := &model.Labor{TenantID: 1, RepairOrderID: 4, ServiceCode: "BRAKE",
		Description: "front pads", HoursHundredths: 250, HourlyRateCents: 9000}
	require.NoError(t, repo.AddLabor(context.Background(), l))
	assert.Equal(t, int64(22500), l.TotalCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}
