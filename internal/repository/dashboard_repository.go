package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/truckpitstop/garage-backend/internal/model"
)

// DashboardRepo runs the aggregation queries behind the stats endpoint. No
// mutation; every query is scoped to one tenant.
type DashboardRepo struct{ DB *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{DB: db} }

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type LowStockItem struct {
	ID            uint64 `json:"id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
}

type RecentOrder struct {
	ID           uint64    `json:"id"`
	OrderNumber  string    `json:"order_number"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
	VehicleInfo  string    `json:"vehicle_info"`
	TotalCents   int64     `json:"total_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

type MechanicWorkload struct {
	MechanicID      uint64 `json:"mechanic_id"`
	MechanicName    string `json:"mechanic_name"`
	AssignedCount   int    `json:"assigned_count"`
	InProgressCount int    `json:"in_progress_count"`
}

type RevenueStats struct {
	TodayCents     int64 `json:"today_cents"`
	ThisWeekCents  int64 `json:"this_week_cents"`
	ThisMonthCents int64 `json:"this_month_cents"`
	TotalPaid      int   `json:"total_paid_orders"`
}

type DashboardStats struct {
	TotalCustomers    int                `json:"total_customers"`
	TotalVehicles     int                `json:"total_vehicles"`
	TotalRepairOrders int                `json:"total_repair_orders"`
	OrdersByStatus    []StatusCount      `json:"orders_by_status"`
	ActiveOrders      int                `json:"active_orders"`     // in_progress
	AwaitingApproval  int                `json:"awaiting_approval"` // quoted
	PendingInvoices   int                `json:"pending_invoices"`  // completed
	LowStockCount     int                `json:"low_stock_count"`
	LowStockItems     []LowStockItem     `json:"low_stock_items"`
	RecentOrders      []RecentOrder      `json:"recent_orders"`
	MyAssignedOrders  int                `json:"my_assigned_orders"`
	MyInProgress      int                `json:"my_in_progress"`
	Revenue           RevenueStats       `json:"revenue"`
	MechanicWorkload  []MechanicWorkload `json:"mechanic_workload"`
}

// Stats gathers the dashboard aggregates for a tenant. userID scopes the
// "my orders" counters (meaningful for mechanics, zero elsewhere).
func (r *DashboardRepo) Stats(ctx context.Context, tenantID, userID uint64) (*DashboardStats, error) {
	s := &DashboardStats{
		OrdersByStatus:   []StatusCount{},
		LowStockItems:    []LowStockItem{},
		RecentOrders:     []RecentOrder{},
		MechanicWorkload: []MechanicWorkload{},
	}

	count := func(q string, args ...any) (int, error) {
		var n int
		err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n)
		return n, err
	}

	var err error
	if s.TotalCustomers, err = count("SELECT COUNT(*) FROM customers WHERE tenant_id=?", tenantID); err != nil {
		return nil, err
	}
	if s.TotalVehicles, err = count("SELECT COUNT(*) FROM vehicles WHERE tenant_id=?", tenantID); err != nil {
		return nil, err
	}
	if s.TotalRepairOrders, err = count("SELECT COUNT(*) FROM repair_orders WHERE tenant_id=?", tenantID); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM repair_orders WHERE tenant_id=? GROUP BY status", tenantID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		s.OrdersByStatus = append(s.OrdersByStatus, sc)
		switch sc.Status {
		case model.OrderInProgress:
			s.ActiveOrders = sc.Count
		case model.OrderQuoted:
			s.AwaitingApproval = sc.Count
		case model.OrderCompleted:
			s.PendingInvoices = sc.Count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Low stock, capped at the 10 worst offenders.
	rows, err = r.DB.QueryContext(ctx,
		"SELECT id, sku, name, stock_quantity, reorder_level FROM inventory WHERE tenant_id=? AND stock_quantity <= reorder_level ORDER BY stock_quantity LIMIT 10",
		tenantID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.StockQuantity, &it.ReorderLevel); err != nil {
			rows.Close()
			return nil, err
		}
		s.LowStockItems = append(s.LowStockItems, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if s.LowStockCount, err = count(
		"SELECT COUNT(*) FROM inventory WHERE tenant_id=? AND stock_quantity <= reorder_level", tenantID); err != nil {
		return nil, err
	}

	rows, err = r.DB.QueryContext(ctx,
		`SELECT o.id, o.order_number, o.status, CONCAT(c.first_name,' ',c.last_name),
		        CONCAT(v.year,' ',v.make,' ',v.model), o.total_cents, o.created_at
		 FROM repair_orders o
		 JOIN customers c ON c.id = o.customer_id
		 JOIN vehicles v ON v.id = o.vehicle_id
		 WHERE o.tenant_id=? ORDER BY o.id DESC LIMIT 5`, tenantID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ro RecentOrder
		if err := rows.Scan(&ro.ID, &ro.OrderNumber, &ro.Status, &ro.CustomerName,
			&ro.VehicleInfo, &ro.TotalCents, &ro.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		s.RecentOrders = append(s.RecentOrders, ro)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if userID != 0 {
		if s.MyAssignedOrders, err = count(
			"SELECT COUNT(*) FROM repair_orders WHERE tenant_id=? AND assigned_mechanic_id=? AND status NOT IN (?,?)",
			tenantID, userID, model.OrderPaid, model.OrderCancelled); err != nil {
			return nil, err
		}
		if s.MyInProgress, err = count(
			"SELECT COUNT(*) FROM repair_orders WHERE tenant_id=? AND assigned_mechanic_id=? AND status=?",
			tenantID, userID, model.OrderInProgress); err != nil {
			return nil, err
		}
	}

	// Revenue from completed payments, bucketed by day/week/month.
	revenue := func(q string, args ...any) (int64, error) {
		var cents sql.NullInt64
		err := r.DB.QueryRowContext(ctx, q, args...).Scan(&cents)
		return cents.Int64, err
	}
	if s.Revenue.TodayCents, err = revenue(
		"SELECT SUM(amount_cents) FROM payments WHERE tenant_id=? AND status=? AND DATE(created_at)=CURDATE()",
		tenantID, model.PayCompleted); err != nil {
		return nil, err
	}
	if s.Revenue.ThisWeekCents, err = revenue(
		"SELECT SUM(amount_cents) FROM payments WHERE tenant_id=? AND status=? AND YEARWEEK(created_at, 1)=YEARWEEK(CURDATE(), 1)",
		tenantID, model.PayCompleted); err != nil {
		return nil, err
	}
	if s.Revenue.ThisMonthCents, err = revenue(
		"SELECT SUM(amount_cents) FROM payments WHERE tenant_id=? AND status=? AND YEAR(created_at)=YEAR(CURDATE()) AND MONTH(created_at)=MONTH(CURDATE())",
		tenantID, model.PayCompleted); err != nil {
		return nil, err
	}
	if s.Revenue.TotalPaid, err = count(
		"SELECT COUNT(*) FROM repair_orders WHERE tenant_id=? AND status=?", tenantID, model.OrderPaid); err != nil {
		return nil, err
	}

	rows, err = r.DB.QueryContext(ctx,
		`SELECT u.id, CONCAT(u.first_name,' ',u.last_name),
		        COUNT(o.id),
		        SUM(CASE WHEN o.status=? THEN 1 ELSE 0 END)
		 FROM users u
		 JOIN repair_orders o ON o.assigned_mechanic_id = u.id AND o.tenant_id = u.tenant_id
		 WHERE u.tenant_id=? AND u.role=? AND o.status NOT IN (?,?)
		 GROUP BY u.id ORDER BY COUNT(o.id) DESC`,
		model.OrderInProgress, tenantID, model.RoleMechanic, model.OrderPaid, model.OrderCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var w MechanicWorkload
		if err := rows.Scan(&w.MechanicID, &w.MechanicName, &w.AssignedCount, &w.InProgressCount); err != nil {
			return nil, err
		}
		s.MechanicWorkload = append(s.MechanicWorkload, w)
	}
	return s, rows.Err()
}
