package model

import "time"

// Repair order lifecycle. Orders move forward through these states; cancelled
// is reachable from any non-terminal state.
const (
	OrderDraft      = "draft"
	OrderQuoted     = "quoted"
	OrderApproved   = "approved"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderInvoiced   = "invoiced"
	OrderPaid       = "paid"
	OrderCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known repair-order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderDraft, OrderQuoted, OrderApproved, OrderInProgress,
		OrderCompleted, OrderInvoiced, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// RepairOrder mirrors the `repair_orders` table. Money is stored in cents.
type RepairOrder struct {
	ID         uint64 `json:"id"`
	TenantID   uint64 `json:"tenant_id"`
	CustomerID uint64 `json:"customer_id"`
	VehicleID  uint64 `json:"vehicle_id"`

	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`

	Description   string `json:"description,omitempty"`
	CustomerNotes string `json:"customer_notes,omitempty"`
	InternalNotes string `json:"internal_notes,omitempty"`

	AssignedMechanicID *uint64 `json:"assigned_mechanic_id,omitempty"`

	TotalPartsCents int64 `json:"total_parts_cents"`
	TotalLaborCents int64 `json:"total_labor_cents"`
	TotalCents      int64 `json:"total_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartsUsage records inventory consumed by a repair order.
type PartsUsage struct {
	ID            uint64 `json:"id"`
	TenantID      uint64 `json:"tenant_id"`
	RepairOrderID uint64 `json:"repair_order_id"`
	InventoryID   uint64 `json:"inventory_id"`

	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
	TotalCents     int64 `json:"total_cents"`

	CreatedAt time.Time `json:"created_at"`
}

// Labor records a line of mechanic work on a repair order. Hours are stored
// in hundredths (2.50h -> 250) to avoid floating point in money math.
type Labor struct {
	ID            uint64 `json:"id"`
	TenantID      uint64 `json:"tenant_id"`
	RepairOrderID uint64 `json:"repair_order_id"`

	ServiceCode     string  `json:"service_code,omitempty"`
	Description     string  `json:"description"`
	HoursHundredths int     `json:"hours_hundredths"`
	HourlyRateCents int64   `json:"hourly_rate_cents"`
	TotalCents      int64   `json:"total_cents"`
	MechanicID      *uint64 `json:"mechanic_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
