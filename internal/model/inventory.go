package model

import "time"

// InventoryItem mirrors the `inventory` table. An item is low on stock when
// StockQuantity <= ReorderLevel.
type InventoryItem struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`

	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	StockQuantity int   `json:"stock_quantity"`
	ReorderLevel  int   `json:"reorder_level"`
	CostCents     int64 `json:"cost_cents"`
	PriceCents    int64 `json:"price_cents"`

	SupplierName    string `json:"supplier_name,omitempty"`
	SupplierContact string `json:"supplier_contact,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i InventoryItem) LowStock() bool { return i.StockQuantity <= i.ReorderLevel }
