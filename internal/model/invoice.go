package model

import "time"

// Invoice lifecycle.
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// Invoice mirrors the `invoices` table; one invoice per repair order.
type Invoice struct {
	ID            uint64 `json:"id"`
	TenantID      uint64 `json:"tenant_id"`
	RepairOrderID uint64 `json:"repair_order_id"`

	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`

	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`

	DueDate *time.Time `json:"due_date,omitempty"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
	Notes   string     `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
