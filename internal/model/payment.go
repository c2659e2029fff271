package model

import "time"

// Payment methods and statuses.
const (
	PayMethodStripe = "stripe"
	PayMethodCash   = "cash"
	PayMethodCheck  = "check"
	PayMethodACH    = "ach"
	PayMethodOther  = "other"

	PayPending   = "pending"
	PayCompleted = "completed"
	PayFailed    = "failed"
	PayRefunded  = "refunded"
)

// ValidPaymentMethod reports whether s is a known payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PayMethodStripe, PayMethodCash, PayMethodCheck, PayMethodACH, PayMethodOther:
		return true
	}
	return false
}

// Payment mirrors the `payments` table; a payment is recorded against an
// invoice.
type Payment struct {
	ID        uint64 `json:"id"`
	TenantID  uint64 `json:"tenant_id"`
	InvoiceID uint64 `json:"invoice_id"`

	PaymentNumber string `json:"payment_number"`
	AmountCents   int64  `json:"amount_cents"`
	Method        string `json:"method"`
	Status        string `json:"status"`

	StripePaymentIntentID string `json:"-"`
	StripeChargeID        string `json:"-"`

	Notes      string `json:"notes,omitempty"`
	ReceiptURL string `json:"receipt_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
