package model

import "time"

// Appointment lifecycle.
const (
	AppointmentPending    = "pending"     // awaiting payment
	AppointmentConfirmed  = "confirmed"   // paid and scheduled
	AppointmentInProgress = "in_progress" // currently being serviced
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
	AppointmentNoShow     = "no_show"
)

// ValidAppointmentStatus reports whether s is a known appointment status.
func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Appointment mirrors the `appointments` table. DurationMinutes and
// PriceCents are snapshots of the service taken at booking time.
type Appointment struct {
	ID         uint64  `json:"id"`
	TenantID   uint64  `json:"tenant_id"`
	CustomerID uint64  `json:"customer_id"`
	VehicleID  *uint64 `json:"vehicle_id,omitempty"`
	ServiceID  uint64  `json:"service_id"`

	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PriceCents      int64     `json:"price_cents"`

	StripePaymentIntentID string     `json:"-"`
	PaidAt                *time.Time `json:"paid_at,omitempty"`

	CustomerNotes      string  `json:"customer_notes,omitempty"`
	InternalNotes      string  `json:"internal_notes,omitempty"`
	ConfirmationNumber string  `json:"confirmation_number"`
	RepairOrderID      *uint64 `json:"repair_order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
