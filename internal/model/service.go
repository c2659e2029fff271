package model

import "time"

// Service is a bookable offering in a garage's catalog (oil change, brake
// inspection, ...). Price and duration are copied onto appointments at
// booking time so later catalog edits do not change existing bookings.
type Service struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	DurationMinutes int   `json:"duration_minutes"`
	BasePriceCents  int64 `json:"base_price_cents"`

	IsActive        bool `json:"is_active"`
	RequiresVehicle bool `json:"requires_vehicle"`
	SortOrder       int  `json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
