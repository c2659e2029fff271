package model

import "time"

// Vehicle mirrors the `vehicles` table. Every vehicle belongs to one
// customer within one tenant.
type Vehicle struct {
	ID         uint64 `json:"id"`
	TenantID   uint64 `json:"tenant_id"`
	CustomerID uint64 `json:"customer_id"`

	VIN          string `json:"vin,omitempty"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
	Color        string `json:"color,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`
	Notes        string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
