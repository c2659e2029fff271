package model

import "time"

// Customer mirrors the `customers` table. Email is unique per tenant, not
// globally; the same person may be a customer of several garages.
type Customer struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`

	BillingAddressLine1 string `json:"billing_address_line1,omitempty"`
	BillingAddressLine2 string `json:"billing_address_line2,omitempty"`
	BillingCity         string `json:"billing_city,omitempty"`
	BillingState        string `json:"billing_state,omitempty"`
	BillingZip          string `json:"billing_zip,omitempty"`
	BillingCountry      string `json:"billing_country,omitempty"`

	StripeCustomerID string `json:"-"`
	Notes            string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
