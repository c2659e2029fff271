package model

import "time"

// Roles assigned to users. Stored as strings in the users.role column.
const (
	RoleSuperAdmin   = "super_admin"
	RoleGarageAdmin  = "garage_admin"
	RoleMechanic     = "mechanic"
	RoleReceptionist = "receptionist"
	RoleCustomer     = "customer"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch s {
	case RoleSuperAdmin, RoleGarageAdmin, RoleMechanic, RoleReceptionist, RoleCustomer:
		return true
	}
	return false
}

// User mirrors the `users` table. PasswordHash is the bcrypt digest; it is
// never serialized. TenantID and CustomerID are nullable: super admins have
// no tenant, staff have no customer profile.
type User struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsVerified   bool       `json:"is_verified"`
	TenantID     *uint64    `json:"tenant_id,omitempty"`
	CustomerID   *uint64    `json:"customer_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"` // soft delete; users are never hard-deleted
}
