// Package router wires handlers, middleware and route groups onto the Echo
// instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/truckpitstop/garage-backend/internal/auth"
	"github.com/truckpitstop/garage-backend/internal/config"
	"github.com/truckpitstop/garage-backend/internal/handler"
	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Tenants       *handler.TenantHandler
	Customers     *handler.CustomerHandler
	Vehicles      *handler.VehicleHandler
	Orders        *handler.RepairOrderHandler
	Inventory     *handler.InventoryHandler
	Catalog       *handler.ServiceCatalogHandler
	Appointments  *handler.AppointmentHandler
	Invoices      *handler.InvoiceHandler
	Payments      *handler.PaymentHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
}

// Register mounts all routes. Public browse endpoints are cached; auth
// endpoints carry per-route rate limits; everything else requires a valid
// access token plus a role check.
func Register(e *echo.Echo, h Handlers, svc *auth.Service, rdb *redis.Client, rl config.RateLimitConfig, cc config.CacheConfig) {
	e.GET("/healthz", handler.Health)

	// Public directory and catalog, served behind the response cache.
	cached := middleware.NewRedisCache(cc, rdb)
	e.GET("/v1/garages", h.Tenants.Directory, cached)
	e.GET("/v1/garages/:slug", h.Tenants.BySlug, cached)
	e.GET("/v1/garages/:slug/services", h.Catalog.PublicCatalog, cached)

	// Session lifecycle. Each route gets its own token bucket.
	ag := e.Group("/v1/auth")
	ag.POST("/register", h.Auth.Register, middleware.NewTokenBucket(rl, rl.Register, rdb))
	ag.POST("/login", h.Auth.Login, middleware.NewTokenBucket(rl, rl.Login, rdb))
	ag.POST("/refresh", h.Auth.Refresh, middleware.NewTokenBucket(rl, rl.Refresh, rdb))
	ag.POST("/logout", h.Auth.Logout)
	ag.POST("/forgot-password", h.Auth.ForgotPassword, middleware.NewTokenBucket(rl, rl.ForgotPassword, rdb))
	ag.POST("/reset-password", h.Auth.ResetPassword, middleware.NewTokenBucket(rl, rl.ResetPassword, rdb))

	// Everything below requires a resolved user.
	v1 := e.Group("/v1", middleware.Authenticate(svc))

	v1.GET("/me", h.Auth.Me)
	v1.POST("/me/change-password", h.Auth.ChangePassword)

	// Tenant management is super-admin only.
	v1.POST("/garages", h.Tenants.Create, middleware.RequireRole(model.RoleSuperAdmin))

	staff := middleware.Staff()
	admin := middleware.RequireRole(model.RoleGarageAdmin)
	frontDesk := middleware.RequireRole(model.RoleGarageAdmin, model.RoleReceptionist)
	anyUser := middleware.RequireRole(model.RoleGarageAdmin, model.RoleMechanic, model.RoleReceptionist, model.RoleCustomer)

	// Customers. Reads admit the customer role; the handler pins a customer
	// account to its own linked record.
	v1.POST("/customers", h.Customers.Create, frontDesk)
	v1.GET("/customers", h.Customers.List, anyUser)
	v1.GET("/customers/:id", h.Customers.Get, anyUser)
	v1.PATCH("/customers/:id", h.Customers.Update, frontDesk)
	v1.DELETE("/customers/:id", h.Customers.Delete, admin)
	v1.POST("/customers/:id/link-user", h.Customers.LinkUser, frontDesk)

	// Vehicles. Customers manage their own; staff manage all.
	v1.POST("/vehicles", h.Vehicles.Create, anyUser)
	v1.GET("/vehicles", h.Vehicles.List, anyUser)
	v1.GET("/vehicles/:id", h.Vehicles.Get, anyUser)
	v1.PATCH("/vehicles/:id", h.Vehicles.Update, frontDesk)
	v1.DELETE("/vehicles/:id", h.Vehicles.Delete, admin)

	// Repair orders.
	v1.POST("/repair-orders", h.Orders.Create, frontDesk)
	v1.GET("/repair-orders", h.Orders.List, anyUser)
	v1.GET("/repair-orders/:id", h.Orders.Get, anyUser)
	v1.PATCH("/repair-orders/:id", h.Orders.Update, staff)
	v1.POST("/repair-orders/:id/status", h.Orders.UpdateStatus, staff)
	v1.POST("/repair-orders/:id/parts", h.Orders.AddPart, staff)
	v1.POST("/repair-orders/:id/labor", h.Orders.AddLabor, staff)

	// Inventory.
	v1.POST("/inventory", h.Inventory.Create, frontDesk)
	v1.GET("/inventory", h.Inventory.List, staff)
	v1.GET("/inventory/:id", h.Inventory.Get, staff)
	v1.PATCH("/inventory/:id", h.Inventory.Update, frontDesk)
	v1.POST("/inventory/:id/adjust", h.Inventory.AdjustStock, staff)
	v1.DELETE("/inventory/:id", h.Inventory.Delete, admin)

	// Service catalog (staff view; the public one is above).
	v1.POST("/services", h.Catalog.Create, admin)
	v1.GET("/services", h.Catalog.List, staff)
	v1.GET("/services/:id", h.Catalog.Get, staff)
	v1.PATCH("/services/:id", h.Catalog.Update, admin)
	v1.DELETE("/services/:id", h.Catalog.Delete, admin)

	// Appointments.
	v1.POST("/appointments", h.Appointments.Create, anyUser)
	v1.GET("/appointments", h.Appointments.List, anyUser)
	v1.GET("/appointments/:id", h.Appointments.Get, anyUser)
	v1.POST("/appointments/:id/status", h.Appointments.UpdateStatus, staff)
	v1.POST("/appointments/:id/cancel", h.Appointments.Cancel, anyUser)
	v1.POST("/appointments/:id/pay", h.Appointments.Pay, anyUser)
	v1.POST("/appointments/:id/confirm-payment", h.Appointments.ConfirmPayment, anyUser)

	// Invoices and payments.
	v1.POST("/invoices", h.Invoices.Create, frontDesk)
	v1.GET("/invoices", h.Invoices.List, staff)
	v1.GET("/invoices/:id", h.Invoices.Get, staff)
	v1.POST("/invoices/:id/send", h.Invoices.Send, frontDesk)
	v1.POST("/invoices/:id/void", h.Invoices.Void, admin)
	v1.GET("/invoices/:id/payments", h.Payments.ListByInvoice, staff)
	v1.POST("/payments", h.Payments.Create, frontDesk)
	v1.POST("/payments/:id/complete", h.Payments.Complete, frontDesk)

	// Notifications.
	v1.POST("/notifications", h.Notifications.Send, frontDesk)
	v1.GET("/notifications", h.Notifications.List, staff)
	v1.GET("/notifications/:id", h.Notifications.Get, staff)

	// Dashboard.
	v1.GET("/dashboard/stats", h.Dashboard.Stats, staff)
}
