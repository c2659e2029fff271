package router

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/truckpitstop/garage-backend/internal/config"
	"github.com/truckpitstop/garage-backend/internal/handler"
)

func TestRegisterMountsExpectedRoutes(t *testing.T) {
	e := echo.New()
	h := Handlers{
		Auth:          &handler.AuthHandler{},
		Tenants:       &handler.TenantHandler{},
		Customers:     &handler.CustomerHandler{},
		Vehicles:      &handler.VehicleHandler{},
		Orders:        &handler.RepairOrderHandler{},
		Inventory:     &handler.InventoryHandler{},
		Catalog:       &handler.ServiceCatalogHandler{},
		Appointments:  &handler.AppointmentHandler{},
		Invoices:      &handler.InvoiceHandler{},
		Payments:      &handler.PaymentHandler{},
		Notifications: &handler.NotificationHandler{},
		Dashboard:     &handler.DashboardHandler{},
	}
	Register(e, h, nil, nil, config.RateLimitConfig{}, config.CacheConfig{})

	mounted := map[string]bool{}
	for _, r := range e.Routes() {
		mounted[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /healthz",
		"GET /v1/garages",
		"GET /v1/garages/:slug/services",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"POST /v1/auth/forgot-password",
		"POST /v1/auth/reset-password",
		"GET /v1/me",
		"POST /v1/me/change-password",
		"GET /v1/customers",
		"GET /v1/customers/:id",
		"POST /v1/customers/:id/link-user",
		"POST /v1/repair-orders/:id/parts",
		"POST /v1/inventory/:id/adjust",
		"POST /v1/appointments/:id/pay",
		"POST /v1/payments/:id/complete",
		"GET /v1/dashboard/stats",
	}
	for _, route := range want {
		assert.True(t, mounted[route], "missing route %s", route)
	}
	assert.False(t, mounted["GET /v1/dashboard"], "stats moved under /dashboard/stats")
}
