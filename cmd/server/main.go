package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/auth"
	"github.com/truckpitstop/garage-backend/internal/config"
	"github.com/truckpitstop/garage-backend/internal/database"
	"github.com/truckpitstop/garage-backend/internal/gateway"
	"github.com/truckpitstop/garage-backend/internal/handler"
	"github.com/truckpitstop/garage-backend/internal/queue"
	"github.com/truckpitstop/garage-backend/internal/repository"
	"github.com/truckpitstop/garage-backend/internal/router"
	notifier "github.com/truckpitstop/garage-backend/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs token revocation; without it every session check would
	// have to fail closed, so treat it as a hard dependency.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis is required for token revocation")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tenants := repository.NewTenantRepo(db)
	customers := repository.NewCustomerRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	orders := repository.NewRepairOrderRepo(db)
	inventory := repository.NewInventoryRepo(db)
	services := repository.NewServiceRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	payments := repository.NewPaymentRepo(db)
	notifications := repository.NewNotificationRepo(db)
	dashboard := repository.NewDashboardRepo(db)

	// External gateways.
	stripe := gateway.NewStripeClient(cfg.StripeSecretKey)
	twilio := gateway.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	resend := gateway.NewResendClient(cfg.ResendAPIKey, cfg.ResendFromEmail)

	// Auth core.
	codec := auth.NewTokenCodec(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	store := auth.NewRedisStore(rdb)
	mailer := notifier.New(notifications, cfg.FrontendURL)
	authSvc := auth.NewService(users, tenants, store, codec, mailer, cfg.BcryptCost)

	// Background dispatcher for queued notifications.
	consumer := &queue.NotificationConsumer{
		Notifications: notifications,
		Email:         resend,
		SMS:           twilio,
	}
	go func() {
		if err := consumer.Start(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, authSvc),
		Tenants:       handler.NewTenantHandler(tenants),
		Customers:     handler.NewCustomerHandler(customers, users),
		Vehicles:      handler.NewVehicleHandler(vehicles, customers),
		Orders:        handler.NewRepairOrderHandler(orders, customers, vehicles),
		Inventory:     handler.NewInventoryHandler(inventory),
		Catalog:       handler.NewServiceCatalogHandler(services, tenants),
		Appointments:  handler.NewAppointmentHandler(appointments, services, customers, vehicles, stripe),
		Invoices:      handler.NewInvoiceHandler(invoices, orders),
		Payments:      handler.NewPaymentHandler(payments, invoices, orders, stripe),
		Notifications: handler.NewNotificationHandler(notifications, mailer),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, authSvc, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
