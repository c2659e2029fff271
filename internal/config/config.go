package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required values are enforced by must(); integration
// keys (Stripe, Twilio, Resend) are optional so the server can run without
// the external gateways configured.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	DBMaxOpenConns   int // connection pool ceiling
	DBMaxIdleConns   int // idle connections kept; defaults to the ceiling
	DBConnMaxLifeMin int // connection lifetime in minutes

	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	CookieSecure   bool   // set Secure on auth cookies (requires HTTPS)
	CookieDomain   string // cookie domain, empty for host-only
	CookieSameSite string // "strict", "lax" or "none"

	StripeSecretKey      string
	StripePublishableKey string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioFromNumber     string
	ResendAPIKey         string
	ResendFromEmail      string

	FrontendURL string // base URL used in password-reset links
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables cause the program to exit with a fatal
// log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),

		DBMaxOpenConns:   intOr("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:   intOr("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifeMin: intOr("DB_CONN_MAX_LIFETIME_MIN", 30),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     intOr("BCRYPT_COST", 12),

		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSameSite: strOr("COOKIE_SAMESITE", "lax"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:     os.Getenv("TWILIO_PHONE_NUMBER"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		ResendFromEmail:      strOr("RESEND_FROM_EMAIL", "noreply@truckpitstop.com"),

		FrontendURL: strOr("FRONTEND_URL", "http://localhost:5173"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the env value or a default when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr returns the env value parsed as int or a default when unset. An
// unparseable value is fatal rather than silently defaulted.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
