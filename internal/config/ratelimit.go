package config

import (
	"os"
	"strconv"
	"time"
)

// RouteLimit describes a token bucket for one route: Capacity requests
// allowed per Window, keyed by client IP.
type RouteLimit struct {
	Capacity int
	Window   time.Duration
}

// RateLimitConfig carries the limiter switch plus the per-route buckets for
// the auth endpoints. The defaults implement the caller-facing contract:
// register 10/min, login 5/min, refresh 20/min, forgot-password 3/hour,
// reset-password 5/hour.
type RateLimitConfig struct {
	Enabled bool
	Prefix  string
	Debug   bool

	Register       RouteLimit
	Login          RouteLimit
	Refresh        RouteLimit
	ForgotPassword RouteLimit
	ResetPassword  RouteLimit
}

func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),

		Register:       RouteLimit{Capacity: envInt("RATE_LIMIT_REGISTER", 10), Window: time.Minute},
		Login:          RouteLimit{Capacity: envInt("RATE_LIMIT_LOGIN", 5), Window: time.Minute},
		Refresh:        RouteLimit{Capacity: envInt("RATE_LIMIT_REFRESH", 20), Window: time.Minute},
		ForgotPassword: RouteLimit{Capacity: envInt("RATE_LIMIT_FORGOT_PASSWORD", 3), Window: time.Hour},
		ResetPassword:  RouteLimit{Capacity: envInt("RATE_LIMIT_RESET_PASSWORD", 5), Window: time.Hour},
	}
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
