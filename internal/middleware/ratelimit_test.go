package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckpitstop/garage-backend/internal/config"
)

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	cases := []struct {
		name  string
		cfg   config.RateLimitConfig
		limit config.RouteLimit
	}{
		{"disabled", config.RateLimitConfig{Enabled: false}, config.RouteLimit{Capacity: 5, Window: time.Minute}},
		{"zero capacity", config.RateLimitConfig{Enabled: true}, config.RouteLimit{Capacity: 0, Window: time.Minute}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := NewTokenBucket(tc.cfg, tc.limit, nil)
			c := echoContext(http.MethodPost, "/v1/auth/login")
			called := false
			err := mw(func(echo.Context) error { called = true; return nil })(c)
			require.NoError(t, err)
			assert.True(t, called)
			assert.Empty(t, c.Response().Header().Get("X-RateLimit-Limit"))
		})
	}
}

func TestAsInt64Coercions(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(7.9))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("not a number"))
	assert.Equal(t, int64(0), asInt64(nil))
}
