package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckpitstop/garage-backend/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("Vary", "Accept")
	hdr.Add("Vary", "Origin")
	body := []byte(`{"garages":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, []string{"Accept", "Origin"}, gotHdr["Vary"])
	assert.Equal(t, body, gotBody)
}

func TestPayloadEmptyBody(t *testing.T) {
	payload, err := encodePayload(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, hdr)
	assert.Empty(t, body)
}

func TestDecodeRejectsTruncatedPayloads(t *testing.T) {
	for _, bs := range [][]byte{nil, {}, {0, 0}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok, "payload %v should be rejected", bs)
	}
}

func echoContext(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestCacheKeyDependsOnRouteAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "respcache"}

	a := echoContext(http.MethodGet, "/v1/garages?limit=10")
	a.SetPath("/v1/garages")
	b := echoContext(http.MethodGet, "/v1/garages?limit=20")
	b.SetPath("/v1/garages")
	c := echoContext(http.MethodGet, "/v1/garages?limit=10")
	c.SetPath("/v1/garages")

	assert.NotEqual(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, b))
	assert.Equal(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, c))
	assert.Contains(t, cacheKeyFrom(cfg, a), "respcache:")
}

func TestBuildRateKeyShape(t *testing.T) {
	c := echoContext(http.MethodPost, "/v1/auth/login")
	c.SetPath("/v1/auth/login")
	c.Request().RemoteAddr = "203.0.113.7:55101"

	key := buildRateKey("ratelimit", c)
	assert.Equal(t, "ratelimit:ip:203.0.113.7:route:POST /v1/auth/login", key)
}

func TestOversizeResponsesAreNotCached(t *testing.T) {
	assert.True(t, shouldCache(http.StatusOK, 100, 1024))
	assert.True(t, shouldCache(http.StatusOK, 100, 0)) // no limit configured
	assert.False(t, shouldCache(http.StatusOK, 2048, 1024))
	assert.False(t, shouldCache(http.StatusNotFound, 10, 1024))
	assert.False(t, shouldCache(http.StatusInternalServerError, 10, 1024))
}

func TestCaptureWriterCountsBeyondItsBuffer(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 5}

	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = cw.Write([]byte(" world"))
	require.NoError(t, err)

	// The client got everything; the buffer stopped at the limit; size still
	// reflects the full response so the write-behind can tell it was cut.
	assert.Equal(t, "hello world", rec.Body.String())
	assert.LessOrEqual(t, int64(cw.buf.Len()), cw.limit)
	assert.Equal(t, int64(len("hello world")), cw.size)
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	c := echoContext(http.MethodGet, "/v1/garages")
	called := false
	err := mw(func(echo.Context) error { called = true; return nil })(c)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, c.Response().Header().Get("X-Cache"))
}
