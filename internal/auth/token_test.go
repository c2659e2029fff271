package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec("test-secret", 30*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tc := newTestCodec()

	raw, exp, err := tc.IssueAccess(42, 3)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := tc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, int64(3), claims.Version)
	assert.False(t, claims.Refresh)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestRefreshTokenCarriesMarker(t *testing.T) {
	tc := newTestCodec()

	raw, _, err := tc.IssueRefresh(7, 0)
	require.NoError(t, err)

	claims, err := tc.Verify(raw)
	require.NoError(t, err)
	assert.True(t, claims.Refresh)
}

func TestEachTokenGetsUniqueJTI(t *testing.T) {
	tc := newTestCodec()

	a, _, err := tc.IssueAccess(1, 0)
	require.NoError(t, err)
	b, _, err := tc.IssueAccess(1, 0)
	require.NoError(t, err)

	ca, err := tc.Verify(a)
	require.NoError(t, err)
	cb, err := tc.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.JTI, cb.JTI)
}

func TestExpiredTokenRejected(t *testing.T) {
	tc := NewTokenCodec("test-secret", -time.Minute, -time.Minute)

	raw, _, err := tc.IssueAccess(1, 0)
	require.NoError(t, err)

	_, err = tc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedSignatureRejected(t *testing.T) {
	tc := newTestCodec()
	other := NewTokenCodec("different-secret", 30*time.Minute, time.Hour)

	raw, _, err := other.IssueAccess(1, 0)
	require.NoError(t, err)

	_, err = tc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	tc := newTestCodec()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestRemainingTTLFlooredAtZero(t *testing.T) {
	past := Claims{ExpiresAt: time.Now().Add(-time.Hour)}
	assert.Equal(t, time.Duration(0), RemainingTTL(past))

	future := Claims{ExpiresAt: time.Now().Add(time.Hour)}
	left := RemainingTTL(future)
	assert.Greater(t, left, 59*time.Minute)
	assert.LessOrEqual(t, left, time.Hour)
}
