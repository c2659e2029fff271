package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for every kind of bad token:
// signature mismatch, malformed structure, wrong algorithm or expiry. The
// distinctions are deliberately not observable past this boundary.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a session token.
//
//	sub  – user id (decimal string on the wire)
//	jti  – unique token id, used as the blacklist key
//	ver  – per-user token version; raising the stored version invalidates
//	       every token carrying a lower one
//	exp  – unix expiry
//	type – "refresh" on refresh tokens, absent on access tokens
type Claims struct {
	UserID    uint64
	JTI       string
	Version   int64
	ExpiresAt time.Time
	Refresh   bool
}

// TokenCodec produces and verifies HS256-signed session tokens. Two flavors
// share the signing scheme: short-lived access tokens and long-lived refresh
// tokens marked with type="refresh".
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess signs an access token for the user at the given version and
// returns the token with its expiry.
func (tc *TokenCodec) IssueAccess(userID uint64, version int64) (string, time.Time, error) {
	return tc.issue(userID, version, tc.accessTTL, false)
}

// IssueRefresh signs a refresh token (type="refresh") for the user at the
// given version.
func (tc *TokenCodec) IssueRefresh(userID uint64, version int64) (string, time.Time, error) {
	return tc.issue(userID, version, tc.refreshTTL, true)
}

func (tc *TokenCodec) issue(userID uint64, version int64, ttl time.Duration, refresh bool) (string, time.Time, error) {
	jti, err := randomHex(16)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"jti": jti,
		"ver": version,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	if refresh {
		claims["type"] = "refresh"
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates a token. Any failure whatsoever yields
// ErrInvalidToken; Verify never panics and never returns library errors.
func (tc *TokenCodec) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	sub, _ := mc["sub"].(string)
	c.UserID, err = strconv.ParseUint(sub, 10, 64)
	if err != nil || c.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	if c.JTI, _ = mc["jti"].(string); c.JTI == "" {
		return Claims{}, ErrInvalidToken
	}
	switch v := mc["ver"].(type) {
	case float64:
		c.Version = int64(v)
	default:
		return Claims{}, ErrInvalidToken
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	if typ, _ := mc["type"].(string); typ == "refresh" {
		c.Refresh = true
	}
	return c, nil
}

// RemainingTTL returns how long the token is still valid, floored at zero.
// It sizes blacklist entries so a revoked token is never retained longer
// than it could have been valid anyway.
func RemainingTTL(c Claims) time.Duration {
	d := time.Until(c.ExpiresAt)
	if d < 0 {
		return 0
	}
	return d
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. It produces token ids and
// password-reset tokens.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
