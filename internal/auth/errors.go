package auth

import "errors"

// Client-facing error taxonomy for the session lifecycle. Wrong password,
// unknown email and bad/expired/blacklisted/version-stale tokens all collapse
// into ErrInvalidCredentials so callers can never distinguish which check
// failed.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	// ErrStoreUnavailable marks revocation-store failures. It is distinct
	// from the credential errors above: "you are not authorized" and "the
	// system is degraded" must never look the same to operators.
	ErrStoreUnavailable = errors.New("revocation store unavailable")
)
