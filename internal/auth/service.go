package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

const resetTokenTTL = time.Hour

// UserStore is the credential persistence the session service depends on.
// Implementations return repository.ErrNotFound for missing users and
// repository.ErrEmailExists for duplicate emails.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// TenantStore resolves tenant slugs during customer registration.
type TenantStore interface {
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

// Mailer delivers the password-reset email. Send failures are logged and
// swallowed by the service; they never change the caller-visible outcome.
type Mailer interface {
	SendPasswordReset(ctx context.Context, u *model.User, token string) error
}

// TokenPair is an access+refresh token set issued together.
type TokenPair struct {
	Access     string    `json:"access_token"`
	Refresh    string    `json:"refresh_token"`
	AccessExp  time.Time `json:"access_expires"`
	RefreshExp time.Time `json:"refresh_expires"`
}

// Service orchestrates the credential lifecycle: registration, login,
// refresh rotation, logout, password change and password reset. All state
// lives in the credential store and the revocation store; the service itself
// is stateless and safe for concurrent use.
type Service struct {
	users   UserStore
	tenants TenantStore
	store   RevocationStore
	codec   *TokenCodec
	mailer  Mailer
	cost    int // bcrypt cost
}

func NewService(users UserStore, tenants TenantStore, store RevocationStore, codec *TokenCodec, mailer Mailer, bcryptCost int) *Service {
	return &Service{users: users, tenants: tenants, store: store, codec: codec, mailer: mailer, cost: bcryptCost}
}

// RegisterInput carries the self-registration fields. TenantSlug optionally
// associates the new customer account with a garage.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	TenantSlug string
}

// Register creates a customer account and issues its first token pair at
// version 0 (new users have no version record yet).
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, TokenPair, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, err
	}

	var tenantID *uint64
	if slug := strings.TrimSpace(in.TenantSlug); slug != "" {
		t, err := s.tenants.GetBySlug(ctx, slug)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrTenantNotFound
		}
		if err != nil {
			return nil, TokenPair{}, err
		}
		tenantID = &t.ID
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         model.RoleCustomer,
		IsActive:     true,
		IsVerified:   false,
		TenantID:     tenantID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, TokenPair{}, ErrEmailExists
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID, 0)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login verifies credentials and issues a pair at the user's current token
// version. Unknown email and wrong password produce the same error so
// accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, TokenPair{}, ErrInactiveAccount
	}

	ver, err := s.store.Version(ctx, u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issuePair(u.ID, ver)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a refresh token: the presented token's jti is blacklisted
// for its remaining lifetime before the new pair is issued, so a consumed
// refresh token can never be replayed. The blacklist write must succeed;
// on store failure the rotation is aborted rather than leaving a replay
// window open.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.User, TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil || !claims.Refresh {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	revoked, err := s.store.IsBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if revoked {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	ver, err := s.store.Version(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if claims.Version < ver {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !u.IsActive {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if err := s.store.Blacklist(ctx, claims.JTI, RemainingTTL(claims)); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID, ver)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout blacklists whatever decodable tokens the caller presented, each for
// its own remaining lifetime. Absent or garbage tokens are ignored: logout
// is idempotent and succeeds even with nothing to revoke. A store failure
// while revoking a decodable token is surfaced so the caller knows the
// session may still be live.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, raw := range []string{accessToken, refreshToken} {
		if raw == "" {
			continue
		}
		claims, err := s.codec.Verify(raw)
		if err != nil {
			continue
		}
		if err := s.store.Blacklist(ctx, claims.JTI, RemainingTTL(claims)); err != nil {
			return err
		}
	}
	return nil
}

// ChangePassword verifies the current password, replaces the hash and bumps
// the token version. The bump invalidates every outstanding token for the
// user, including the one that authenticated this request.
func (s *Service) ChangePassword(ctx context.Context, u *model.User, current, next string) error {
	if !VerifyPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(next, s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	// No transaction spans the credential store and the revocation store. A
	// crash here leaves old tokens valid until natural expiry; the password
	// itself is already changed.
	if _, err := s.store.IncrementVersion(ctx, u.ID); err != nil {
		return err
	}
	return nil
}

// ForgotPassword stores a single-use reset token and emails it to the user.
// It returns nil for unknown and inactive accounts, and it swallows store
// and mail failures (logging them), so the caller-visible outcome is the
// same for every input: no account enumeration, no timing oracle from the
// error path.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || !u.IsActive {
		return
	}
	token, err := randomHex(32)
	if err != nil {
		log.Printf("forgot-password: token generation failed: %v", err)
		return
	}
	if err := s.store.StoreResetToken(ctx, u.Email, token, resetTokenTTL); err != nil {
		log.Printf("forgot-password: store reset token failed: %v", err)
		return
	}
	if err := s.mailer.SendPasswordReset(ctx, u, token); err != nil {
		log.Printf("forgot-password: send email failed: %v", err)
	}
}

// ResetPassword consumes a reset token: resolve the email, rehash, delete
// the token (single use), bump the version. Unknown token and unknown user
// fail with the same error.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.store.LookupResetToken(ctx, token)
	if err != nil {
		return err
	}
	if email == "" {
		return ErrInvalidResetToken
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword, s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.store.DeleteResetToken(ctx, token); err != nil {
		return err
	}
	if _, err := s.store.IncrementVersion(ctx, u.ID); err != nil {
		return err
	}
	return nil
}

// Resolve is the current-user resolution every protected endpoint depends
// on: verify the token, check the blacklist, check the version, load the
// user, check the active flag. Any credential failure yields
// ErrInvalidCredentials; an inactive account yields ErrInactiveAccount;
// store failures propagate as ErrStoreUnavailable (fail closed).
func (s *Service) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	revoked, err := s.store.IsBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidCredentials
	}

	ver, err := s.store.Version(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if claims.Version < ver {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveAccount
	}
	return u, nil
}

func (s *Service) issuePair(userID uint64, version int64) (TokenPair, error) {
	access, accessExp, err := s.codec.IssueAccess(userID, version)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.codec.IssueRefresh(userID, version)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh, AccessExp: accessExp, RefreshExp: refreshExp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
