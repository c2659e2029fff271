package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// ----- fakes -----

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byID: map[uint64]*model.User{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeTenants struct {
	bySlug map[string]*model.Tenant
}

func (f *fakeTenants) GetBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	t, ok := f.bySlug[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

// fakeStore is an in-memory RevocationStore. Setting down makes every call
// fail the way an unreachable Redis would.
type fakeStore struct {
	mu        sync.Mutex
	versions  map[uint64]int64
	blacklist map[string]bool
	resets    map[string]string
	down      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		versions:  map[uint64]int64{},
		blacklist: map[string]bool{},
		resets:    map[string]string{},
	}
}

func (f *fakeStore) err() error {
	if f.down {
		return storeErr(assert.AnError)
	}
	return nil
}

func (f *fakeStore) Version(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return 0, err
	}
	return f.versions[userID], nil
}

func (f *fakeStore) IncrementVersion(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return 0, err
	}
	f.versions[userID]++
	return f.versions[userID], nil
}

func (f *fakeStore) Blacklist(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	f.blacklist[jti] = true
	return nil
}

func (f *fakeStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return false, err
	}
	return f.blacklist[jti], nil
}

func (f *fakeStore) StoreResetToken(_ context.Context, email, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	f.resets[token] = email
	return nil
}

func (f *fakeStore) LookupResetToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return "", err
	}
	return f.resets[token], nil
}

func (f *fakeStore) DeleteResetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	delete(f.resets, token)
	return nil
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendPasswordReset(ctx context.Context, u *model.User, token string) error {
	args := m.Called(ctx, u, token)
	return args.Error(0)
}

// ----- harness -----

type harness struct {
	svc    *Service
	users  *fakeUsers
	store  *fakeStore
	mailer *mockMailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := newFakeUsers()
	store := newFakeStore()
	mailer := &mockMailer{}
	tenants := &fakeTenants{bySlug: map[string]*model.Tenant{
		"midtown-garage": {ID: 1, Name: "Midtown Garage", Slug: "midtown-garage", IsActive: true},
	}}
	// Cost 4 keeps bcrypt fast in tests.
	svc := NewService(users, tenants, store, newTestCodec(), mailer, 4)
	return &harness{svc: svc, users: users, store: store, mailer: mailer}
}

func (h *harness) register(t *testing.T, email, password string) (*model.User, TokenPair) {
	t.Helper()
	u, pair, err := h.svc.Register(context.Background(), RegisterInput{
		Email: email, Password: password, FirstName: "Pat",
	})
	require.NoError(t, err)
	return u, pair
}

// ----- tests -----

func TestRegisterThenResolve(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, pair := h.register(t, "pat@example.com", "hunter2hunter2")
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)

	got, err := h.svc.Resolve(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "pat@example.com", got.Email)
}

func TestRegisterNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, _ := h.register(t, "  Pat@Example.COM ", "hunter2hunter2")
	assert.Equal(t, "pat@example.com", u.Email)

	_, _, err := h.svc.Register(ctx, RegisterInput{Email: "pat@example.com", Password: "xyzzyxyzzy1"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterWithGarageSlug(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, _, err := h.svc.Register(ctx, RegisterInput{
		Email: "a@b.com", Password: "hunter2hunter2", TenantSlug: "midtown-garage",
	})
	require.NoError(t, err)
	require.NotNil(t, u.TenantID)
	assert.Equal(t, uint64(1), *u.TenantID)

	_, _, err = h.svc.Register(ctx, RegisterInput{
		Email: "c@d.com", Password: "hunter2hunter2", TenantSlug: "no-such-garage",
	})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "pat@example.com", "hunter2hunter2")

	_, _, errUnknown := h.svc.Login(ctx, "nobody@example.com", "whatever123")
	_, _, errWrong := h.svc.Login(ctx, "pat@example.com", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestLoginInactiveAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u, _ := h.register(t, "pat@example.com", "hunter2hunter2")
	h.users.byID[u.ID].IsActive = false

	_, _, err := h.svc.Login(ctx, "pat@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestRefreshRotationBlocksReuse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, pair := h.register(t, "pat@example.com", "hunter2hunter2")

	_, next, err := h.svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)

	// The consumed token is dead; the new one still works.
	_, _, err = h.svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = h.svc.Refresh(ctx, next.Refresh)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, pair := h.register(t, "pat@example.com", "hunter2hunter2")

	_, _, err := h.svc.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordInvalidatesEverySession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u, pair := h.register(t, "pat@example.com", "hunter2hunter2")

	// Wrong current password changes nothing.
	err := h.svc.ChangePassword(ctx, u, "wrong", "newpassword123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = h.svc.Resolve(ctx, pair.Access)
	assert.NoError(t, err)

	fresh, err := h.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, h.svc.ChangePassword(ctx, fresh, "hunter2hunter2", "newpassword123"))

	// Old tokens carry a stale version now.
	_, err = h.svc.Resolve(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = h.svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A fresh login with the new password works and resolves.
	_, loggedIn, err := h.svc.Login(ctx, "pat@example.com", "newpassword123")
	require.NoError(t, err)
	_, err = h.svc.Resolve(ctx, loggedIn.Access)
	assert.NoError(t, err)
}

func TestLogoutKillsOnlyItsOwnSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "pat@example.com", "hunter2hunter2")

	_, sessionA, err := h.svc.Login(ctx, "pat@example.com", "hunter2hunter2")
	require.NoError(t, err)
	_, sessionB, err := h.svc.Login(ctx, "pat@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, sessionA.Access, sessionA.Refresh))

	_, err = h.svc.Resolve(ctx, sessionA.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = h.svc.Refresh(ctx, sessionA.Refresh)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.svc.Resolve(ctx, sessionB.Access)
	assert.NoError(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.NoError(t, h.svc.Logout(ctx, "", ""))
	assert.NoError(t, h.svc.Logout(ctx, "garbage", "also-garbage"))
}

func TestForgotPasswordIsUniform(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "pat@example.com", "hunter2hunter2")

	// Unknown email: no mail is sent, nothing stored.
	h.svc.ForgotPassword(ctx, "nobody@example.com")
	h.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, h.store.resets)

	// Known email: token stored and mailed.
	h.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	h.svc.ForgotPassword(ctx, "pat@example.com")
	h.mailer.AssertExpectations(t)
	assert.Len(t, h.store.resets, 1)

	// Mailer failure is swallowed; the caller sees no difference.
	h.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()
	h.svc.ForgotPassword(ctx, "pat@example.com")
	h.mailer.AssertExpectations(t)
}

func TestResetPasswordIsSingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, pair := h.register(t, "pat@example.com", "hunter2hunter2")

	var token string
	h.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { token = args.String(2) }).Return(nil).Once()
	h.svc.ForgotPassword(ctx, "pat@example.com")
	require.NotEmpty(t, token)

	require.NoError(t, h.svc.ResetPassword(ctx, token, "brand-new-pass1"))

	// Token consumed, old sessions dead, new password live.
	assert.ErrorIs(t, h.svc.ResetPassword(ctx, token, "another-pass12"), ErrInvalidResetToken)
	_, err := h.svc.Resolve(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = h.svc.Login(ctx, "pat@example.com", "brand-new-pass1")
	assert.NoError(t, err)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	h := newHarness(t)
	err := h.svc.ResetPassword(context.Background(), "deadbeef", "whatever-pass1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResolveFailsClosedWhenStoreDown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, pair := h.register(t, "pat@example.com", "hunter2hunter2")

	h.store.down = true

	_, err := h.svc.Resolve(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, _, err = h.svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, _, err = h.svc.Login(ctx, "pat@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
