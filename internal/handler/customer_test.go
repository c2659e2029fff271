package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

const selectCustomerSQL = "SELECT id,tenant_id,first_name,last_name,email,phone," +
	"billing_address_line1,billing_address_line2,billing_city,billing_state,billing_zip,billing_country," +
	"stripe_customer_id,notes,created_at,updated_at FROM customers WHERE id=? AND tenant_id=? LIMIT 1"

const selectUserSQL = "SELECT id,email,password_hash,first_name,last_name,phone,role,is_active,is_verified," +
	"tenant_id,customer_id,created_at,updated_at FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1"

func newCustomerEnv(t *testing.T) (*CustomerHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCustomerHandler(repository.NewCustomerRepo(db), repository.NewUserRepo(db)), mock
}

func customerRow(id, tenantID uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "tenant_id", "first_name", "last_name", "email", "phone",
		"billing_address_line1", "billing_address_line2", "billing_city", "billing_state", "billing_zip", "billing_country",
		"stripe_customer_id", "notes", "created_at", "updated_at"}).
		AddRow(int64(id), int64(tenantID), "Pat", "Lee", "pat@example.com", "",
			"", "", "", "", "", "", "", "", now, now)
}

func customerCtx(method, target, body string, u *model.User, pathParams map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	middleware.SetCurrentUser(c, u)
	return c, rec
}

func customerUser(tenantID, customerID uint64) *model.User {
	return &model.User{ID: 30, Role: model.RoleCustomer, IsActive: true,
		TenantID: &tenantID, CustomerID: &customerID}
}

func TestCustomerGetsOwnProfile(t *testing.T) {
	h, mock := newCustomerEnv(t)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(int64(5), int64(1)).
		WillReturnRows(customerRow(5, 1))

	c, rec := customerCtx(http.MethodGet, "/v1/customers/5", "", customerUser(1, 5),
		map[string]string{"id": "5"})
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerCannotReadForeignProfile(t *testing.T) {
	h, mock := newCustomerEnv(t)
	// No query should reach the database.

	c, rec := customerCtx(http.MethodGet, "/v1/customers/7", "", customerUser(1, 5),
		map[string]string{"id": "7"})
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerWithNoLinkedRecordIsDenied(t *testing.T) {
	h, mock := newCustomerEnv(t)

	tenantID := uint64(1)
	u := &model.User{ID: 30, Role: model.RoleCustomer, IsActive: true, TenantID: &tenantID}
	c, rec := customerCtx(http.MethodGet, "/v1/customers/5", "", u,
		map[string]string{"id": "5"})
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerListPinnedToOwnRecord(t *testing.T) {
	h, mock := newCustomerEnv(t)
	mock.ExpectQuery(selectCustomerSQL).WithArgs(int64(5), int64(1)).
		WillReturnRows(customerRow(5, 1))

	c, rec := customerCtx(http.MethodGet, "/v1/customers", "", customerUser(1, 5), nil)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"pat@example.com"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func staffUser(tenantID uint64) *model.User {
	return &model.User{ID: 2, Role: model.RoleGarageAdmin, IsActive: true, TenantID: &tenantID}
}

func TestLinkUserSetsCustomerID(t *testing.T) {
	h, mock := newCustomerEnv(t)

	now := time.Now()
	mock.ExpectQuery(selectCustomerSQL).WithArgs(int64(5), int64(1)).
		WillReturnRows(customerRow(5, 1))
	mock.ExpectQuery(selectUserSQL).WithArgs(int64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "phone",
			"role", "is_active", "is_verified", "tenant_id", "customer_id", "created_at", "updated_at"}).
			AddRow(int64(30), "pat@example.com", "x", "Pat", "Lee", "",
				model.RoleCustomer, true, false, int64(1), nil, now, now))
	mock.ExpectExec("UPDATE users SET customer_id=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL").
		WithArgs(int64(5), int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := customerCtx(http.MethodPost, "/v1/customers/5/link-user",
		`{"user_id":30}`, staffUser(1), map[string]string{"id": "5"})
	require.NoError(t, h.LinkUser(c))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkUserRejectsStaffAccounts(t *testing.T) {
	h, mock := newCustomerEnv(t)

	now := time.Now()
	mock.ExpectQuery(selectCustomerSQL).WithArgs(int64(5), int64(1)).
		WillReturnRows(customerRow(5, 1))
	mock.ExpectQuery(selectUserSQL).WithArgs(int64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "phone",
			"role", "is_active", "is_verified", "tenant_id", "customer_id", "created_at", "updated_at"}).
			AddRow(int64(31), "mech@example.com", "x", "Sam", "Ng", "",
				model.RoleMechanic, true, false, int64(1), nil, now, now))

	c, rec := customerCtx(http.MethodPost, "/v1/customers/5/link-user",
		`{"user_id":31}`, staffUser(1), map[string]string{"id": "5"})
	require.NoError(t, h.LinkUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
