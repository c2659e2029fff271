package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// CustomerHandler manages a garage's customer records. Staff see every
// record in their tenant; a customer-role account only ever reaches the
// record its user row is linked to.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
	Users     *repository.UserRepo
}

func NewCustomerHandler(r *repository.CustomerRepo, u *repository.UserRepo) *CustomerHandler {
	return &CustomerHandler{Customers: r, Users: u}
}

type customerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	BillingAddressLine1 string `json:"billing_address_line1"`
	BillingAddressLine2 string `json:"billing_address_line2"`
	BillingCity         string `json:"billing_city"`
	BillingState        string `json:"billing_state"`
	BillingZip          string `json:"billing_zip"`
	BillingCountry      string `json:"billing_country"`

	Notes string `json:"notes"`
}

func (req *customerReq) apply(cust *model.Customer) {
	cust.FirstName = strings.TrimSpace(req.FirstName)
	cust.LastName = strings.TrimSpace(req.LastName)
	cust.Email = strings.ToLower(strings.TrimSpace(req.Email))
	cust.Phone = strings.TrimSpace(req.Phone)
	cust.BillingAddressLine1 = req.BillingAddressLine1
	cust.BillingAddressLine2 = req.BillingAddressLine2
	cust.BillingCity = req.BillingCity
	cust.BillingState = req.BillingState
	cust.BillingZip = req.BillingZip
	cust.BillingCountry = req.BillingCountry
	cust.Notes = req.Notes
}

func (h *CustomerHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first name and email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cust := &model.Customer{TenantID: tenantID}
	req.apply(cust)
	if err := h.Customers.Create(ctx, cust); err != nil {
		return repoError(c, err, "customer not found")
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if deny := h.denyForeignCustomer(c, id); deny != nil {
		return deny
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "customer not found")
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// A customer account lists only its own record.
	if u := middleware.CurrentUser(c); u.Role == model.RoleCustomer {
		customers := []model.Customer{}
		if u.CustomerID != nil {
			cust, err := h.Customers.GetByID(ctx, tenantID, *u.CustomerID)
			if err != nil {
				return repoError(c, err, "customer not found")
			}
			customers = append(customers, *cust)
		}
		return c.JSON(http.StatusOK, echo.Map{"customers": customers, "limit": limit, "offset": offset})
	}

	customers, err := h.Customers.List(ctx, tenantID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers, "limit": limit, "offset": offset})
}

func (h *CustomerHandler) Update(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "customer not found")
	}
	req.apply(cust)
	if err := h.Customers.Update(ctx, cust); err != nil {
		return repoError(c, err, "customer not found")
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Customers.Delete(ctx, tenantID, id); err != nil {
		return repoError(c, err, "customer not found")
	}
	return c.NoContent(http.StatusNoContent)
}

type linkUserReq struct {
	UserID uint64 `json:"user_id"`
}

// LinkUser attaches a customer-role user account to the customer record, so
// the account can reach its own profile, vehicles and orders.
func (h *CustomerHandler) LinkUser(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req linkUserReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, tenantID, id); err != nil {
		return repoError(c, err, "customer not found")
	}
	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return repoError(c, err, "user not found")
	}
	if u.Role != model.RoleCustomer {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only customer accounts can be linked"})
	}
	if u.TenantID != nil && *u.TenantID != tenantID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "user belongs to another garage"})
	}

	if err := h.Users.SetCustomerID(ctx, u.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account linked"})
}

// denyForeignCustomer blocks a customer account from reading a record other
// than its own. Staff pass through.
func (h *CustomerHandler) denyForeignCustomer(c echo.Context, customerID uint64) error {
	u := middleware.CurrentUser(c)
	if u.Role != model.RoleCustomer {
		return nil
	}
	if u.CustomerID == nil || *u.CustomerID != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your profile"})
	}
	return nil
}
