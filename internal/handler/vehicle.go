package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// VehicleHandler manages customer vehicles.
type VehicleHandler struct {
	Vehicles  *repository.VehicleRepo
	Customers *repository.CustomerRepo
}

func NewVehicleHandler(v *repository.VehicleRepo, cu *repository.CustomerRepo) *VehicleHandler {
	return &VehicleHandler{Vehicles: v, Customers: cu}
}

type vehicleReq struct {
	CustomerID   uint64 `json:"customer_id"`
	VIN          string `json:"vin"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate"`
	Color        string `json:"color"`
	Mileage      int    `json:"mileage"`
	Notes        string `json:"notes"`
}

func (h *VehicleHandler) Create(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Make == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make and model required"})
	}

	// A customer account may only add vehicles to its own profile.
	u := middleware.CurrentUser(c)
	if u.Role == model.RoleCustomer {
		if u.CustomerID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no customer profile"})
		}
		req.CustomerID = *u.CustomerID
	}
	if req.CustomerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, tenantID, req.CustomerID); err != nil {
		return repoError(c, err, "customer not found")
	}

	v := &model.Vehicle{
		TenantID:     tenantID,
		CustomerID:   req.CustomerID,
		VIN:          strings.ToUpper(strings.TrimSpace(req.VIN)),
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		Color:        req.Color,
		Mileage:      req.Mileage,
		Notes:        req.Notes,
	}
	if err := h.Vehicles.Create(ctx, v); err != nil {
		return repoError(c, err, "vehicle not found")
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) Get(c echo.Context) error {
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

	v, err := h.Vehicles.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "vehicle not found")
	}
	if deny := h.denyForeignCustomer(c, v.CustomerID); deny != nil {
		return deny
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) List(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	limit, offset := paging(c)

	customerID := uint64(0)
	if s := c.QueryParam("customer_id"); s != "" {
		customerID, _ = strconv.ParseUint(s, 10, 64)
	}
	// Customers only ever see their own vehicles.
	u := middleware.CurrentUser(c)
	if u.Role == model.RoleCustomer {
		if u.CustomerID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no customer profile"})
		}
		customerID = *u.CustomerID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	vehicles, err := h.Vehicles.List(ctx, tenantID, customerID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": vehicles, "limit": limit, "offset": offset})
}

func (h *VehicleHandler) Update(c echo.Context) error {
	tenantID, err := tenantOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, tenantID, id)
	if err != nil {
		return repoError(c, err, "vehicle not found")
	}
	if deny := h.denyForeignCustomer(c, v.CustomerID); deny != nil {
		return deny
	}

	if req.Make != "" {
		v.Make = strings.TrimSpace(req.Make)
	}
	if req.Model != "" {
		v.Model = strings.TrimSpace(req.Model)
	}
	if req.VIN != "" {
		v.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	}
	if req.LicensePlate != "" {
		v.LicensePlate = strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	}
	if req.Year != 0 {
		v.Year = req.Year
	}
	if req.Color != "" {
		v.Color = req.Color
	}
	if req.Mileage != 0 {
		v.Mileage = req.Mileage
	}
	if req.Notes != "" {
		v.Notes = req.Notes
	}

	if err := h.Vehicles.Update(ctx, v); err != nil {
		return repoError(c, err, "vehicle not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Delete(c echo.Context) error {
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

	if err := h.Vehicles.Delete(ctx, tenantID, id); err != nil {
		return repoError(c, err, "vehicle not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// denyForeignCustomer blocks a customer account from reading another
// customer's vehicle. Staff pass through.
func (h *VehicleHandler) denyForeignCustomer(c echo.Context, ownerID uint64) error {
	u := middleware.CurrentUser(c)
	if u.Role != model.RoleCustomer {
		return nil
	}
	if u.CustomerID == nil || *u.CustomerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your vehicle"})
	}
	return nil
}
