package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// EmployeeHandler manages back-office staff records.
type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

type employeeRequest struct {
	UserID      string   `json:"user" validate:"required"`
	LocalID     string   `json:"local" validate:"required"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

func (r employeeRequest) toInput() ports.EmployeeInput {
	return ports.EmployeeInput{UserID: r.UserID, LocalID: r.LocalID, Permissions: r.Permissions}
}

// Create handles POST /v1/admin/employees.
//
// @Summary      Register an employee (super-admin)
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      employeeRequest  true  "Employee details"
// @Success      201   {object}  domain.Employee
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/admin/employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	emp, err := h.service.CreateEmployee(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, emp)
}

// Get handles GET /v1/admin/employees/:id.
//
// @Summary      Get an employee (super-admin)
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee id"
// @Success      200  {object}  domain.Employee
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	emp, err := h.service.GetEmployee(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emp)
}

// List handles GET /v1/admin/employees.
//
// @Summary      List employees (super-admin)
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Employee
// @Router       /v1/admin/employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	emps, err := h.service.ListEmployees(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emps)
}

// Update handles PUT /v1/admin/employees/:id.
//
// @Summary      Update an employee (super-admin)
// @Tags         employees
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string           true  "Employee id"
// @Param        body  body  employeeRequest  true  "Employee details"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.UpdateEmployee(c.Request().Context(), id, c.Param("id"), req.toInput()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/employees/:id.
//
// @Summary      Remove an employee (super-admin)
// @Tags         employees
// @Security     BearerAuth
// @Param        id  path  string  true  "Employee id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteEmployee(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LocalHandler manages branch offices.
type LocalHandler struct {
	service ports.LocalService
}

func NewLocalHandler(service ports.LocalService) *LocalHandler {
	return &LocalHandler{service: service}
}

type localRequest struct {
	Country     string `json:"country" validate:"required"`
	City        string `json:"city" validate:"required"`
	Direction   string `json:"direction" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

func (r localRequest) toInput() ports.LocalInput {
	return ports.LocalInput{
		Country:     r.Country,
		City:        r.City,
		Direction:   r.Direction,
		PhoneNumber: r.PhoneNumber,
	}
}

// Create handles POST /v1/admin/locals.
//
// @Summary      Register a branch office (super-admin)
// @Tags         locals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      localRequest  true  "Branch details"
// @Success      201   {object}  domain.Local
// @Failure      409   {object}  map[string]string
// @Router       /v1/admin/locals [post]
func (h *LocalHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req localRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	local, err := h.service.CreateLocal(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, local)
}

// Get handles GET /v1/admin/locals/:id.
//
// @Summary      Get a branch office (super-admin)
// @Tags         locals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Local id"
// @Success      200  {object}  domain.Local
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/locals/{id} [get]
func (h *LocalHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	local, err := h.service.GetLocal(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, local)
}

// List handles GET /v1/admin/locals.
//
// @Summary      List branch offices (super-admin)
// @Tags         locals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Local
// @Router       /v1/admin/locals [get]
func (h *LocalHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	locals, err := h.service.ListLocals(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locals)
}

// Update handles PUT /v1/admin/locals/:id.
//
// @Summary      Update a branch office (super-admin)
// @Tags         locals
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string        true  "Local id"
// @Param        body  body  localRequest  true  "Branch details"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/locals/{id} [put]
func (h *LocalHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req localRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.UpdateLocal(c.Request().Context(), id, c.Param("id"), req.toInput()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/locals/:id.
//
// @Summary      Remove a branch office (super-admin)
// @Tags         locals
// @Security     BearerAuth
// @Param        id  path  string  true  "Local id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/locals/{id} [delete]
func (h *LocalHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteLocal(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PermissionHandler manages the permission tag registry.
type PermissionHandler struct {
	service ports.PermissionService
}

func NewPermissionHandler(service ports.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

type permissionRequest struct {
	Name string `json:"name" validate:"required"`
}

// Create handles POST /v1/admin/permissions.
//
// @Summary      Register a permission tag (super-admin)
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      permissionRequest  true  "Permission name"
// @Success      201   {object}  domain.Permission
// @Failure      409   {object}  map[string]string
// @Router       /v1/admin/permissions [post]
func (h *PermissionHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req permissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	perm, err := h.service.CreatePermission(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, perm)
}

// List handles GET /v1/admin/permissions.
//
// @Summary      List permission tags (super-admin)
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Permission
// @Router       /v1/admin/permissions [get]
func (h *PermissionHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	perms, err := h.service.ListPermissions(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// Delete handles DELETE /v1/admin/permissions/:id.
//
// @Summary      Remove a permission tag (super-admin)
// @Tags         permissions
// @Security     BearerAuth
// @Param        id  path  string  true  "Permission id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/permissions/{id} [delete]
func (h *PermissionHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePermission(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
