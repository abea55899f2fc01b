package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// AccountHandler serves the /users routes.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List returns accounts, optionally filtered by role and active flag.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "admin, employee or client"
// @Param        active  query     bool    false  "Active flag"
// @Success      200     {object}  envelope.Response{data=[]domain.Account}
// @Failure      400     {object}  envelope.Response
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	filter := ports.AccountFilter{Role: domain.Role(c.QueryParam("role"))}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.NewValidationError("active", "active must be true or false")
		}
		filter.Active = &active
	}

	accounts, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, accounts)
}

// ListByRole returns the active accounts holding a role.
//
// @Summary      List accounts by role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "admin, employee or client"
// @Success      200   {object}  envelope.Response{data=[]domain.Account}
// @Failure      400   {object}  envelope.Response
// @Router       /users/role/{role} [get]
func (h *AccountHandler) ListByRole(c echo.Context) error {
	active := true
	accounts, err := h.service.List(c.Request().Context(), ports.AccountFilter{
		Role:   domain.Role(c.Param("role")),
		Active: &active,
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, accounts)
}

// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  envelope.Response{data=domain.Account}
// @Failure      404  {object}  envelope.Response
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, account)
}

// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account"
// @Success      201   {object}  envelope.Response{data=domain.Account}
// @Failure      400   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusCreated, account)
}

// Update edits an account. Non-administrators may only edit their own
// profile and never their role or active flag.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  envelope.Response{data=domain.Account}
// @Failure      400   {object}  envelope.Response
// @Failure      403   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /users/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.toUpdate())
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, account)
}

// @Summary      Toggle account active flag
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  envelope.Response{data=domain.Account}
// @Failure      403  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Failure      409  {object}  envelope.Response
// @Router       /users/{id}/toggle-status [put]
func (h *AccountHandler) ToggleStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	account, err := h.service.ToggleStatus(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, account)
}

// Deactivate soft-deletes an account by clearing its active flag.
//
// @Summary      Deactivate an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  envelope.Response{data=domain.Account}
// @Failure      403  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Failure      409  {object}  envelope.Response
// @Router       /users/{id} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	account, err := h.service.Deactivate(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, account)
}
