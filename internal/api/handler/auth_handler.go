package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/api/metrics"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	// exposeResetToken echoes the raw reset token in the forgot-password
	// response. Development only; elsewhere the token travels out of band.
	exposeResetToken bool
}

func NewAuthHandler(authService ports.AuthService, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{authService: authService, exposeResetToken: exposeResetToken}
}

// Login authenticates an account and returns a bearer token with the profile.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope.Response{data=loginResponse}
// @Failure      400   {object}  envelope.Response
// @Failure      401   {object}  envelope.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return envelope.OK(c, http.StatusOK, loginResponse{Token: result.Token, Account: result.Account})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountInactive):
		return "inactive"
	default:
		return "error"
	}
}

// Me returns the authenticated account.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=domain.Account}
// @Failure      401  {object}  envelope.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	account, err := h.authService.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, account)
}

// Logout is a no-op for stateless tokens; clients discard their token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	return envelope.Message(c, http.StatusOK, "logged out")
}

// UpdatePassword changes the caller's password after checking the current one.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  envelope.Response
// @Failure      400   {object}  envelope.Response
// @Failure      401   {object}  envelope.Response
// @Router       /auth/update-password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.UpdatePassword(c.Request().Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
		}
		return err
	}
	return envelope.Message(c, http.StatusOK, "password updated")
}

// ForgotPassword issues a single-use password reset token.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  envelope.Response{data=forgotPasswordResponse}
// @Failure      400   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	resp := forgotPasswordResponse{}
	if h.exposeResetToken {
		resp.ResetToken = result.ResetToken
	}
	return envelope.OK(c, http.StatusOK, resp)
}

// ResetPassword consumes a reset token and sets a new password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  envelope.Response
// @Failure      400    {object}  envelope.Response
// @Router       /auth/reset-password/{token} [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return err
	}
	return envelope.Message(c, http.StatusOK, "password reset")
}
