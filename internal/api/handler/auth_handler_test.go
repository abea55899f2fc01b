package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

type stubAuthService struct {
	ports.AuthService
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	forgotFn func(ctx context.Context, email string) (*ports.ForgotPasswordResult, error)
	updateFn func(ctx context.Context, actor domain.Actor, current, next string) error
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) (*ports.ForgotPasswordResult, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, actor domain.Actor, current, next string) error {
	return s.updateFn(ctx, actor, current, next)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "anita@acme.example" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Token:   "signed.jwt.token",
				Account: &domain.Account{ID: "client_1", Email: email, Role: domain.RoleClient, PasswordHash: "hash", IsActive: true},
			}, nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":"anita@acme.example","password":"secret1"}`, "", "")
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var data map[string]any
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data["token"] != "signed.jwt.token" || data["id"] != "client_1" || data["role"] != "client" {
		t.Fatalf("expected token with flattened profile, got %+v", data)
	}
	if _, leaked := data["PasswordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}, false)

	c, _ := newContext(http.MethodPost, "/auth/login", `{"email":"nobody@acme.example","password":"x"}`, "", "")
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c, _ = newContext(http.MethodPost, "/auth/login", `{"email":"not-an-email"}`, "", "")
	var ve *domain.ValidationError
	if err := h.Login(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields["email"] == "" || ve.Fields["password"] != "password is required" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestAuthHandler_ForgotPassword_TokenExposure(t *testing.T) {
	stub := &stubAuthService{
		forgotFn: func(ctx context.Context, email string) (*ports.ForgotPasswordResult, error) {
			return &ports.ForgotPasswordResult{ResetToken: "raw-token"}, nil
		},
	}

	for _, expose := range []bool{true, false} {
		c, rec := newContext(http.MethodPost, "/auth/forgot-password", `{"email":"anita@acme.example"}`, "", "")
		if err := NewAuthHandler(stub, expose).ForgotPassword(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		var data forgotPasswordResponse
		if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
			t.Fatalf("invalid data: %v", err)
		}
		if expose && data.ResetToken != "raw-token" {
			t.Errorf("expected token in development, got %q", data.ResetToken)
		}
		if !expose && data.ResetToken != "" {
			t.Errorf("token must not be exposed, got %q", data.ResetToken)
		}
	}
}

func TestAuthHandler_UpdatePassword_WrongCurrent(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		updateFn: func(ctx context.Context, actor domain.Actor, current, next string) error {
			if actor.ID != "emp_1" {
				t.Fatalf("unexpected actor %+v", actor)
			}
			return domain.ErrInvalidCredentials
		},
	}, false)

	c, _ := newContext(http.MethodPut, "/auth/update-password", `{"currentPassword":"old","newPassword":"newpass1"}`, "emp_1", domain.RoleEmployee)
	err := h.UpdatePassword(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_RequiresIdentity(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false)
	c, _ := newContext(http.MethodGet, "/auth/me", "", "", "")

	var he *echo.HTTPError
	if err := h.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/auth/logout", "", "emp_1", domain.RoleEmployee)
	if err := NewAuthHandler(&stubAuthService{}, false).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decode(t, rec).Message == "" {
		t.Fatalf("expected message envelope")
	}
}
