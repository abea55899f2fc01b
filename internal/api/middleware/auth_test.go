package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "emp_1",
		"role":  "employee",
		"email": "eva@vikram.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rec, c, called := runAuth(t, "Bearer "+signToken(t, "secret", jwt.SigningMethodHS256, validClaims()))

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(KeyAccountID) != "emp_1" {
		t.Errorf("account_id not set, got %v", c.Get(KeyAccountID))
	}
	if c.Get(KeyRole) != "employee" {
		t.Errorf("role not set, got %v", c.Get(KeyRole))
	}
	if c.Get(KeyEmail) != "eva@vikram.com" {
		t.Errorf("email not set, got %v", c.Get(KeyEmail))
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	badRole := validClaims()
	badRole["role"] = "guest"

	noSub := validClaims()
	delete(noSub, "sub")

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"garbage":         "Bearer not-a-token",
		"wrong secret":    "Bearer " + signToken(t, "other", jwt.SigningMethodHS256, validClaims()),
		"wrong algorithm": "Bearer " + signToken(t, "secret", jwt.SigningMethodHS512, validClaims()),
		"expired":         "Bearer " + signToken(t, "secret", jwt.SigningMethodHS256, expired),
		"no expiry":       "Bearer " + signToken(t, "secret", jwt.SigningMethodHS256, noExp),
		"unknown role":    "Bearer " + signToken(t, "secret", jwt.SigningMethodHS256, badRole),
		"missing subject": "Bearer " + signToken(t, "secret", jwt.SigningMethodHS256, noSub),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runAuth(t, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
