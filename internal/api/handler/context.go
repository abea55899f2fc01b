package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/middleware"
	"github.com/vikram-software/portal/internal/core/domain"
)

// actorFrom builds the caller identity injected by the Auth middleware. A
// missing identity means the route was wired without Auth; reject with 401.
func actorFrom(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get(middleware.KeyAccountID).(string)
	role, _ := c.Get(middleware.KeyRole).(string)
	if id == "" || !domain.Role(role).Valid() {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{ID: id, Role: domain.Role(role)}, nil
}
