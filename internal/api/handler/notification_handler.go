package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/core/ports"
)

// NotificationHandler serves the /notifications routes.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// @Summary      My notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=[]domain.Notification}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, list)
}

// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=countResponse}
// @Router       /notifications/unread/count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, countResponse{Count: n})
}

// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  envelope.Response{data=domain.Notification}
// @Failure      404  {object}  envelope.Response
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkRead(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, n)
}
