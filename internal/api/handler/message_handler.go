package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/api/metrics"
	"github.com/vikram-software/portal/internal/core/ports"
)

// MessageHandler serves the /messages routes.
type MessageHandler struct {
	service ports.MessageService
}

func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  envelope.Response{data=domain.Message}
// @Failure      400   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Router       /messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.Send(c.Request().Context(), actor, ports.SendMessageInput{
		ReceiverID:  req.Receiver,
		Content:     req.Content,
		Attachments: toAttachments(req.Attachments, actor.ID, time.Now().UTC()),
	})
	if err != nil {
		return err
	}
	metrics.MessagesSentTotal.Inc()
	return envelope.OK(c, http.StatusCreated, msg)
}

// Conversations lists one row per counterpart with the latest message, newest first.
//
// @Summary      Conversation list
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=[]domain.Conversation}
// @Router       /messages/conversations [get]
func (h *MessageHandler) Conversations(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	conversations, err := h.service.Conversations(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, conversations)
}

// @Summary      Unread message count
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=countResponse}
// @Router       /messages/unread/count [get]
func (h *MessageHandler) UnreadCount(c echo.Context) error {
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

// Thread returns the messages exchanged with another account, oldest first.
//
// @Summary      Message thread
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Counterpart account id"
// @Success      200     {object}  envelope.Response{data=[]domain.Message}
// @Router       /messages/{userId} [get]
func (h *MessageHandler) Thread(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	thread, err := h.service.Thread(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, thread)
}

// @Summary      Mark a message read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  envelope.Response{data=domain.Message}
// @Failure      403        {object}  envelope.Response
// @Failure      404        {object}  envelope.Response
// @Router       /messages/{messageId}/read [put]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	msg, err := h.service.MarkRead(c.Request().Context(), actor, c.Param("messageId"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, msg)
}

// @Summary      Delete a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  envelope.Response
// @Failure      404        {object}  envelope.Response
// @Router       /messages/{messageId} [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("messageId")); err != nil {
		return err
	}
	return envelope.Message(c, http.StatusOK, "message deleted")
}
