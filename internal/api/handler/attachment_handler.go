package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// AttachmentHandler issues presigned object storage URLs.
type AttachmentHandler struct {
	service ports.AttachmentService
}

func NewAttachmentHandler(service ports.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Presign returns a URL the client PUTs the file to directly.
//
// @Summary      Presign an upload
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      presignUploadRequest  true  "Upload"
// @Success      200   {object}  envelope.Response{data=presignUploadResponse}
// @Failure      400   {object}  envelope.Response
// @Router       /attachments/presign [post]
func (h *AttachmentHandler) Presign(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req presignUploadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	url, err := h.service.PresignUpload(c.Request().Context(), actor, ports.PresignUploadInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		Scope:       domain.AttachmentScope(req.Scope),
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, presignUploadResponse{
		UploadURL: url.URL,
		ObjectKey: url.ObjectKey,
		Method:    url.Method,
		ExpiresAt: url.ExpiresAt,
	})
}

// @Summary      Presign a download
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        key  query     string  true  "Object key"
// @Success      200  {object}  envelope.Response{data=presignDownloadResponse}
// @Failure      400  {object}  envelope.Response
// @Router       /attachments/url [get]
func (h *AttachmentHandler) DownloadURL(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	url, err := h.service.PresignDownload(c.Request().Context(), actor, c.QueryParam("key"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, presignDownloadResponse{
		URL:       url.URL,
		ObjectKey: url.ObjectKey,
		ExpiresAt: url.ExpiresAt,
	})
}
