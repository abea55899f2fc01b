package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/api/metrics"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// ServiceRequestHandler serves the /service-requests routes.
type ServiceRequestHandler struct {
	service ports.ServiceRequestService
}

func NewServiceRequestHandler(service ports.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{service: service}
}

// @Summary      Submit a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createServiceRequestRequest  true  "Request"
// @Success      201   {object}  envelope.Response{data=domain.ServiceRequest}
// @Failure      400   {object}  envelope.Response
// @Router       /service-requests [post]
func (h *ServiceRequestHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createServiceRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.service.Create(c.Request().Context(), actor, req.toInput(actor.ID, time.Now().UTC()))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusCreated, created)
}

// @Summary      My service requests
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=[]domain.ServiceRequest}
// @Router       /service-requests/my-requests [get]
func (h *ServiceRequestHandler) Mine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListMine(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, requests)
}

// @Summary      List service requests
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200     {object}  envelope.Response{data=[]domain.ServiceRequest}
// @Failure      400     {object}  envelope.Response
// @Router       /service-requests [get]
func (h *ServiceRequestHandler) List(c echo.Context) error {
	requests, err := h.service.List(c.Request().Context(), ports.ServiceRequestFilter{
		Status: domain.RequestStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, requests)
}

// @Summary      Get a service request
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  envelope.Response{data=domain.ServiceRequest}
// @Failure      403  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Router       /service-requests/{id} [get]
func (h *ServiceRequestHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	request, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, request)
}

// Update edits a pending request owned by the caller.
//
// @Summary      Update a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Request id"
// @Param        body  body      updateServiceRequestRequest  true  "Fields to change"
// @Success      200   {object}  envelope.Response{data=domain.ServiceRequest}
// @Failure      400   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /service-requests/{id} [put]
func (h *ServiceRequestHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateServiceRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.toUpdate(actor.ID, time.Now().UTC()))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, updated)
}

// @Summary      Withdraw a service request
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Failure      409  {object}  envelope.Response
// @Router       /service-requests/{id} [delete]
func (h *ServiceRequestHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return envelope.Message(c, http.StatusOK, "service request deleted")
}

// Approve reviews a pending request and spawns its project.
//
// @Summary      Approve a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true   "Request id"
// @Param        body  body      notesRequest  false  "Admin notes"
// @Success      200   {object}  envelope.Response{data=approvalResponse}
// @Failure      404   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /service-requests/{id}/approve [put]
func (h *ServiceRequestHandler) Approve(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req notesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.service.Approve(c.Request().Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		// The review is committed even when project creation fails.
		if result != nil && result.Request != nil {
			metrics.ServiceRequestsReviewedTotal.WithLabelValues(string(domain.RequestApproved)).Inc()
		}
		countConflict(err)
		return err
	}
	metrics.ServiceRequestsReviewedTotal.WithLabelValues(string(domain.RequestApproved)).Inc()
	metrics.ProjectsCreatedTotal.WithLabelValues("request").Inc()

	return envelope.OK(c, http.StatusOK, approvalResponse{Request: result.Request, Project: result.Project})
}

// @Summary      Reject a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true   "Request id"
// @Param        body  body      notesRequest  false  "Reason"
// @Success      200   {object}  envelope.Response{data=rejectionResponse}
// @Failure      404   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /service-requests/{id}/reject [put]
func (h *ServiceRequestHandler) Reject(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req notesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rejected, err := h.service.Reject(c.Request().Context(), actor, c.Param("id"), req.Notes)
	if err != nil {
		countConflict(err)
		return err
	}
	metrics.ServiceRequestsReviewedTotal.WithLabelValues(string(domain.RequestRejected)).Inc()

	return envelope.OK(c, http.StatusOK, rejectionResponse{Request: rejected})
}

func countConflict(err error) {
	if errors.Is(err, domain.ErrStateConflict) {
		metrics.ReviewConflictsTotal.Inc()
	}
}
