package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vikram-software/portal/internal/api/envelope"
	"github.com/vikram-software/portal/internal/api/metrics"
	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// ProjectHandler serves the /projects routes.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, in-progress, completed or on-hold"
// @Param        client  query     string  false  "Client account id"
// @Success      200     {object}  envelope.Response{data=[]domain.Project}
// @Failure      400     {object}  envelope.Response
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.List(c.Request().Context(), ports.ProjectFilter{
		Status:   domain.ProjectStatus(c.QueryParam("status")),
		ClientID: c.QueryParam("client"),
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, projects)
}

// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  envelope.Response{data=domain.Project}
// @Failure      400   {object}  envelope.Response
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.service.Create(c.Request().Context(), req.toInput(actor.ID, time.Now().UTC()))
	if err != nil {
		return err
	}
	metrics.ProjectsCreatedTotal.WithLabelValues("admin").Inc()
	return envelope.OK(c, http.StatusCreated, project)
}

// Stats returns the project total and a count per status.
//
// @Summary      Project statistics
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=domain.ProjectStats}
// @Router       /projects/stats [get]
func (h *ProjectHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, stats)
}

// Assigned lists the projects the calling employee is assigned to.
//
// @Summary      Projects assigned to me
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=[]domain.Project}
// @Router       /projects/assigned [get]
func (h *ProjectHandler) Assigned(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	projects, err := h.service.ListAssigned(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, projects)
}

// Mine lists the projects owned by the calling client.
//
// @Summary      My projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope.Response{data=[]domain.Project}
// @Router       /projects/my-projects [get]
func (h *ProjectHandler) Mine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	projects, err := h.service.ListForClient(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, projects)
}

// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  envelope.Response{data=domain.Project}
// @Failure      403  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	project, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, project)
}

// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project id"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  envelope.Response{data=domain.Project}
// @Failure      400   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toUpdate(actor.ID, time.Now().UTC()))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, project)
}

// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return envelope.Message(c, http.StatusOK, "project deleted")
}

// UpdateStatus lets an assigned employee move the project to any status.
//
// @Summary      Update project status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Project id"
// @Param        body  body      updateProjectStatusRequest  true  "New status"
// @Success      200   {object}  envelope.Response{data=domain.Project}
// @Failure      400   {object}  envelope.Response
// @Failure      403   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Router       /projects/{id}/status [put]
func (h *ProjectHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateProjectStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), domain.ProjectStatus(req.Status))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, project)
}

// @Summary      Assign an employee
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Project id"
// @Param        body  body      assignEmployeeRequest  true  "Employee"
// @Success      200   {object}  envelope.Response{data=domain.Project}
// @Failure      400   {object}  envelope.Response
// @Failure      404   {object}  envelope.Response
// @Failure      409   {object}  envelope.Response
// @Router       /projects/{id}/assign [post]
func (h *ProjectHandler) Assign(c echo.Context) error {
	var req assignEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.service.AssignEmployee(c.Request().Context(), c.Param("id"), req.EmployeeID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, project)
}

// @Summary      Remove an employee
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true  "Project id"
// @Param        employeeId  path      string  true  "Employee id"
// @Success      200         {object}  envelope.Response{data=domain.Project}
// @Failure      404         {object}  envelope.Response
// @Router       /projects/{id}/assign/{employeeId} [delete]
func (h *ProjectHandler) Unassign(c echo.Context) error {
	project, err := h.service.RemoveEmployee(c.Request().Context(), c.Param("id"), c.Param("employeeId"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, project)
}
