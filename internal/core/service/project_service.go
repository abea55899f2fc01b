package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// ProjectService handles project administration, employee assignment and the
// status updates employees make on their assigned projects.
type ProjectService struct {
	projects ports.ProjectRepository
	accounts ports.AccountRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewProjectService(
	projects ports.ProjectRepository,
	accounts ports.AccountRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		accounts: accounts,
		notifier: notifier,
		log:      log,
	}
}

func (s *ProjectService) List(ctx context.Context, filter ports.ProjectFilter) ([]*domain.Project, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidProjectStatus()
	}
	return s.projects.List(ctx, filter)
}

// Get returns a project visible to actor: administrators see all, employees their
// assignments and clients their own projects.
func (s *ProjectService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsEmployee() && project.IsAssigned(actor.ID):
	case actor.IsClient() && project.ClientID == actor.ID:
	default:
		return nil, domain.ErrForbidden
	}
	return project, nil
}

func (s *ProjectService) Create(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	if in.Status == "" {
		in.Status = domain.ProjectPending
	}
	if !in.Status.Valid() {
		return nil, invalidProjectStatus()
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	client, err := s.accounts.FindByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.NewValidationError("client", "client must reference an existing client account")
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, domain.NewValidationError("client", "client must reference an existing client account")
	}

	assigned := make([]string, 0, len(in.AssignedEmployees))
	seen := make(map[string]bool, len(in.AssignedEmployees))
	for _, id := range in.AssignedEmployees {
		if seen[id] {
			continue
		}
		if err := s.checkEmployee(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = true
		assigned = append(assigned, id)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		Name:              in.Name,
		Description:       in.Description,
		ClientID:          in.ClientID,
		AssignedEmployees: assigned,
		ServiceType:       in.ServiceType,
		Budget:            in.Budget,
		Priority:          in.Priority,
		Attachments:       in.Attachments,
		CreatedAt:         now,
	}
	project.ApplyStatus(in.Status, now)

	created, err := s.projects.Create(ctx, project)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(domain.Notification{
		UserID:  created.ClientID,
		Type:    domain.NotifyProject,
		Title:   "New project created",
		Message: fmt.Sprintf("Project %q has been created for you", created.Name),
		Data:    map[string]string{"projectId": created.ID},
	})
	for _, id := range created.AssignedEmployees {
		s.notifyAssigned(created, id)
	}

	s.log.Info().Str("project_id", created.ID).Str("client_id", created.ClientID).Msg("project created")
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, update ports.ProjectUpdate) (*domain.Project, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, invalidProjectStatus()
	}
	return s.projects.Update(ctx, id, update, time.Now().UTC())
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

func (s *ProjectService) ListAssigned(ctx context.Context, actor domain.Actor) ([]*domain.Project, error) {
	return s.projects.List(ctx, ports.ProjectFilter{EmployeeID: actor.ID})
}

func (s *ProjectService) ListForClient(ctx context.Context, actor domain.Actor) ([]*domain.Project, error) {
	return s.projects.List(ctx, ports.ProjectFilter{ClientID: actor.ID})
}

// UpdateStatus lets an assigned employee move a project to any known status.
func (s *ProjectService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.ProjectStatus) (*domain.Project, error) {
	if !status.Valid() {
		return nil, invalidProjectStatus()
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsEmployee() || !project.IsAssigned(actor.ID) {
		return nil, domain.ErrForbidden
	}

	previous := project.Status
	saved, err := s.projects.UpdateStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.notifier.Notify(domain.Notification{
			UserID:  saved.ClientID,
			Type:    domain.NotifyProject,
			Title:   "Project status updated",
			Message: fmt.Sprintf("Project %q is now %s", saved.Name, saved.Status),
			Data:    map[string]string{"projectId": saved.ID, "status": string(saved.Status)},
		})
	}

	s.log.Info().
		Str("project_id", saved.ID).
		Str("employee_id", actor.ID).
		Str("from", string(previous)).
		Str("to", string(saved.Status)).
		Msg("project status updated")
	return saved, nil
}

func (s *ProjectService) AssignEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	project, err := s.projects.AddEmployee(ctx, id, employeeID)
	if err != nil {
		return nil, err
	}
	s.notifyAssigned(project, employeeID)

	s.log.Info().Str("project_id", id).Str("employee_id", employeeID).Msg("employee assigned")
	return project, nil
}

func (s *ProjectService) RemoveEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error) {
	project, err := s.projects.RemoveEmployee(ctx, id, employeeID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", id).Str("employee_id", employeeID).Msg("employee unassigned")
	return project, nil
}

func (s *ProjectService) Stats(ctx context.Context) (*domain.ProjectStats, error) {
	counts, err := s.projects.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.ProjectStats{ByStatus: make(map[domain.ProjectStatus]int64, len(domain.ProjectStatuses))}
	for _, status := range domain.ProjectStatuses {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// checkEmployee rejects ids that do not reference an active employee account.
func (s *ProjectService) checkEmployee(ctx context.Context, id string) error {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidEmployee
		}
		return err
	}
	if account.Role != domain.RoleEmployee || !account.IsActive {
		return domain.ErrInvalidEmployee
	}
	return nil
}

func (s *ProjectService) notifyAssigned(project *domain.Project, employeeID string) {
	s.notifier.Notify(domain.Notification{
		UserID:  employeeID,
		Type:    domain.NotifyProject,
		Title:   "Assigned to project",
		Message: fmt.Sprintf("You have been assigned to project %q", project.Name),
		Data:    map[string]string{"projectId": project.ID},
	})
}

func invalidProjectStatus() error {
	return domain.NewValidationError("status", "status must be one of: pending in-progress completed on-hold")
}
