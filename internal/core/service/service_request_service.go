package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// ServiceRequestService runs the client request lifecycle. A request leaves
// pending exactly once; approval spawns the project that tracks the work.
type ServiceRequestService struct {
	requests ports.ServiceRequestRepository
	projects ports.ProjectRepository
	accounts ports.AccountRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewServiceRequestService(
	requests ports.ServiceRequestRepository,
	projects ports.ProjectRepository,
	accounts ports.AccountRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *ServiceRequestService {
	return &ServiceRequestService{
		requests: requests,
		projects: projects,
		accounts: accounts,
		notifier: notifier,
		log:      log,
	}
}

func (s *ServiceRequestService) List(ctx context.Context, filter ports.ServiceRequestFilter) ([]*domain.ServiceRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "status must be one of: pending approved rejected")
	}
	return s.requests.List(ctx, filter)
}

func (s *ServiceRequestService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.ServiceRequest, error) {
	return s.requests.List(ctx, ports.ServiceRequestFilter{ClientID: actor.ID})
}

func (s *ServiceRequestService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.ServiceRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && req.ClientID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// Create stores a pending request owned by the calling client and notifies every
// administrator.
func (s *ServiceRequestService) Create(ctx context.Context, actor domain.Actor, in ports.CreateServiceRequestInput) (*domain.ServiceRequest, error) {
	if !actor.IsClient() {
		return nil, domain.ErrForbidden
	}
	if in.Timeline == "" {
		in.Timeline = domain.TimelineNormal
	}
	name, description := strings.TrimSpace(in.ServiceName), strings.TrimSpace(in.Description)
	if err := domain.CheckRequestText(&name, &description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.requests.Create(ctx, &domain.ServiceRequest{
		ClientID:    actor.ID,
		ServiceName: name,
		Description: description,
		Status:      domain.RequestPending,
		Budget:      in.Budget,
		Timeline:    in.Timeline,
		Attachments: in.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, created)

	s.log.Info().Str("request_id", created.ID).Str("client_id", actor.ID).Msg("service request created")
	return created, nil
}

// Update edits a pending request owned by actor. Text fields are trimmed and
// checked the same way Create checks them.
func (s *ServiceRequestService) Update(ctx context.Context, actor domain.Actor, id string, update ports.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	update.ServiceName = trimmed(update.ServiceName)
	update.Description = trimmed(update.Description)
	if err := domain.CheckRequestText(update.ServiceName, update.Description); err != nil {
		return nil, err
	}
	if _, err := s.ownedPending(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.requests.UpdatePending(ctx, id, update)
}

// Delete removes a pending request owned by actor.
func (s *ServiceRequestService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.ownedPending(ctx, actor, id); err != nil {
		return err
	}
	if err := s.requests.DeletePending(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("request_id", id).Msg("service request deleted")
	return nil
}

// Approve moves a pending request to approved, creates its project and notifies
// the client. Concurrent reviews of the same request are serialised by the
// repository: exactly one succeeds and the rest see a state conflict.
// When project creation fails the review stays committed and the result
// carries the approved request alongside the error.
func (s *ServiceRequestService) Approve(ctx context.Context, actor domain.Actor, id, notes string) (*ports.ApprovalResult, error) {
	reviewed, err := s.review(ctx, actor, id, domain.RequestApproved, notes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project, err := s.projects.Create(ctx, reviewed.SpawnProject(now))
	if err != nil {
		// The review is already committed; the request stays approved without a project.
		s.log.Error().Err(err).Str("request_id", reviewed.ID).Msg("approved request but failed to create project")
		return &ports.ApprovalResult{Request: reviewed}, fmt.Errorf("create project for request %s: %w", reviewed.ID, err)
	}

	s.notifier.Notify(domain.Notification{
		UserID:  reviewed.ClientID,
		Type:    domain.NotifyRequest,
		Title:   "Service request approved",
		Message: fmt.Sprintf("Your request %q has been approved", reviewed.ServiceName),
		Data:    map[string]string{"requestId": reviewed.ID, "projectId": project.ID},
	})

	s.log.Info().
		Str("request_id", reviewed.ID).
		Str("project_id", project.ID).
		Str("admin_id", actor.ID).
		Msg("service request approved")
	return &ports.ApprovalResult{Request: reviewed, Project: project}, nil
}

// Reject moves a pending request to rejected. An empty note is replaced by the
// default rejection note.
func (s *ServiceRequestService) Reject(ctx context.Context, actor domain.Actor, id, notes string) (*domain.ServiceRequest, error) {
	if strings.TrimSpace(notes) == "" {
		notes = domain.DefaultRejectionNote
	}

	reviewed, err := s.review(ctx, actor, id, domain.RequestRejected, notes)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(domain.Notification{
		UserID:  reviewed.ClientID,
		Type:    domain.NotifyRequest,
		Title:   "Service request rejected",
		Message: fmt.Sprintf("Your request %q has been rejected", reviewed.ServiceName),
		Data:    map[string]string{"requestId": reviewed.ID},
	})

	s.log.Info().Str("request_id", reviewed.ID).Str("admin_id", actor.ID).Msg("service request rejected")
	return reviewed, nil
}

func (s *ServiceRequestService) review(ctx context.Context, actor domain.Actor, id string, status domain.RequestStatus, notes string) (*domain.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.CheckReviewable(); err != nil {
		return nil, err
	}

	return s.requests.Review(ctx, id, domain.Review{
		Status:     status,
		ReviewerID: actor.ID,
		Notes:      notes,
		ReviewedAt: time.Now().UTC(),
	})
}

func (s *ServiceRequestService) ownedPending(ctx context.Context, actor domain.Actor, id string) (*domain.ServiceRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if err := req.CheckEditable(); err != nil {
		return nil, err
	}
	return req, nil
}

// trimmed returns a trimmed copy so the caller's string is left untouched.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func (s *ServiceRequestService) notifyAdmins(ctx context.Context, req *domain.ServiceRequest) {
	active := true
	admins, err := s.accounts.List(ctx, ports.AccountFilter{Role: domain.RoleAdmin, Active: &active})
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", req.ID).Msg("failed to list admins for notification")
		return
	}
	for _, admin := range admins {
		s.notifier.Notify(domain.Notification{
			UserID:  admin.ID,
			Type:    domain.NotifyRequest,
			Title:   "New service request",
			Message: fmt.Sprintf("A new request %q is awaiting review", req.ServiceName),
			Data:    map[string]string{"requestId": req.ID},
		})
	}
}
