package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

func newProjectSvc(projects ...*domain.Project) (*ProjectService, *stubProjectRepo, *recordingNotifier) {
	repo := newStubProjectRepo(projects...)
	notifier := &recordingNotifier{}
	accounts := newStubAccountRepo(adminAcc, employeeAcc, clientAcc, client2Acc)
	return NewProjectService(repo, accounts, notifier, zerolog.Nop()), repo, notifier
}

func seededProject(id string, employees ...string) *domain.Project {
	now := time.Now().UTC()
	return &domain.Project{
		ID:                id,
		Name:              "Storefront",
		ClientID:          clientAcc.ID,
		AssignedEmployees: employees,
		Status:            domain.ProjectPending,
		Priority:          domain.PriorityMedium,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestProjectService_UpdateStatus_AssignedEmployee(t *testing.T) {
	svc, _, notifier := newProjectSvc(seededProject("prj_a", employeeAcc.ID))
	ctx := context.Background()

	p, err := svc.UpdateStatus(ctx, actorOf(employeeAcc), "prj_a", domain.ProjectInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if p.Status != domain.ProjectInProgress || p.StartDate == nil {
		t.Fatalf("expected in-progress with start date, got %+v", p)
	}
	start := *p.StartDate

	p, err = svc.UpdateStatus(ctx, actorOf(employeeAcc), "prj_a", domain.ProjectCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if p.EndDate == nil {
		t.Fatalf("expected end date on completion")
	}
	if !p.StartDate.Equal(start) {
		t.Errorf("start date changed from %v to %v", start, p.StartDate)
	}
	if got := len(notifier.to(clientAcc.ID)); got != 2 {
		t.Errorf("expected 2 client notifications, got %d", got)
	}
}

// editDuringReadRepo applies an administrator edit right after the employee's
// read, reproducing an interleaved update.
type editDuringReadRepo struct {
	*stubProjectRepo
	edit func()
}

func (r *editDuringReadRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := r.stubProjectRepo.FindByID(ctx, id)
	if r.edit != nil {
		r.edit()
		r.edit = nil
	}
	return p, err
}

func TestProjectService_UpdateStatus_KeepsConcurrentAdminEdit(t *testing.T) {
	repo := newStubProjectRepo(seededProject("prj_a", employeeAcc.ID))
	renamed := "Storefront v2"
	racing := &editDuringReadRepo{stubProjectRepo: repo}
	racing.edit = func() {
		if _, err := repo.Update(context.Background(), "prj_a", ports.ProjectUpdate{Name: &renamed}, time.Now().UTC()); err != nil {
			t.Fatalf("admin Update returned error: %v", err)
		}
	}
	accounts := newStubAccountRepo(adminAcc, employeeAcc, clientAcc)
	svc := NewProjectService(racing, accounts, &recordingNotifier{}, zerolog.Nop())

	p, err := svc.UpdateStatus(context.Background(), actorOf(employeeAcc), "prj_a", domain.ProjectCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if p.Status != domain.ProjectCompleted || p.EndDate == nil {
		t.Errorf("expected completed with end date, got %+v", p)
	}
	stored, _ := repo.FindByID(context.Background(), "prj_a")
	if stored.Name != renamed {
		t.Errorf("status change must not revert the name, got %q", stored.Name)
	}
}

func TestProjectService_Update_OnlyGivenFields(t *testing.T) {
	seeded := seededProject("prj_a", employeeAcc.ID)
	seeded.Description = "original"
	svc, repo, _ := newProjectSvc(seeded)
	ctx := context.Background()

	status := domain.ProjectInProgress
	p, err := svc.Update(ctx, "prj_a", ports.ProjectUpdate{Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if p.StartDate == nil || p.Description != "original" || p.Name != "Storefront" {
		t.Errorf("unexpected project after status-only update: %+v", p)
	}

	bad := domain.ProjectStatus("done")
	if _, err := svc.Update(ctx, "prj_a", ports.ProjectUpdate{Status: &bad}); err == nil {
		t.Fatalf("expected validation error for unknown status")
	}
	name := "Renamed"
	if _, err := svc.Update(ctx, "missing", ports.ProjectUpdate{Name: &name}); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	stored, _ := repo.FindByID(ctx, "prj_a")
	if stored.Status != domain.ProjectInProgress {
		t.Errorf("expected stored status in-progress, got %s", stored.Status)
	}
}

func TestProjectService_UpdateStatus_Forbidden(t *testing.T) {
	svc, repo, _ := newProjectSvc(seededProject("prj_a"))
	ctx := context.Background()

	for _, actor := range []domain.Actor{actorOf(employeeAcc), actorOf(adminAcc), actorOf(clientAcc)} {
		if _, err := svc.UpdateStatus(ctx, actor, "prj_a", domain.ProjectOnHold); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden for %s, got %v", actor.Role, err)
		}
	}
	stored, _ := repo.FindByID(ctx, "prj_a")
	if stored.Status != domain.ProjectPending {
		t.Errorf("status must be unchanged, got %s", stored.Status)
	}
}

func TestProjectService_UpdateStatus_Invalid(t *testing.T) {
	svc, _, _ := newProjectSvc(seededProject("prj_a", employeeAcc.ID))
	_, err := svc.UpdateStatus(context.Background(), actorOf(employeeAcc), "prj_a", "done")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProjectService_AssignEmployee(t *testing.T) {
	svc, _, notifier := newProjectSvc(seededProject("prj_a"))
	ctx := context.Background()

	p, err := svc.AssignEmployee(ctx, "prj_a", employeeAcc.ID)
	if err != nil {
		t.Fatalf("AssignEmployee returned error: %v", err)
	}
	if !p.IsAssigned(employeeAcc.ID) {
		t.Fatalf("expected employee assigned, got %v", p.AssignedEmployees)
	}
	if len(notifier.to(employeeAcc.ID)) != 1 {
		t.Errorf("expected employee notification")
	}

	if _, err := svc.AssignEmployee(ctx, "prj_a", employeeAcc.ID); !errors.Is(err, domain.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
	if _, err := svc.AssignEmployee(ctx, "prj_a", clientAcc.ID); !errors.Is(err, domain.ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee for client, got %v", err)
	}
	if _, err := svc.AssignEmployee(ctx, "prj_a", "ghost"); !errors.Is(err, domain.ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee for unknown account, got %v", err)
	}

	p, err = svc.RemoveEmployee(ctx, "prj_a", employeeAcc.ID)
	if err != nil {
		t.Fatalf("RemoveEmployee returned error: %v", err)
	}
	if p.IsAssigned(employeeAcc.ID) {
		t.Errorf("expected employee removed")
	}
}

func TestProjectService_Get_Visibility(t *testing.T) {
	svc, _, _ := newProjectSvc(seededProject("prj_a", employeeAcc.ID))
	ctx := context.Background()

	allowed := []domain.Actor{actorOf(adminAcc), actorOf(employeeAcc), actorOf(clientAcc)}
	for _, actor := range allowed {
		if _, err := svc.Get(ctx, actor, "prj_a"); err != nil {
			t.Errorf("expected %s to see project, got %v", actor.ID, err)
		}
	}
	if _, err := svc.Get(ctx, actorOf(client2Acc), "prj_a"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for other client, got %v", err)
	}
	if _, err := svc.Get(ctx, actorOf(adminAcc), "missing"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectService_Create(t *testing.T) {
	svc, _, notifier := newProjectSvc()
	ctx := context.Background()

	p, err := svc.Create(ctx, ports.CreateProjectInput{
		Name:              "Intranet",
		ClientID:          clientAcc.ID,
		AssignedEmployees: []string{employeeAcc.ID, employeeAcc.ID},
		Status:            domain.ProjectInProgress,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(p.AssignedEmployees) != 1 {
		t.Errorf("expected duplicate employees collapsed, got %v", p.AssignedEmployees)
	}
	if p.StartDate == nil {
		t.Errorf("expected start date for in-progress project")
	}
	if p.Priority != domain.PriorityMedium {
		t.Errorf("expected default priority, got %s", p.Priority)
	}
	if len(notifier.to(clientAcc.ID)) != 1 || len(notifier.to(employeeAcc.ID)) != 1 {
		t.Errorf("expected client and employee notifications, got %+v", notifier.sent)
	}

	_, err = svc.Create(ctx, ports.CreateProjectInput{Name: "Bad", ClientID: employeeAcc.ID})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for non-client owner, got %v", err)
	}
}

func TestProjectService_Stats(t *testing.T) {
	done := seededProject("prj_b")
	done.Status = domain.ProjectCompleted
	svc, _, _ := newProjectSvc(seededProject("prj_a"), done, seededProject("prj_c"))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByStatus[domain.ProjectPending] != 2 || stats.ByStatus[domain.ProjectCompleted] != 1 {
		t.Errorf("unexpected counts %v", stats.ByStatus)
	}
	if _, ok := stats.ByStatus[domain.ProjectOnHold]; !ok {
		t.Errorf("expected every status to be reported")
	}
}

func TestProjectService_ListScopes(t *testing.T) {
	other := seededProject("prj_b")
	other.ClientID = client2Acc.ID
	svc, _, _ := newProjectSvc(seededProject("prj_a", employeeAcc.ID), other)
	ctx := context.Background()

	assigned, _ := svc.ListAssigned(ctx, actorOf(employeeAcc))
	if len(assigned) != 1 || assigned[0].ID != "prj_a" {
		t.Errorf("unexpected assigned projects %v", assigned)
	}
	mine, _ := svc.ListForClient(ctx, actorOf(client2Acc))
	if len(mine) != 1 || mine[0].ID != "prj_b" {
		t.Errorf("unexpected client projects %v", mine)
	}
}
