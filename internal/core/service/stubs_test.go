package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each mirrors the filtering of its Mongo
// counterpart closely enough for service tests.
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	seq      int
	touchErr error
}

func newStubAccountRepo(accounts ...*domain.Account) *stubAccountRepo {
	r := &stubAccountRepo{byID: make(map[string]*domain.Account)}
	for _, a := range accounts {
		clone := *a
		r.byID[a.ID] = &clone
	}
	return r
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := *a
	clone.ID = fmt.Sprintf("acc_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) List(_ context.Context, f ports.AccountFilter) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.byID {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.Active != nil && a.IsActive != *f.Active {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *stubAccountRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.LastLogin = &at
	}
	return nil
}

func (r *stubAccountRepo) ExistsWithRole(_ context.Context, role domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type stubProjectRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Project
	seq       int
	createErr error
}

func newStubProjectRepo(projects ...*domain.Project) *stubProjectRepo {
	r := &stubProjectRepo{byID: make(map[string]*domain.Project)}
	for _, p := range projects {
		clone := *p
		r.byID[p.ID] = &clone
	}
	return r
}

func cloneProject(p *domain.Project) *domain.Project {
	clone := *p
	clone.AssignedEmployees = append([]string{}, p.AssignedEmployees...)
	return &clone
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.SourceRequestID != "" {
		for _, existing := range r.byID {
			if existing.SourceRequestID == p.SourceRequestID {
				return nil, fmt.Errorf("duplicate source request %s", p.SourceRequestID)
			}
		}
	}
	r.seq++
	clone := cloneProject(p)
	clone.ID = fmt.Sprintf("prj_%d", r.seq)
	r.byID[clone.ID] = clone
	return cloneProject(clone), nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.byID {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.EmployeeID != "" && !p.IsAssigned(f.EmployeeID) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, id string, u ports.ProjectUpdate, at time.Time) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.ServiceType != nil {
		p.ServiceType = *u.ServiceType
	}
	if u.Budget != nil {
		p.Budget = u.Budget
	}
	if u.Priority != nil {
		p.Priority = *u.Priority
	}
	if u.Attachments != nil {
		p.Attachments = *u.Attachments
	}
	if u.Status != nil {
		p.ApplyStatus(*u.Status, at)
	}
	p.UpdatedAt = at
	return cloneProject(p), nil
}

// UpdateStatus touches only the status fields of the stored project, like the
// real store does, so concurrent edits made through Update survive.
func (r *stubProjectRepo) UpdateStatus(_ context.Context, id string, status domain.ProjectStatus, at time.Time) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p.ApplyStatus(status, at)
	return cloneProject(p), nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProjectRepo) AddEmployee(_ context.Context, id, employeeID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if p.IsAssigned(employeeID) {
		return nil, domain.ErrAlreadyAssigned
	}
	p.AssignedEmployees = append(p.AssignedEmployees, employeeID)
	return cloneProject(p), nil
}

func (r *stubProjectRepo) RemoveEmployee(_ context.Context, id, employeeID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	kept := p.AssignedEmployees[:0]
	for _, e := range p.AssignedEmployees {
		if e != employeeID {
			kept = append(kept, e)
		}
	}
	p.AssignedEmployees = kept
	return cloneProject(p), nil
}

func (r *stubProjectRepo) CountByStatus(_ context.Context) (map[domain.ProjectStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ProjectStatus]int64)
	for _, p := range r.byID {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *stubProjectRepo) FindBySourceRequest(_ context.Context, requestID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.SourceRequestID == requestID {
			return cloneProject(p), nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

type stubRequestRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.ServiceRequest
	seq  int
}

func newStubRequestRepo(requests ...*domain.ServiceRequest) *stubRequestRepo {
	r := &stubRequestRepo{byID: make(map[string]*domain.ServiceRequest)}
	for _, req := range requests {
		clone := *req
		r.byID[req.ID] = &clone
	}
	return r
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *req
	clone.ID = fmt.Sprintf("req_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context, f ports.ServiceRequestFilter) ([]*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ServiceRequest
	for _, req := range r.byID {
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.ClientID != "" && req.ClientID != f.ClientID {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRequestRepo) UpdatePending(_ context.Context, id string, u ports.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if err := req.CheckEditable(); err != nil {
		return nil, err
	}
	if u.ServiceName != nil {
		req.ServiceName = *u.ServiceName
	}
	if u.Description != nil {
		req.Description = *u.Description
	}
	if u.Budget != nil {
		req.Budget = u.Budget
	}
	if u.Timeline != nil {
		req.Timeline = *u.Timeline
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) DeletePending(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if err := req.CheckEditable(); err != nil {
		return err
	}
	delete(r.byID, id)
	return nil
}

// Review is an atomic compare-and-set on the pending status.
func (r *stubRequestRepo) Review(_ context.Context, id string, rev domain.Review) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if err := req.CheckReviewable(); err != nil {
		return nil, err
	}
	at := rev.ReviewedAt
	req.Status = rev.Status
	req.AdminNotes = rev.Notes
	req.ReviewedBy = rev.ReviewerID
	req.ReviewedAt = &at
	req.UpdatedAt = at
	clone := *req
	return &clone, nil
}

type stubMessageRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Message
	seq  int
}

func newStubMessageRepo(messages ...*domain.Message) *stubMessageRepo {
	r := &stubMessageRepo{byID: make(map[string]*domain.Message)}
	for _, m := range messages {
		clone := *m
		r.byID[m.ID] = &clone
	}
	return r
}

func (r *stubMessageRepo) Create(_ context.Context, m *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *m
	clone.ID = fmt.Sprintf("msg_%03d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubMessageRepo) FindForParticipant(_ context.Context, id, accountID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok || m.IsDeleted || !m.Involves(accountID) {
		return nil, domain.ErrMessageNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubMessageRepo) Thread(_ context.Context, a, b string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.byID {
		if m.IsDeleted {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubMessageRepo) ListByParticipant(_ context.Context, accountID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.byID {
		if !m.IsDeleted && m.Involves(accountID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) MarkRead(_ context.Context, id, receiverID string, at time.Time) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok || m.IsDeleted || m.ReceiverID != receiverID {
		return nil, domain.ErrMessageNotFound
	}
	if !m.Read {
		m.Read = true
		m.ReadAt = &at
	}
	clone := *m
	return &clone, nil
}

func (r *stubMessageRepo) CountUnread(_ context.Context, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.byID {
		if m.ReceiverID == receiverID && !m.Read && !m.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *stubMessageRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrMessageNotFound
	}
	m.IsDeleted = true
	return nil
}

type stubNotificationRepo struct {
	mu    sync.Mutex
	items []*domain.Notification
	err   error
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *n
	clone.ID = fmt.Sprintf("ntf_%d", len(r.items)+1)
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubNotificationRepo) ListForUser(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].UserID == userID {
			clone := *r.items[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			if !n.Read {
				n.Read = true
				n.ReadAt = &at
			}
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

// recordingNotifier captures notifications instead of dispatching them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) to(userID string) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

type stubResetStore struct {
	tokens map[string]string
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{tokens: make(map[string]string)}
}

func (s *stubResetStore) Save(_ context.Context, digest, accountID string, _ time.Duration) error {
	s.tokens[digest] = accountID
	return nil
}

func (s *stubResetStore) Consume(_ context.Context, digest string) (string, error) {
	id, ok := s.tokens[digest]
	if !ok {
		return "", domain.ErrInvalidResetToken
	}
	delete(s.tokens, digest)
	return id, nil
}

type stubPresigner struct {
	lastKey string
}

func (p *stubPresigner) PresignPut(_ context.Context, key, _ string, _ int64) (*domain.PresignedURL, error) {
	p.lastKey = key
	return &domain.PresignedURL{URL: "https://bucket.local/" + key, ObjectKey: key, Method: "PUT", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil
}

func (p *stubPresigner) PresignGet(_ context.Context, key string) (*domain.PresignedURL, error) {
	p.lastKey = key
	return &domain.PresignedURL{URL: "https://bucket.local/" + key, ObjectKey: key, Method: "GET", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil
}

// fixture accounts shared by the service tests
var (
	adminAcc    = &domain.Account{ID: "admin_1", Email: "admin@vikram.com", Role: domain.RoleAdmin, IsActive: true, FirstName: "Ada"}
	employeeAcc = &domain.Account{ID: "emp_1", Email: "emp@vikram.com", Role: domain.RoleEmployee, IsActive: true, FirstName: "Eve"}
	clientAcc   = &domain.Account{ID: "client_1", Email: "client@acme.com", Role: domain.RoleClient, IsActive: true, FirstName: "Carl"}
	client2Acc  = &domain.Account{ID: "client_2", Email: "client2@acme.com", Role: domain.RoleClient, IsActive: true, FirstName: "Cleo"}
)

func actorOf(a *domain.Account) domain.Actor {
	return domain.Actor{ID: a.ID, Role: a.Role}
}
