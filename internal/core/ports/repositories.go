package ports

import (
	"context"
	"time"

	"github.com/vikram-software/portal/internal/core/domain"
)

// AccountFilter narrows account listings. Zero values mean "no filter".
type AccountFilter struct {
	Role   domain.Role
	Active *bool
}

// AccountUpdate carries the mutable account fields; nil pointers are left unchanged.
type AccountUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	CompanyName    *string
	ProfilePicture *string
	Role           *domain.Role
	IsActive       *bool
}

// AccountRepository persists accounts. Emails are stored normalized and unique.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]*domain.Account, error)
	Update(ctx context.Context, id string, update AccountUpdate) (*domain.Account, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
}

// ProjectFilter narrows project listings. Zero values mean "no filter".
type ProjectFilter struct {
	Status     domain.ProjectStatus
	ClientID   string
	EmployeeID string
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	// Update writes only the fields set in update. A status change stamps the
	// start date once and the end date on completion.
	Update(ctx context.Context, id string, update ProjectUpdate, at time.Time) (*domain.Project, error)
	// UpdateStatus writes the status and its dates, leaving every other field alone.
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, at time.Time) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	// AddEmployee appends employeeID unless already present; returns ErrAlreadyAssigned otherwise.
	AddEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error)
	RemoveEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error)
	CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int64, error)
	FindBySourceRequest(ctx context.Context, requestID string) (*domain.Project, error)
}

// ServiceRequestFilter narrows request listings.
type ServiceRequestFilter struct {
	Status   domain.RequestStatus
	ClientID string
}

// ServiceRequestUpdate carries the client-editable fields of a pending request.
type ServiceRequestUpdate struct {
	ServiceName *string
	Description *string
	Budget      *float64
	Timeline    *domain.Timeline
	Attachments *[]domain.Attachment
}

// ServiceRequestRepository persists service requests.
type ServiceRequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) (*domain.ServiceRequest, error)
	FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter ServiceRequestFilter) ([]*domain.ServiceRequest, error)
	// UpdatePending applies update only while the request is still pending.
	UpdatePending(ctx context.Context, id string, update ServiceRequestUpdate) (*domain.ServiceRequest, error)
	// DeletePending removes the request only while it is still pending.
	DeletePending(ctx context.Context, id string) error
	// Review performs the compare-and-set pending → review.Status. When the request is
	// no longer pending it returns a *domain.StateConflictError naming the current status.
	Review(ctx context.Context, id string, review domain.Review) (*domain.ServiceRequest, error)
}

// MessageRepository persists messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	// FindForParticipant returns a non-deleted message the account sent or received.
	FindForParticipant(ctx context.Context, id, accountID string) (*domain.Message, error)
	// Thread returns the non-deleted messages between two accounts, oldest first.
	Thread(ctx context.Context, a, b string) ([]*domain.Message, error)
	// ListByParticipant returns every non-deleted message the account sent or received.
	ListByParticipant(ctx context.Context, accountID string) ([]domain.Message, error)
	// MarkRead sets read/readAt on an unread message addressed to receiverID and
	// returns the stored message; an already read message is returned unchanged.
	MarkRead(ctx context.Context, id, receiverID string, at time.Time) (*domain.Message, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
	SoftDelete(ctx context.Context, id string) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) (*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}
