package ports

import (
	"context"

	"github.com/vikram-software/portal/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// ForgotPasswordResult carries the raw reset token; handlers decide whether to expose it.
type ForgotPasswordResult struct {
	ResetToken string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.Account, error)
	UpdatePassword(ctx context.Context, actor domain.Actor, current, next string) error
	ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, token, password string) error
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

// CreateAccountInput carries the fields an administrator supplies for a new account.
type CreateAccountInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        domain.Role
	Phone       string
	CompanyName string
}

type AccountService interface {
	List(ctx context.Context, filter AccountFilter) ([]*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	Update(ctx context.Context, actor domain.Actor, id string, update AccountUpdate) (*domain.Account, error)
	ToggleStatus(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error)
	Deactivate(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error)
}

// CreateProjectInput carries the fields an administrator supplies for a new project.
type CreateProjectInput struct {
	Name              string
	Description       string
	ClientID          string
	AssignedEmployees []string
	Status            domain.ProjectStatus
	ServiceType       string
	Budget            *float64
	Priority          domain.Priority
	Attachments       []domain.Attachment
}

// ProjectUpdate carries administrator edits; nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
	ServiceType *string
	Budget      *float64
	Priority    *domain.Priority
	Attachments *[]domain.Attachment
}

type ProjectService interface {
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error)
	Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, update ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	ListAssigned(ctx context.Context, actor domain.Actor) ([]*domain.Project, error)
	ListForClient(ctx context.Context, actor domain.Actor) ([]*domain.Project, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.ProjectStatus) (*domain.Project, error)
	AssignEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error)
	RemoveEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error)
	Stats(ctx context.Context) (*domain.ProjectStats, error)
}

// CreateServiceRequestInput carries a client's new request.
type CreateServiceRequestInput struct {
	ServiceName string
	Description string
	Budget      *float64
	Timeline    domain.Timeline
	Attachments []domain.Attachment
}

// ApprovalResult pairs an approved request with the project it spawned.
type ApprovalResult struct {
	Request *domain.ServiceRequest
	Project *domain.Project
}

type ServiceRequestService interface {
	List(ctx context.Context, filter ServiceRequestFilter) ([]*domain.ServiceRequest, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*domain.ServiceRequest, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.ServiceRequest, error)
	Create(ctx context.Context, actor domain.Actor, input CreateServiceRequestInput) (*domain.ServiceRequest, error)
	Update(ctx context.Context, actor domain.Actor, id string, update ServiceRequestUpdate) (*domain.ServiceRequest, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Approve(ctx context.Context, actor domain.Actor, id, notes string) (*ApprovalResult, error)
	Reject(ctx context.Context, actor domain.Actor, id, notes string) (*domain.ServiceRequest, error)
}

// SendMessageInput carries a new direct message.
type SendMessageInput struct {
	ReceiverID  string
	Content     string
	Attachments []domain.Attachment
}

type MessageService interface {
	Send(ctx context.Context, actor domain.Actor, input SendMessageInput) (*domain.Message, error)
	Thread(ctx context.Context, actor domain.Actor, otherID string) ([]*domain.Message, error)
	Conversations(ctx context.Context, actor domain.Actor) ([]domain.Conversation, error)
	MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Message, error)
	UnreadCount(ctx context.Context, actor domain.Actor) (int64, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type NotificationService interface {
	// Deliver persists a notification; called by the dispatcher workers.
	Deliver(ctx context.Context, n domain.Notification) error
	List(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error)
	UnreadCount(ctx context.Context, actor domain.Actor) (int64, error)
}

// PresignUploadInput describes the object a client wants to upload.
type PresignUploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Scope       domain.AttachmentScope
}

type AttachmentService interface {
	PresignUpload(ctx context.Context, actor domain.Actor, input PresignUploadInput) (*domain.PresignedURL, error)
	PresignDownload(ctx context.Context, actor domain.Actor, key string) (*domain.PresignedURL, error)
}
