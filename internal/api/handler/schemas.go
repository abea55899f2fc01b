package handler

import (
	"time"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// --- Shared ---

type attachmentRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
	FileURL  string `json:"fileUrl"  validate:"required"`
	FileType string `json:"fileType" validate:"omitempty,max=255"`
	FileSize int64  `json:"fileSize" validate:"gte=0"`
}

func toAttachments(in []attachmentRequest, uploader string, now time.Time) []domain.Attachment {
	if in == nil {
		return nil
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		uploaded := now
		out = append(out, domain.Attachment{
			Filename:   a.Filename,
			FileURL:    a.FileURL,
			FileType:   a.FileType,
			FileSize:   a.FileSize,
			UploadedAt: &uploaded,
			UploadedBy: uploader,
		})
	}
	return out
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse flattens the account profile next to the token.
type loginResponse struct {
	Token string `json:"token"`
	*domain.Account
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type forgotPasswordResponse struct {
	ResetToken string `json:"resetToken,omitempty"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// --- Accounts ---

type createAccountRequest struct {
	FirstName   string `json:"firstName"   validate:"required,min=2,max=50"`
	LastName    string `json:"lastName"    validate:"required,min=2,max=50"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	Role        string `json:"role"        validate:"required,oneof=admin employee client"`
	Phone       string `json:"phone"       validate:"omitempty,max=30"`
	CompanyName string `json:"companyName" validate:"omitempty,max=100"`
}

func (r createAccountRequest) toInput() ports.CreateAccountInput {
	return ports.CreateAccountInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Password:    r.Password,
		Role:        domain.Role(r.Role),
		Phone:       r.Phone,
		CompanyName: r.CompanyName,
	}
}

type updateAccountRequest struct {
	FirstName      *string `json:"firstName"      validate:"omitempty,min=2,max=50"`
	LastName       *string `json:"lastName"       validate:"omitempty,min=2,max=50"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Phone          *string `json:"phone"          validate:"omitempty,max=30"`
	CompanyName    *string `json:"companyName"    validate:"omitempty,max=100"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,max=2048"`
	Role           *string `json:"role"           validate:"omitempty,oneof=admin employee client"`
	IsActive       *bool   `json:"isActive"`
}

func (r updateAccountRequest) toUpdate() ports.AccountUpdate {
	u := ports.AccountUpdate{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		CompanyName:    r.CompanyName,
		ProfilePicture: r.ProfilePicture,
		IsActive:       r.IsActive,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		u.Role = &role
	}
	return u
}

// --- Projects ---

type createProjectRequest struct {
	Name              string              `json:"name"              validate:"required,min=3,max=100"`
	Description       string              `json:"description"       validate:"required,min=10,max=1000"`
	Client            string              `json:"client"            validate:"required"`
	AssignedEmployees []string            `json:"assignedEmployees" validate:"omitempty,dive,required"`
	Status            string              `json:"status"            validate:"omitempty,oneof=pending in-progress completed on-hold"`
	ServiceType       string              `json:"serviceType"       validate:"required"`
	Budget            *float64            `json:"budget"            validate:"omitempty,gte=0"`
	Priority          string              `json:"priority"          validate:"omitempty,oneof=low medium high critical"`
	Attachments       []attachmentRequest `json:"attachments"       validate:"omitempty,dive"`
}

func (r createProjectRequest) toInput(uploader string, now time.Time) ports.CreateProjectInput {
	return ports.CreateProjectInput{
		Name:              r.Name,
		Description:       r.Description,
		ClientID:          r.Client,
		AssignedEmployees: r.AssignedEmployees,
		Status:            domain.ProjectStatus(r.Status),
		ServiceType:       r.ServiceType,
		Budget:            r.Budget,
		Priority:          domain.Priority(r.Priority),
		Attachments:       toAttachments(r.Attachments, uploader, now),
	}
}

type updateProjectRequest struct {
	Name        *string              `json:"name"        validate:"omitempty,min=3,max=100"`
	Description *string              `json:"description" validate:"omitempty,min=10,max=1000"`
	Status      *string              `json:"status"      validate:"omitempty,oneof=pending in-progress completed on-hold"`
	ServiceType *string              `json:"serviceType" validate:"omitempty,min=1"`
	Budget      *float64             `json:"budget"      validate:"omitempty,gte=0"`
	Priority    *string              `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	Attachments *[]attachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

func (r updateProjectRequest) toUpdate(uploader string, now time.Time) ports.ProjectUpdate {
	u := ports.ProjectUpdate{
		Name:        r.Name,
		Description: r.Description,
		ServiceType: r.ServiceType,
		Budget:      r.Budget,
	}
	if r.Status != nil {
		s := domain.ProjectStatus(*r.Status)
		u.Status = &s
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		u.Priority = &p
	}
	if r.Attachments != nil {
		a := toAttachments(*r.Attachments, uploader, now)
		if a == nil {
			a = []domain.Attachment{}
		}
		u.Attachments = &a
	}
	return u
}

type updateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed on-hold"`
}

type assignEmployeeRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
}

// --- Service requests ---

type createServiceRequestRequest struct {
	ServiceName string              `json:"serviceName" validate:"required,min=3,max=100"`
	Description string              `json:"description" validate:"required,min=10,max=2000"`
	Budget      *float64            `json:"budget"      validate:"omitempty,gte=0"`
	Timeline    string              `json:"timeline"    validate:"omitempty,oneof=urgent normal flexible"`
	Attachments []attachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

func (r createServiceRequestRequest) toInput(uploader string, now time.Time) ports.CreateServiceRequestInput {
	return ports.CreateServiceRequestInput{
		ServiceName: r.ServiceName,
		Description: r.Description,
		Budget:      r.Budget,
		Timeline:    domain.Timeline(r.Timeline),
		Attachments: toAttachments(r.Attachments, uploader, now),
	}
}

type updateServiceRequestRequest struct {
	ServiceName *string              `json:"serviceName" validate:"omitempty,min=3,max=100"`
	Description *string              `json:"description" validate:"omitempty,min=10,max=2000"`
	Budget      *float64             `json:"budget"      validate:"omitempty,gte=0"`
	Timeline    *string              `json:"timeline"    validate:"omitempty,oneof=urgent normal flexible"`
	Attachments *[]attachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

func (r updateServiceRequestRequest) toUpdate(uploader string, now time.Time) ports.ServiceRequestUpdate {
	u := ports.ServiceRequestUpdate{
		ServiceName: r.ServiceName,
		Description: r.Description,
		Budget:      r.Budget,
	}
	if r.Timeline != nil {
		t := domain.Timeline(*r.Timeline)
		u.Timeline = &t
	}
	if r.Attachments != nil {
		a := toAttachments(*r.Attachments, uploader, now)
		if a == nil {
			a = []domain.Attachment{}
		}
		u.Attachments = &a
	}
	return u
}

type approvalResponse struct {
	Request *domain.ServiceRequest `json:"request"`
	Project *domain.Project        `json:"project"`
}

type rejectionResponse struct {
	Request *domain.ServiceRequest `json:"request"`
}

// --- Messages ---

type sendMessageRequest struct {
	Receiver    string              `json:"receiver"    validate:"required"`
	Content     string              `json:"content"     validate:"required,max=2000"`
	Attachments []attachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// --- Attachments ---

type presignUploadRequest struct {
	Filename    string `json:"filename"    validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=255"`
	Size        int64  `json:"size"        validate:"required,gt=0"`
	Scope       string `json:"scope"       validate:"required,oneof=message project request"`
}

type presignUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type presignDownloadResponse struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
