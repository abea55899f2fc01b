package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// RequestStatus is the review state of a service request. Approved and rejected
// are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

type Timeline string

const (
	TimelineUrgent   Timeline = "urgent"
	TimelineNormal   Timeline = "normal"
	TimelineFlexible Timeline = "flexible"
)

// DefaultRejectionNote is stored when an administrator rejects without a reason.
const DefaultRejectionNote = "Request rejected"

var ErrRequestNotFound = errors.New("service request not found")

// Text bounds in characters, measured after surrounding whitespace is trimmed.
const (
	MinServiceNameLength = 3
	MaxServiceNameLength = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 2000
)

// CheckRequestText validates an already trimmed service name and description.
// Nil fields are skipped so partial updates only check what they change.
func CheckRequestText(serviceName, description *string) error {
	fields := map[string]string{}
	if serviceName != nil {
		if msg := lengthProblem("serviceName", *serviceName, MinServiceNameLength, MaxServiceNameLength); msg != "" {
			fields["serviceName"] = msg
		}
	}
	if description != nil {
		if msg := lengthProblem("description", *description, MinDescriptionLength, MaxDescriptionLength); msg != "" {
			fields["description"] = msg
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func lengthProblem(field, value string, lo, hi int) string {
	switch n := utf8.RuneCountInString(value); {
	case n < lo:
		return fmt.Sprintf("%s must be at least %d characters", field, lo)
	case n > hi:
		return fmt.Sprintf("%s must be at most %d characters", field, hi)
	}
	return ""
}

// ServiceRequest is a client's proposal for new work.
type ServiceRequest struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client"`
	ServiceName string        `json:"serviceName"`
	Description string        `json:"description"`
	Status      RequestStatus `json:"status"`
	Budget      *float64      `json:"budget,omitempty"`
	Timeline    Timeline      `json:"timeline"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	AdminNotes  string        `json:"adminNotes,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`
	ReviewedBy  string        `json:"reviewedBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Review is the outcome recorded on the single permitted transition out of pending.
type Review struct {
	Status     RequestStatus
	ReviewerID string
	Notes      string
	ReviewedAt time.Time
}

// CheckReviewable returns a StateConflictError naming the current status when the
// request has already been reviewed.
func (r *ServiceRequest) CheckReviewable() error {
	if r.Status != RequestPending {
		return &StateConflictError{Entity: "request", Current: string(r.Status)}
	}
	return nil
}

// CheckEditable guards client edits and deletions, which are only allowed while pending.
func (r *ServiceRequest) CheckEditable() error {
	if r.Status != RequestPending {
		return &StateConflictError{Entity: "request", Reason: "cannot be changed after review", Current: string(r.Status)}
	}
	return nil
}

// SpawnProject builds the project created when this request is approved.
func (r *ServiceRequest) SpawnProject(now time.Time) *Project {
	return &Project{
		Name:              r.ServiceName,
		Description:       r.Description,
		ClientID:          r.ClientID,
		AssignedEmployees: []string{},
		Status:            ProjectPending,
		ServiceType:       r.ServiceName,
		Budget:            r.Budget,
		Priority:          PriorityMedium,
		Attachments:       r.Attachments,
		SourceRequestID:   r.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
