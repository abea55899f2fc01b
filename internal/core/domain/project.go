package domain

import (
	"errors"
	"math"
	"time"
)

// ProjectStatus is drawn from a fixed enumeration. No transition graph is
// enforced: any status may follow any other.
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
)

// ProjectStatuses lists every status in display order.
var ProjectStatuses = []ProjectStatus{ProjectPending, ProjectInProgress, ProjectCompleted, ProjectOnHold}

func (s ProjectStatus) Valid() bool {
	for _, known := range ProjectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var ErrProjectNotFound = errors.New("project not found")
var ErrAlreadyAssigned = errors.New("employee already assigned")
var ErrInvalidEmployee = errors.New("valid employee is required")

// Project is a tracked unit of work owned by a client.
type Project struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	ClientID          string        `json:"client"`
	AssignedEmployees []string      `json:"assignedEmployees"`
	Status            ProjectStatus `json:"status"`
	ServiceType       string        `json:"serviceType"`
	StartDate         *time.Time    `json:"startDate,omitempty"`
	EndDate           *time.Time    `json:"endDate,omitempty"`
	Budget            *float64      `json:"budget,omitempty"`
	Priority          Priority      `json:"priority"`
	Attachments       []Attachment  `json:"attachments,omitempty"`
	SourceRequestID   string        `json:"sourceRequest,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// IsAssigned reports whether accountID is among the assigned employees.
func (p *Project) IsAssigned(accountID string) bool {
	for _, id := range p.AssignedEmployees {
		if id == accountID {
			return true
		}
	}
	return false
}

// ApplyStatus sets the status and stamps start/end dates: in-progress stamps the
// start date once, completed stamps the end date every time.
func (p *Project) ApplyStatus(status ProjectStatus, now time.Time) {
	p.Status = status
	p.UpdatedAt = now
	if status == ProjectInProgress && p.StartDate == nil {
		start := now
		p.StartDate = &start
	}
	if status == ProjectCompleted {
		end := now
		p.EndDate = &end
	}
}

// DurationDays returns the whole number of days between start and end, rounded up.
func (p *Project) DurationDays() (int, bool) {
	if p.StartDate == nil || p.EndDate == nil {
		return 0, false
	}
	diff := p.EndDate.Sub(*p.StartDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24)), true
}

// ProjectStats summarises projects by status.
type ProjectStats struct {
	Total    int64                   `json:"total"`
	ByStatus map[ProjectStatus]int64 `json:"byStatus"`
}
