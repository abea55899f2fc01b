package domain

import (
	"errors"
	"time"
)

type NotificationType string

const (
	NotifyMessage NotificationType = "message"
	NotifyProject NotificationType = "project"
	NotifyRequest NotificationType = "request"
	NotifySystem  NotificationType = "system"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is an in-app notice addressed to one account.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
