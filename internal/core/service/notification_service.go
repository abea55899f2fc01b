package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

const notificationListLimit = 50

type NotificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Deliver persists n for its recipient. It runs on dispatcher workers, never on
// the request that triggered the notification.
func (s *NotificationService) Deliver(ctx context.Context, n domain.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("deliver notification: missing recipient")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.Read = false
	n.ReadAt = nil

	if err := s.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	s.log.Debug().Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("notification delivered")
	return nil
}

// List returns the most recent notifications of actor, newest first.
func (s *NotificationService) List(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error) {
	return s.repo.ListForUser(ctx, actor.ID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error) {
	return s.repo.MarkRead(ctx, id, actor.ID, time.Now().UTC())
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}
