package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

const previewLength = 80

// MessageService handles direct messaging between accounts.
type MessageService struct {
	messages ports.MessageRepository
	accounts ports.AccountRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewMessageService(
	messages ports.MessageRepository,
	accounts ports.AccountRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		accounts: accounts,
		notifier: notifier,
		log:      log,
	}
}

func (s *MessageService) Send(ctx context.Context, actor domain.Actor, in ports.SendMessageInput) (*domain.Message, error) {
	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		return nil, domain.NewValidationError("content", "content is required")
	case utf8.RuneCountInString(content) > domain.MaxMessageLength:
		return nil, domain.NewValidationError("content", fmt.Sprintf("content must be at most %d characters", domain.MaxMessageLength))
	case in.ReceiverID == actor.ID:
		return nil, domain.NewValidationError("receiver", "cannot send a message to yourself")
	}

	receiver, err := s.accounts.FindByID(ctx, in.ReceiverID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.NewValidationError("receiver", "receiver must reference an existing account")
		}
		return nil, err
	}
	if !receiver.IsActive {
		return nil, domain.NewValidationError("receiver", "receiver must reference an active account")
	}

	now := time.Now().UTC()
	sent, err := s.messages.Create(ctx, &domain.Message{
		SenderID:    actor.ID,
		ReceiverID:  receiver.ID,
		Content:     content,
		Attachments: in.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(domain.Notification{
		UserID:  receiver.ID,
		Type:    domain.NotifyMessage,
		Title:   "New message",
		Message: preview(content),
		Data:    map[string]string{"messageId": sent.ID, "senderId": actor.ID},
	})

	s.log.Debug().Str("message_id", sent.ID).Str("sender_id", actor.ID).Str("receiver_id", receiver.ID).Msg("message sent")
	return sent, nil
}

// Thread returns the conversation between actor and otherID, oldest first.
func (s *MessageService) Thread(ctx context.Context, actor domain.Actor, otherID string) ([]*domain.Message, error) {
	return s.messages.Thread(ctx, actor.ID, otherID)
}

// Conversations lists one entry per counterpart with the latest message, newest
// first. Counterparts whose account no longer exists are omitted.
func (s *MessageService) Conversations(ctx context.Context, actor domain.Actor) ([]domain.Conversation, error) {
	messages, err := s.messages.ListByParticipant(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	heads := domain.LatestPerCounterpart(actor.ID, messages)
	if len(heads) == 0 {
		return []domain.Conversation{}, nil
	}

	ids := make([]string, len(heads))
	for i, h := range heads {
		ids[i] = h.CounterpartID
	}
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]domain.Profile, len(accounts))
	for _, a := range accounts {
		profiles[a.ID] = a.Profile()
	}

	conversations := make([]domain.Conversation, 0, len(heads))
	for _, h := range heads {
		profile, ok := profiles[h.CounterpartID]
		if !ok {
			continue
		}
		conversations = append(conversations, domain.Conversation{
			User:        profile,
			LastMessage: h.LastMessage,
			Unread:      h.Unread,
		})
	}
	return conversations, nil
}

// MarkRead marks a message addressed to actor as read. Repeated calls keep the
// first read time.
func (s *MessageService) MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Message, error) {
	msg, err := s.messages.FindForParticipant(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if msg.Read {
		return msg, nil
	}
	return s.messages.MarkRead(ctx, id, actor.ID, time.Now().UTC())
}

func (s *MessageService) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.messages.CountUnread(ctx, actor.ID)
}

// Delete soft-deletes a message actor sent or received. Messages of other
// accounts are reported as not found.
func (s *MessageService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.messages.FindForParticipant(ctx, id, actor.ID); err != nil {
		return err
	}
	if err := s.messages.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Debug().Str("message_id", id).Str("account_id", actor.ID).Msg("message deleted")
	return nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "..."
}
