package domain

import (
	"errors"
	"sort"
	"time"
)

// MaxMessageLength bounds message content in characters.
const MaxMessageLength = 2000

var ErrMessageNotFound = errors.New("message not found")

// Message is a directed, read-tracked unit between two accounts. Deletion is soft.
type Message struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"sender"`
	ReceiverID  string       `json:"receiver"`
	Content     string       `json:"content"`
	Read        bool         `json:"read"`
	ReadAt      *time.Time   `json:"readAt,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsDeleted   bool         `json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Counterpart returns the other party of m as seen from accountID.
func (m *Message) Counterpart(accountID string) string {
	if m.SenderID == accountID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether accountID is the sender or the receiver.
func (m *Message) Involves(accountID string) bool {
	return m.SenderID == accountID || m.ReceiverID == accountID
}

// newerThan orders messages by creation time, then by id for equal timestamps.
func (m *Message) newerThan(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}

// ConversationHead is the most recent message exchanged with one counterpart.
type ConversationHead struct {
	CounterpartID string
	LastMessage   Message
	Unread        bool
}

// Conversation is one row of the conversation list.
type Conversation struct {
	User        Profile `json:"user"`
	LastMessage Message `json:"lastMessage"`
	Unread      bool    `json:"unread"`
}

// LatestPerCounterpart groups the non-deleted messages involving accountID by the
// other party, keeps the newest message of each group and orders the groups newest
// first. Messages with equal timestamps are ordered by id, highest first.
func LatestPerCounterpart(accountID string, messages []Message) []ConversationHead {
	latest := make(map[string]*Message)
	for i := range messages {
		m := &messages[i]
		if m.IsDeleted || !m.Involves(accountID) {
			continue
		}
		other := m.Counterpart(accountID)
		if cur, ok := latest[other]; !ok || m.newerThan(cur) {
			latest[other] = m
		}
	}

	heads := make([]ConversationHead, 0, len(latest))
	for other, m := range latest {
		heads = append(heads, ConversationHead{
			CounterpartID: other,
			LastMessage:   *m,
			Unread:        m.ReceiverID == accountID && !m.Read,
		})
	}
	sort.Slice(heads, func(i, j int) bool {
		return heads[i].LastMessage.newerThan(&heads[j].LastMessage)
	})
	return heads
}
