package ports

import (
	"context"
	"time"

	"github.com/vikram-software/portal/internal/core/domain"
)

// ResetTokenStore keeps password-reset token digests with an expiry.
type ResetTokenStore interface {
	Save(ctx context.Context, digest, accountID string, ttl time.Duration) error
	// Consume returns the account bound to digest and deletes it; ErrInvalidResetToken
	// when absent or expired.
	Consume(ctx context.Context, digest string) (string, error)
}

// Notifier accepts notifications for asynchronous delivery.
type Notifier interface {
	Notify(n domain.Notification)
}

// ObjectPresigner issues time-limited URLs against the attachment bucket.
type ObjectPresigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64) (*domain.PresignedURL, error)
	PresignGet(ctx context.Context, key string) (*domain.PresignedURL, error)
}
