package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vikram-software/portal/internal/core/domain"
)

const collectionNotifications = "notifications"

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	Type      string             `bson:"type"`
	Title     string             `bson:"title"`
	Message   string             `bson:"message"`
	Data      map[string]string  `bson:"data,omitempty"`
	Read      bool               `bson:"read"`
	ReadAt    *time.Time         `bson:"read_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *notificationDoc) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        d.ID.Hex(),
		UserID:    d.User.Hex(),
		Type:      domain.NotificationType(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		Data:      d.Data,
		Read:      d.Read,
		ReadAt:    d.ReadAt,
		CreatedAt: d.CreatedAt,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	user, err := objectID(n.UserID, domain.ErrAccountNotFound)
	if err != nil {
		return err
	}

	doc := notificationDoc{
		ID:        primitive.NewObjectID(),
		User:      user,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.ID = doc.ID.Hex()
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Notification{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	out := make([]*domain.Notification, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// MarkRead stamps read_at once; repeated calls return the stored notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) (*domain.Notification, error) {
	oid, err := objectID(id, domain.ErrNotificationNotFound)
	if err != nil {
		return nil, err
	}
	user, err := objectID(userID, domain.ErrNotificationNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc notificationDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "user": user, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = r.col.FindOne(ctx, bson.M{"_id": oid, "user": user}).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"user": user, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
