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

const collectionMessages = "messages"

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

type messageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Sender      primitive.ObjectID `bson:"sender"`
	Receiver    primitive.ObjectID `bson:"receiver"`
	Content     string             `bson:"content"`
	Read        bool               `bson:"read"`
	ReadAt      *time.Time         `bson:"read_at,omitempty"`
	Attachments []attachmentDoc    `bson:"attachments,omitempty"`
	IsDeleted   bool               `bson:"is_deleted"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *messageDoc) toDomain() domain.Message {
	return domain.Message{
		ID:          d.ID.Hex(),
		SenderID:    d.Sender.Hex(),
		ReceiverID:  d.Receiver.Hex(),
		Content:     d.Content,
		Read:        d.Read,
		ReadAt:      d.ReadAt,
		Attachments: toAttachments(d.Attachments),
		IsDeleted:   d.IsDeleted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	sender, err := objectID(m.SenderID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := objectID(m.ReceiverID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	doc := messageDoc{
		ID:          primitive.NewObjectID(),
		Sender:      sender,
		Receiver:    receiver,
		Content:     m.Content,
		Attachments: toAttachmentDocs(m.Attachments),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *MessageRepository) FindForParticipant(ctx context.Context, id, accountID string) (*domain.Message, error) {
	oid, err := objectID(id, domain.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}
	account, err := objectID(accountID, domain.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        oid,
		"is_deleted": false,
		"$or":        bson.A{bson.M{"sender": account}, bson.M{"receiver": account}},
	}
	var doc messageDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *MessageRepository) Thread(ctx context.Context, a, b string) ([]*domain.Message, error) {
	aid, errA := primitive.ObjectIDFromHex(a)
	bid, errB := primitive.ObjectIDFromHex(b)
	if errA != nil || errB != nil {
		return []*domain.Message{}, nil
	}

	filter := bson.M{
		"is_deleted": false,
		"$or": bson.A{
			bson.M{"sender": aid, "receiver": bid},
			bson.M{"sender": bid, "receiver": aid},
		},
	}
	docs, err := r.find(ctx, filter, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Message, len(docs))
	for i := range docs {
		m := docs[i].toDomain()
		out[i] = &m
	}
	return out, nil
}

// ListByParticipant loads every live message the account sent or received. The
// conversation list is reduced from this set in the domain layer.
func (r *MessageRepository) ListByParticipant(ctx context.Context, accountID string) ([]domain.Message, error) {
	account, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return []domain.Message{}, nil
	}

	filter := bson.M{
		"is_deleted": false,
		"$or":        bson.A{bson.M{"sender": account}, bson.M{"receiver": account}},
	}
	docs, err := r.find(ctx, filter, bson.D{{Key: "created_at", Value: -1}})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// MarkRead only stamps read_at on the first call; later calls return the stored message.
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID string, at time.Time) (*domain.Message, error) {
	oid, err := objectID(id, domain.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}
	receiver, err := objectID(receiverID, domain.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}

	uctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc messageDoc
	err = r.col.FindOneAndUpdate(uctx,
		bson.M{"_id": oid, "receiver": receiver, "is_deleted": false, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": at, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		out := doc.toDomain()
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	return r.FindForParticipant(ctx, id, receiverID)
}

func (r *MessageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"receiver": receiver, "read": false, "is_deleted": false})
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}

func (r *MessageRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrMessageNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]messageDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return docs, nil
}
