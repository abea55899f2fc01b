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
	"github.com/vikram-software/portal/internal/core/ports"
)

const collectionServiceRequests = "service_requests"

type ServiceRequestRepository struct {
	col *mongo.Collection
}

func NewServiceRequestRepository(db *mongo.Database) *ServiceRequestRepository {
	return &ServiceRequestRepository{col: db.Collection(collectionServiceRequests)}
}

type serviceRequestDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Client      primitive.ObjectID  `bson:"client"`
	ServiceName string              `bson:"service_name"`
	Description string              `bson:"description"`
	Status      string              `bson:"status"`
	Budget      *float64            `bson:"budget,omitempty"`
	Timeline    string              `bson:"timeline"`
	Attachments []attachmentDoc     `bson:"attachments,omitempty"`
	AdminNotes  string              `bson:"admin_notes,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewed_at,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewed_by,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

func (d *serviceRequestDoc) toDomain() *domain.ServiceRequest {
	return &domain.ServiceRequest{
		ID:          d.ID.Hex(),
		ClientID:    d.Client.Hex(),
		ServiceName: d.ServiceName,
		Description: d.Description,
		Status:      domain.RequestStatus(d.Status),
		Budget:      d.Budget,
		Timeline:    domain.Timeline(d.Timeline),
		Attachments: toAttachments(d.Attachments),
		AdminNotes:  d.AdminNotes,
		ReviewedAt:  d.ReviewedAt,
		ReviewedBy:  optionalHex(d.ReviewedBy),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	client, err := objectID(req.ClientID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	doc := serviceRequestDoc{
		ID:          primitive.NewObjectID(),
		Client:      client,
		ServiceName: req.ServiceName,
		Description: req.Description,
		Status:      string(req.Status),
		Budget:      req.Budget,
		Timeline:    string(req.Timeline),
		Attachments: toAttachmentDocs(req.Attachments),
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert service request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	oid, err := objectID(id, domain.ErrRequestNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc serviceRequestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find service request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ServiceRequestRepository) List(ctx context.Context, f ports.ServiceRequestFilter) ([]*domain.ServiceRequest, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.ClientID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ClientID)
		if err != nil {
			return []*domain.ServiceRequest{}, nil
		}
		filter["client"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find service requests: %w", err)
	}
	var docs []serviceRequestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode service requests: %w", err)
	}

	out := make([]*domain.ServiceRequest, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *ServiceRequestRepository) UpdatePending(ctx context.Context, id string, u ports.ServiceRequestUpdate) (*domain.ServiceRequest, error) {
	oid, err := objectID(id, domain.ErrRequestNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if u.ServiceName != nil {
		set["service_name"] = *u.ServiceName
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Budget != nil {
		set["budget"] = *u.Budget
	}
	if u.Timeline != nil {
		set["timeline"] = string(*u.Timeline)
	}
	if u.Attachments != nil {
		set["attachments"] = toAttachmentDocs(*u.Attachments)
	}

	return r.updatePending(ctx, oid, bson.M{"$set": set}, func(current *domain.ServiceRequest) error {
		return current.CheckEditable()
	})
}

func (r *ServiceRequestRepository) DeletePending(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrRequestNotFound)
	if err != nil {
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(dctx, bson.M{"_id": oid, "status": string(domain.RequestPending)})
	if err != nil {
		return fmt.Errorf("delete service request: %w", err)
	}
	if res.DeletedCount == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return current.CheckEditable()
}

// Review is the compare-and-set on status: the update only matches while the
// request is pending, so concurrent reviewers cannot both succeed.
func (r *ServiceRequestRepository) Review(ctx context.Context, id string, rev domain.Review) (*domain.ServiceRequest, error) {
	oid, err := objectID(id, domain.ErrRequestNotFound)
	if err != nil {
		return nil, err
	}
	reviewer, err := objectID(rev.ReviewerID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"status":      string(rev.Status),
		"admin_notes": rev.Notes,
		"reviewed_at": rev.ReviewedAt,
		"reviewed_by": reviewer,
		"updated_at":  rev.ReviewedAt,
	}}
	return r.updatePending(ctx, oid, update, func(current *domain.ServiceRequest) error {
		return current.CheckReviewable()
	})
}

// updatePending applies update to a pending request. When nothing matched, the
// current document is loaded so the caller learns why.
func (r *ServiceRequestRepository) updatePending(
	ctx context.Context,
	oid primitive.ObjectID,
	update bson.M,
	explain func(*domain.ServiceRequest) error,
) (*domain.ServiceRequest, error) {
	uctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc serviceRequestDoc
	err := r.col.FindOneAndUpdate(uctx,
		bson.M{"_id": oid, "status": string(domain.RequestPending)},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update service request: %w", err)
	}

	current, err := r.FindByID(ctx, oid.Hex())
	if err != nil {
		return nil, err
	}
	if err := explain(current); err != nil {
		return nil, err
	}
	// Pending again between the two reads; report it as a conflict rather than retrying.
	return nil, &domain.StateConflictError{Entity: "request", Reason: "was modified concurrently", Current: string(current.Status)}
}
