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

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

type projectDoc struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	Name              string               `bson:"name"`
	Description       string               `bson:"description"`
	Client            primitive.ObjectID   `bson:"client"`
	AssignedEmployees []primitive.ObjectID `bson:"assigned_employees"`
	Status            string               `bson:"status"`
	ServiceType       string               `bson:"service_type"`
	StartDate         *time.Time           `bson:"start_date,omitempty"`
	EndDate           *time.Time           `bson:"end_date,omitempty"`
	Budget            *float64             `bson:"budget,omitempty"`
	Priority          string               `bson:"priority"`
	Attachments       []attachmentDoc      `bson:"attachments,omitempty"`
	SourceRequest     *primitive.ObjectID  `bson:"source_request,omitempty"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func (d *projectDoc) toDomain() *domain.Project {
	return &domain.Project{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Description:       d.Description,
		ClientID:          d.Client.Hex(),
		AssignedEmployees: hexIDs(d.AssignedEmployees),
		Status:            domain.ProjectStatus(d.Status),
		ServiceType:       d.ServiceType,
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		Budget:            d.Budget,
		Priority:          domain.Priority(d.Priority),
		Attachments:       toAttachments(d.Attachments),
		SourceRequestID:   optionalHex(d.SourceRequest),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	client, err := objectID(p.ClientID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}

	doc := projectDoc{
		ID:                primitive.NewObjectID(),
		Name:              p.Name,
		Description:       p.Description,
		Client:            client,
		AssignedEmployees: objectIDs(p.AssignedEmployees),
		Status:            string(p.Status),
		ServiceType:       p.ServiceType,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Budget:            p.Budget,
		Priority:          string(p.Priority),
		Attachments:       toAttachmentDocs(p.Attachments),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.SourceRequestID != "" {
		src, err := objectID(p.SourceRequestID, domain.ErrRequestNotFound)
		if err != nil {
			return nil, err
		}
		doc.SourceRequest = &src
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.StateConflictError{Entity: "request", Reason: "already has a project", Current: p.SourceRequestID}
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ProjectRepository) FindBySourceRequest(ctx context.Context, requestID string) (*domain.Project, error) {
	oid, err := objectID(requestID, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"source_request": oid})
}

func (r *ProjectRepository) List(ctx context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.ClientID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ClientID)
		if err != nil {
			return []*domain.Project{}, nil
		}
		filter["client"] = oid
	}
	if f.EmployeeID != "" {
		oid, err := primitive.ObjectIDFromHex(f.EmployeeID)
		if err != nil {
			return []*domain.Project{}, nil
		}
		filter["assigned_employees"] = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	out := make([]*domain.Project, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// Update sets only the fields present in u, so concurrent edits of other
// fields are preserved.
func (r *ProjectRepository) Update(ctx context.Context, id string, u ports.ProjectUpdate, at time.Time) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, projectUpdate(u, at))
}

// UpdateStatus writes the status and its dates only.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, at time.Time) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, statusUpdate(bson.M{}, status, at))
}

func projectUpdate(u ports.ProjectUpdate, at time.Time) bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ServiceType != nil {
		set["service_type"] = *u.ServiceType
	}
	if u.Budget != nil {
		set["budget"] = *u.Budget
	}
	if u.Priority != nil {
		set["priority"] = string(*u.Priority)
	}
	if u.Attachments != nil {
		set["attachments"] = toAttachmentDocs(*u.Attachments)
	}
	if u.Status != nil {
		return statusUpdate(set, *u.Status, at)
	}
	set["updated_at"] = at
	return bson.M{"$set": set}
}

// statusUpdate adds the status change to set. start_date goes through $min so
// the first move to in-progress wins; completed always restamps end_date.
func statusUpdate(set bson.M, status domain.ProjectStatus, at time.Time) bson.M {
	set["status"] = string(status)
	set["updated_at"] = at
	update := bson.M{"$set": set}
	switch status {
	case domain.ProjectInProgress:
		update["$min"] = bson.M{"start_date": at}
	case domain.ProjectCompleted:
		set["end_date"] = at
	}
	return update
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// AddEmployee appends the employee only when absent. The filter makes the check
// and the write a single atomic operation.
func (r *ProjectRepository) AddEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	emp, err := objectID(employeeID, domain.ErrInvalidEmployee)
	if err != nil {
		return nil, err
	}

	p, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "assigned_employees": bson.M{"$ne": emp}},
		bson.M{
			"$push": bson.M{"assigned_employees": emp},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if errors.Is(err, domain.ErrProjectNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrAlreadyAssigned
	}
	return p, err
}

func (r *ProjectRepository) RemoveEmployee(ctx context.Context, id, employeeID string) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	emp, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return r.FindByID(ctx, id)
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{"assigned_employees": emp},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// CountByStatus groups projects by status in a single aggregation.
func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate project stats: %w", err)
	}

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode project stats: %w", err)
	}

	counts := make(map[domain.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.ProjectStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *ProjectRepository) findOne(ctx context.Context, filter bson.M) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProjectRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc projectDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return doc.toDomain(), nil
}
