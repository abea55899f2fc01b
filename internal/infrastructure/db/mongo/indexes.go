package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every collection relies on. Creating an
// existing index is a no-op, so this runs on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionAccounts: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		collectionProjects: {
			{Keys: bson.D{{Key: "client", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "assigned_employees", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			// one project per approved request
			{Keys: bson.D{{Key: "source_request", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		collectionServiceRequests: {
			{Keys: bson.D{{Key: "client", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionMessages: {
			{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "read", Value: 1}}},
		},
		collectionNotifications: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "read", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// DropAll removes every portal collection. Used by the seed command's reset flag.
func DropAll(ctx context.Context, db *mongo.Database) error {
	for _, coll := range []string{
		collectionAccounts,
		collectionProjects,
		collectionServiceRequests,
		collectionMessages,
		collectionNotifications,
	} {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", coll, err)
		}
	}
	return nil
}
