package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/database"
	"github.com/plantnet/plantnet/pkg/metrics"
)

const (
	usersCollection  = "users"
	plantsCollection = "plants"
	ordersCollection = "orders"
)

// NewMongoStore wires the Mongo repositories and makes sure the indexes
// they rely on exist.
func NewMongoStore(ctx context.Context, m *database.Mongo) (*Store, error) {
	if err := EnsureMongoIndexes(ctx, m.DB); err != nil {
		return nil, err
	}
	return &Store{
		Users:  NewMongoUsers(m.DB),
		Plants: NewMongoPlants(m.DB),
		Orders: NewMongoOrders(m.DB),
		ping:   m.Ping,
		close:  m.Close,
	}, nil
}

// EnsureMongoIndexes is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		plantsCollection: {
			{Keys: bson.D{{Key: "seller.email", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "customer.email", Value: 1}}},
			{Keys: bson.D{{Key: "seller", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("repositories: indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// withNewID marshals v and prepends a fresh ObjectID _id. Model ids are
// strings, so letting the driver encode them would store a string _id.
func withNewID(v any) (bson.D, primitive.ObjectID, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, primitive.NilObjectID, err
	}
	oid := primitive.NewObjectID()
	out := make(bson.D, 0, len(doc)+1)
	out = append(out, bson.E{Key: "_id", Value: oid})
	for _, e := range doc {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out, oid, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	defer metrics.ObserveDBQuery(coll.Name(), "find", time.Now())

	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: %s find: %w", coll.Name(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	defer metrics.ObserveDBQuery(coll.Name(), "find", time.Now())

	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("repositories: %s find: %w", coll.Name(), err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("repositories: %s decode: %w", coll.Name(), err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, v any) (string, error) {
	defer metrics.ObserveDBQuery(coll.Name(), "insert", time.Now())

	doc, oid, err := withNewID(v)
	if err != nil {
		return "", fmt.Errorf("repositories: %s encode: %w", coll.Name(), err)
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("repositories: %s insert: %w", coll.Name(), err)
	}
	return oid.Hex(), nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, filter, update any) (*mongo.UpdateResult, error) {
	defer metrics.ObserveDBQuery(coll.Name(), "update", time.Now())

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("repositories: %s update: %w", coll.Name(), err)
	}
	return res, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	defer metrics.ObserveDBQuery(coll.Name(), "delete", time.Now())

	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, fmt.Errorf("repositories: %s delete: %w", coll.Name(), err)
	}
	return res.DeletedCount, nil
}

func toUpdateResult(r *mongo.UpdateResult) models.UpdateResult {
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
	}
}
