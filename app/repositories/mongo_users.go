package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/metrics"
)

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{coll: db.Collection(usersCollection)}
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.D{{Key: "email", Value: email}})
}

// CreateIfAbsent upserts with $setOnInsert so an existing record is never
// touched. A concurrent first sign-in can lose the race on the unique index;
// that is treated as "already exists".
func (r *MongoUsers) CreateIfAbsent(ctx context.Context, u models.User) (*models.User, bool, error) {
	onInsert := bson.D{
		{Key: "role", Value: u.Role},
		{Key: "timestamp", Value: u.Timestamp},
	}
	if u.Name != "" {
		onInsert = append(onInsert, bson.E{Key: "name", Value: u.Name})
	}
	if u.Image != "" {
		onInsert = append(onInsert, bson.E{Key: "image", Value: u.Image})
	}

	start := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "email", Value: u.Email}},
		bson.D{{Key: "$setOnInsert", Value: onInsert}},
		options.Update().SetUpsert(true),
	)
	metrics.ObserveDBQuery(usersCollection, "upsert", start)

	created := false
	switch {
	case err == nil:
		created = res.UpsertedCount == 1
	case mongo.IsDuplicateKeyError(err):
	default:
		return nil, false, fmt.Errorf("repositories: users upsert: %w", err)
	}

	stored, err := r.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *MongoUsers) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	return findAll[models.User](ctx, r.coll, bson.D{{Key: "email", Value: bson.D{{Key: "$ne", Value: email}}}})
}

func (r *MongoUsers) SetStatus(ctx context.Context, email string, status models.UserStatus) (models.UpdateResult, error) {
	res, err := updateOne(ctx, r.coll,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}

func (r *MongoUsers) SetRole(ctx context.Context, email string, role models.Role, status models.UserStatus) (models.UpdateResult, error) {
	res, err := updateOne(ctx, r.coll,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: role}, {Key: "status", Value: status}}}},
	)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}
