package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/metrics"
)

type MongoPlants struct {
	coll *mongo.Collection
}

func NewMongoPlants(db *mongo.Database) *MongoPlants {
	return &MongoPlants{coll: db.Collection(plantsCollection)}
}

func (r *MongoPlants) Insert(ctx context.Context, p *models.Plant) (models.InsertResult, error) {
	id, err := insert(ctx, r.coll, p)
	if err != nil {
		return models.InsertResult{}, err
	}
	p.ID = id
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *MongoPlants) List(ctx context.Context, limit int) ([]models.Plant, error) {
	return findAll[models.Plant](ctx, r.coll, bson.D{}, options.Find().SetLimit(int64(limit)))
}

func (r *MongoPlants) FindByID(ctx context.Context, id string) (*models.Plant, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Plant](ctx, r.coll, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoPlants) ListBySeller(ctx context.Context, email string) ([]models.Plant, error) {
	return findAll[models.Plant](ctx, r.coll, bson.D{{Key: "seller.email", Value: email}})
}

func (r *MongoPlants) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	n, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (r *MongoPlants) AdjustQuantity(ctx context.Context, id string, delta int) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := updateOne(ctx, r.coll,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: delta}}}},
	)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}

// Reserve relies on the single-document atomicity of a conditional $inc.
func (r *MongoPlants) Reserve(ctx context.Context, id string, qty int) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := updateOne(ctx, r.coll,
		bson.D{{Key: "_id", Value: oid}, {Key: "quantity", Value: bson.D{{Key: "$gte", Value: qty}}}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -qty}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	defer metrics.ObserveDBQuery(plantsCollection, "count", time.Now())
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}
