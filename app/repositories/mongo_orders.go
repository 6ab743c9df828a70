package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/metrics"
)

type MongoOrders struct {
	coll *mongo.Collection
}

func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{coll: db.Collection(ordersCollection)}
}

func (r *MongoOrders) Insert(ctx context.Context, o *models.Order) (models.InsertResult, error) {
	id, err := insert(ctx, r.coll, o)
	if err != nil {
		return models.InsertResult{}, err
	}
	o.ID = id
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *MongoOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Order](ctx, r.coll, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoOrders) SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := updateOne(ctx, r.coll,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}

func (r *MongoOrders) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	n, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (r *MongoOrders) CustomerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	return r.aggregate(ctx, CustomerHistoryPipeline(email))
}

func (r *MongoOrders) SellerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	return r.aggregate(ctx, SellerHistoryPipeline(email))
}

func (r *MongoOrders) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.OrderView, error) {
	defer metrics.ObserveDBQuery(ordersCollection, "aggregate", time.Now())

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("repositories: orders aggregate: %w", err)
	}
	out := make([]models.OrderView, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("repositories: orders decode: %w", err)
	}
	return out, nil
}

// CustomerHistoryPipeline copies name, image and category from each order's
// plant onto the order.
func CustomerHistoryPipeline(email string) mongo.Pipeline {
	return historyPipeline(
		bson.D{{Key: "customer.email", Value: email}},
		bson.D{
			{Key: "name", Value: "$plants.name"},
			{Key: "image", Value: "$plants.image"},
			{Key: "category", Value: "$plants.category"},
		},
	)
}

// SellerHistoryPipeline copies only the plant name.
func SellerHistoryPipeline(email string) mongo.Pipeline {
	return historyPipeline(
		bson.D{{Key: "seller", Value: email}},
		bson.D{{Key: "name", Value: "$plants.name"}},
	)
}

// historyPipeline: match, coerce plantId to ObjectID, left-join plants,
// unwind the single match (orphans drop out), copy fields, drop the join.
// A malformed plantId converts to null and the row is dropped rather than
// failing the whole listing.
func historyPipeline(match, copyFields bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "plantId", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: "$plantId"},
				{Key: "to", Value: "objectId"},
				{Key: "onError", Value: nil},
				{Key: "onNull", Value: nil},
			}}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: plantsCollection},
			{Key: "localField", Value: "plantId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "plants"},
		}}},
		{{Key: "$unwind", Value: "$plants"}},
		{{Key: "$addFields", Value: copyFields}},
		{{Key: "$project", Value: bson.D{{Key: "plants", Value: 0}}}},
	}
}
