package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

// Mongo is a Repository backed by a MongoDB collection.
type Mongo[T any] struct {
	coll *mongo.Collection
}

func NewMongo[T any](db *mongo.Database, collection string) *Mongo[T] {
	return &Mongo[T]{coll: db.Collection(collection)}
}

func classify(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, "document not found", err)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.KindDuplicate, "duplicate key", err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func (m *Mongo[T]) Insert(ctx context.Context, doc *T) error {
	_, err := m.coll.InsertOne(ctx, doc)
	return classify(err, "insert "+m.coll.Name())
}

func (m *Mongo[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *Mongo[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := m.coll.FindOne(ctx, orEmpty(filter)).Decode(&doc); err != nil {
		return nil, classify(err, "find "+m.coll.Name())
	}
	return &doc, nil
}

func (m *Mongo[T]) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]T, error) {
	findOptions := options.Find()
	if len(opts.Sort) > 0 {
		findOptions.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	cursor, err := m.coll.Find(ctx, orEmpty(filter), findOptions)
	if err != nil {
		return nil, classify(err, "find "+m.coll.Name())
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(err, "decode "+m.coll.Name())
	}
	return docs, nil
}

func (m *Mongo[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, orEmpty(filter))
	return n, classify(err, "count "+m.coll.Name())
}

func (m *Mongo[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, classify(err, "update "+m.coll.Name())
	}
	return &doc, nil
}

func (m *Mongo[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := m.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, classify(err, "delete "+m.coll.Name())
	}
	return &doc, nil
}

func (m *Mongo[T]) CountBy(ctx context.Context, field string, filter bson.M) ([]GroupCount, error) {
	cursor, err := m.coll.Aggregate(ctx, countByPipeline(field, filter))
	if err != nil {
		return nil, classify(err, "aggregate "+m.coll.Name())
	}
	defer cursor.Close(ctx)

	groups := make([]GroupCount, 0)
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, classify(err, "decode "+m.coll.Name())
	}
	return groups, nil
}

func (m *Mongo[T]) Average(ctx context.Context, field string, filter bson.M) (float64, error) {
	cursor, err := m.coll.Aggregate(ctx, averagePipeline(field, filter))
	if err != nil {
		return 0, classify(err, "aggregate "+m.coll.Name())
	}
	defer cursor.Close(ctx)

	var out []struct {
		Avg *float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, classify(err, "decode "+m.coll.Name())
	}
	if len(out) == 0 || out[0].Avg == nil {
		return 0, nil
	}
	return *out[0].Avg, nil
}

// orEmpty guards against nil filters, which the driver rejects.
func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

func countByPipeline(field string, filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: orEmpty(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func averagePipeline(field string, filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: orEmpty(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$" + field}}},
		}}},
	}
}
