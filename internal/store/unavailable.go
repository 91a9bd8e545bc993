package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

// Unavailable stands in for a repository when no database is configured.
// The server still starts and every data route answers with an internal
// error.
type Unavailable[T any] struct{}

var errUnavailable = apperr.New(apperr.KindInternal, "database unavailable")

func (Unavailable[T]) Insert(context.Context, *T) error { return errUnavailable }

func (Unavailable[T]) FindByID(context.Context, primitive.ObjectID) (*T, error) {
	return nil, errUnavailable
}

func (Unavailable[T]) FindOne(context.Context, bson.M) (*T, error) { return nil, errUnavailable }

func (Unavailable[T]) Find(context.Context, bson.M, FindOptions) ([]T, error) {
	return nil, errUnavailable
}

func (Unavailable[T]) Count(context.Context, bson.M) (int64, error) { return 0, errUnavailable }

func (Unavailable[T]) UpdateByID(context.Context, primitive.ObjectID, bson.M) (*T, error) {
	return nil, errUnavailable
}

func (Unavailable[T]) DeleteByID(context.Context, primitive.ObjectID) (*T, error) {
	return nil, errUnavailable
}

func (Unavailable[T]) CountBy(context.Context, string, bson.M) ([]GroupCount, error) {
	return nil, errUnavailable
}

func (Unavailable[T]) Average(context.Context, string, bson.M) (float64, error) {
	return 0, errUnavailable
}
