// Package store persists records, one collection per resource type.
//
// Every adapter returns errors tagged with an apperr.Kind: a missing
// document is KindNotFound, a unique index violation is KindDuplicate and
// everything else is KindInternal.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names, compatible with the data written by earlier releases.
const (
	AppointmentsCollection     = "appointments"
	DoctorsCollection          = "doctors"
	HomeCollection             = "homes"
	LaboratoryCollection       = "laboratories"
	PackageTestsCollection     = "packagelaboratorytests"
	PrecisionCollection        = "precisions"
	SampleCollectionCollection = "samplecollections"
	ServiceSectionsCollection  = "servicesections"
	LoginCollection            = "logins"
)

// FindOptions controls ordering and paging of Find. Zero Skip and Limit
// mean "from the start" and "no limit".
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// GroupCount is one bucket of a CountBy aggregation.
type GroupCount struct {
	Key   string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// Repository is the persistence contract shared by every resource.
// Filters are MongoDB query documents limited to equality, $gt, $gte, $lt,
// $lte, $ne, $or and regular expressions.
type Repository[T any] interface {
	Insert(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]T, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	// UpdateByID applies set atomically and returns the new version.
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error)
	// DeleteByID removes the document and returns it.
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	// CountBy groups the matching documents by field, largest groups first.
	CountBy(ctx context.Context, field string, filter bson.M) ([]GroupCount, error)
	// Average is the mean of the numeric values of field; 0 when none.
	Average(ctx context.Context, field string, filter bson.M) (float64, error)
}
