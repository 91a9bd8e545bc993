package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Indexes lists the secondary indexes each collection needs.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		AppointmentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "service", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		DoctorsCollection: {
			{Keys: bson.D{{Key: "specialization", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		HomeCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		LaboratoryCollection: {
			{Keys: bson.D{{Key: "title", Value: "text"}}},
		},
		PackageTestsCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		PrecisionCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		SampleCollectionCollection: {
			{Keys: bson.D{{Key: "title", Value: 1}}},
		},
		LoginCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

// legacyIndexes were created by earlier releases and conflict with the
// current rules: appointment confirmation numbers and statuses are gone and
// doctor emails are no longer unique.
var legacyIndexes = map[string][]string{
	AppointmentsCollection: {"confirmationNumber_1", "status_1"},
	DoctorsCollection:      {"email_1"},
}

// EnsureIndexes creates every index returned by Indexes. Creating an index
// that already exists is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	for name, models := range Indexes() {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return classify(err, "create indexes on "+name)
		}
		log.Info("indexes ensured", zap.String("collection", name), zap.Strings("indexes", created))
	}
	return nil
}

// DropLegacyIndexes removes indexes left behind by earlier releases. Missing
// indexes and collections are ignored.
func DropLegacyIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	for name, indexes := range legacyIndexes {
		for _, index := range indexes {
			_, err := db.Collection(name).Indexes().DropOne(ctx, index)
			switch {
			case err == nil:
				log.Info("legacy index dropped", zap.String("collection", name), zap.String("index", index))
			case ignorableDropError(err):
				log.Debug("legacy index absent", zap.String("collection", name), zap.String("index", index))
			default:
				return classify(err, "drop index "+index)
			}
		}
	}
	return nil
}

const (
	codeNamespaceNotFound = 26
	codeIndexNotFound     = 27
)

func ignorableDropError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeNamespaceNotFound || cmdErr.Code == codeIndexNotFound
	}
	return false
}
