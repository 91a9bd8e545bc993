package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// SampleCollection is a sample collection service (home visit, centre...).
// Text is a short code and is always stored upper-cased.
type SampleCollection struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text       string             `bson:"text" json:"text"`
	Title      string             `bson:"title" json:"title"`
	Image      string             `bson:"image" json:"image"`
	Features   []string           `bson:"features" json:"features"`
	Price      float64            `bson:"price" json:"price"`
	Timestamps `bson:",inline"`
}

type SampleCollectionInput struct {
	Text     string   `json:"text" form:"text" validate:"required,max=300"`
	Title    string   `json:"title" form:"title" validate:"required,max=100"`
	Image    string   `json:"image" form:"-" validate:"required"`
	Features []string `json:"features" form:"features" validate:"min=1,dive,max=100"`
	Price    *float64 `json:"price" form:"price" validate:"required,gte=0"`
}

func (in *SampleCollectionInput) Normalize() {
	validation.Trim(&in.Text, &in.Title, &in.Image)
	in.Text = strings.ToUpper(in.Text)
	in.Features = validation.CleanList(in.Features)
}

func NewSampleCollection(in SampleCollectionInput, now time.Time) SampleCollection {
	return SampleCollection{
		ID:         primitive.NewObjectID(),
		Text:       in.Text,
		Title:      in.Title,
		Image:      in.Image,
		Features:   in.Features,
		Price:      *in.Price,
		Timestamps: stamp(now),
	}
}

func (in SampleCollectionInput) Changes(now time.Time) bson.M {
	return bson.M{
		"text":      in.Text,
		"title":     in.Title,
		"image":     in.Image,
		"features":  in.Features,
		"price":     *in.Price,
		"updatedAt": now.UTC(),
	}
}
