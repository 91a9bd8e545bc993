package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// LaboratoryTest is an individual test offered by the laboratory.
type LaboratoryTest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title      string             `bson:"title" json:"title"`
	Text       string             `bson:"text" json:"text"`
	Image      string             `bson:"image" json:"image"`
	Features   []string           `bson:"features" json:"features"`
	Price      *float64           `bson:"price,omitempty" json:"price,omitempty"`
	Timestamps `bson:",inline"`
}

type LaboratoryTestInput struct {
	Title    string   `json:"title" form:"title" validate:"required,max=200"`
	Text     string   `json:"text" form:"text" validate:"required,max=500"`
	Image    string   `json:"image" form:"-" validate:"required"`
	Features []string `json:"features" form:"features" validate:"dive,max=100"`
	Price    *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
}

func (in *LaboratoryTestInput) Normalize() {
	validation.Trim(&in.Title, &in.Text, &in.Image)
	in.Features = validation.CleanList(in.Features)
}

func NewLaboratoryTest(in LaboratoryTestInput, now time.Time) LaboratoryTest {
	return LaboratoryTest{
		ID:         primitive.NewObjectID(),
		Title:      in.Title,
		Text:       in.Text,
		Image:      in.Image,
		Features:   in.Features,
		Price:      in.Price,
		Timestamps: stamp(now),
	}
}

func (in LaboratoryTestInput) Changes(now time.Time) bson.M {
	return bson.M{
		"title":     in.Title,
		"text":      in.Text,
		"image":     in.Image,
		"features":  in.Features,
		"price":     in.Price,
		"updatedAt": now.UTC(),
	}
}
