package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// HomeItem is a slide of the home page carousel.
type HomeItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Image      string             `bson:"image" json:"image"`
	Title      string             `bson:"title" json:"title"`
	Text       string             `bson:"text" json:"text"`
	Features   []string           `bson:"features" json:"features"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	Timestamps `bson:",inline"`
}

type HomeItemInput struct {
	Image    string   `json:"image" form:"-" validate:"required"`
	Title    string   `json:"title" form:"title" validate:"required"`
	Text     string   `json:"text" form:"text" validate:"required"`
	Features []string `json:"features" form:"features" validate:"min=1"`
	IsActive *bool    `json:"isActive" form:"isActive"`
}

func (in *HomeItemInput) Normalize() {
	validation.Trim(&in.Image, &in.Title, &in.Text)
	in.Features = validation.CleanList(in.Features)
}

func NewHomeItem(in HomeItemInput, now time.Time) HomeItem {
	return HomeItem{
		ID:         primitive.NewObjectID(),
		Image:      in.Image,
		Title:      in.Title,
		Text:       in.Text,
		Features:   in.Features,
		IsActive:   boolOr(in.IsActive, true),
		Timestamps: stamp(now),
	}
}

func (in HomeItemInput) Changes(now time.Time) bson.M {
	return bson.M{
		"image":     in.Image,
		"title":     in.Title,
		"text":      in.Text,
		"features":  in.Features,
		"isActive":  boolOr(in.IsActive, true),
		"updatedAt": now.UTC(),
	}
}
