package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// Precision is a marketing section ("Where Precision Meets Compassion").
type Precision struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Image       string             `bson:"image" json:"image"`
	Title       string             `bson:"title" json:"title"`
	Subtitle    string             `bson:"subtitle" json:"subtitle"`
	Description string             `bson:"description" json:"description"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Timestamps  `bson:",inline"`
}

type PrecisionInput struct {
	Image       string `json:"image" form:"-" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Subtitle    string `json:"subtitle" form:"subtitle" validate:"required,max=300"`
	Description string `json:"description" form:"description" validate:"required,max=1000"`
	IsActive    *bool  `json:"isActive" form:"isActive"`
}

func (in *PrecisionInput) Normalize() {
	validation.Trim(&in.Image, &in.Title, &in.Subtitle, &in.Description)
}

func NewPrecision(in PrecisionInput, now time.Time) Precision {
	return Precision{
		ID:          primitive.NewObjectID(),
		Image:       in.Image,
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		IsActive:    boolOr(in.IsActive, true),
		Timestamps:  stamp(now),
	}
}

func (in PrecisionInput) Changes(now time.Time) bson.M {
	set := bson.M{
		"image":       in.Image,
		"title":       in.Title,
		"subtitle":    in.Subtitle,
		"description": in.Description,
		"updatedAt":   now.UTC(),
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	return set
}
