package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// SubService is one card inside a ServiceSection.
type SubService struct {
	Image       string   `bson:"image" json:"image"`
	Title       string   `bson:"title" json:"title" validate:"required"`
	Description string   `bson:"description" json:"description"`
	Features    []string `bson:"features" json:"features"`
	Href        string   `bson:"href" json:"href"`
	Color       string   `bson:"color" json:"color"`
}

type ServiceSection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Subtitle    string             `bson:"subtitle" json:"subtitle"`
	Description string             `bson:"description" json:"description"`
	Services    []SubService       `bson:"services" json:"services"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Timestamps  `bson:",inline"`
}

type ServiceSectionInput struct {
	Title       string       `json:"title" validate:"required"`
	Subtitle    string       `json:"subtitle" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Services    []SubService `json:"services" validate:"required,dive"`
	IsActive    *bool        `json:"isActive"`
}

func (in *ServiceSectionInput) Normalize() {
	validation.Trim(&in.Title, &in.Subtitle, &in.Description)
	for i := range in.Services {
		s := &in.Services[i]
		validation.Trim(&s.Image, &s.Title, &s.Description, &s.Href, &s.Color)
		s.Features = validation.CleanList(s.Features)
	}
}

func NewServiceSection(in ServiceSectionInput, now time.Time) ServiceSection {
	return ServiceSection{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		Services:    in.Services,
		IsActive:    boolOr(in.IsActive, true),
		Timestamps:  stamp(now),
	}
}

func (in ServiceSectionInput) Changes(now time.Time) bson.M {
	set := bson.M{
		"title":       in.Title,
		"subtitle":    in.Subtitle,
		"description": in.Description,
		"services":    in.Services,
		"updatedAt":   now.UTC(),
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	return set
}
