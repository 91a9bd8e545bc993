package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

type Doctor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Specialization string             `bson:"specialization" json:"specialization"`
	Qualification  string             `bson:"qualification" json:"qualification"`
	Experience     int                `bson:"experience" json:"experience"`
	Description    string             `bson:"description" json:"description"`
	Image          string             `bson:"image" json:"image"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Timestamps     `bson:",inline"`
}

type DoctorInput struct {
	Name           string `json:"name" form:"name" validate:"required,max=100"`
	Specialization string `json:"specialization" form:"specialization" validate:"required,max=100"`
	Qualification  string `json:"qualification" form:"qualification" validate:"required,max=200"`
	Experience     *int   `json:"experience" form:"experience" validate:"required,gte=0,lte=50"`
	Description    string `json:"description" form:"description" validate:"required,max=500"`
	Image          string `json:"image" form:"-"`
	IsActive       *bool  `json:"isActive" form:"isActive"`
}

func (in *DoctorInput) Normalize() {
	validation.Trim(&in.Name, &in.Specialization, &in.Qualification, &in.Description, &in.Image)
}

func NewDoctor(in DoctorInput, now time.Time) Doctor {
	return Doctor{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		Specialization: in.Specialization,
		Qualification:  in.Qualification,
		Experience:     *in.Experience,
		Description:    in.Description,
		Image:          in.Image,
		IsActive:       boolOr(in.IsActive, true),
		Timestamps:     stamp(now),
	}
}

func (in DoctorInput) Changes(now time.Time) bson.M {
	set := bson.M{
		"name":           in.Name,
		"specialization": in.Specialization,
		"qualification":  in.Qualification,
		"experience":     *in.Experience,
		"description":    in.Description,
		"image":          in.Image,
		"updatedAt":      now.UTC(),
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	return set
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
