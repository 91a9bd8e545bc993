package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

// PackageTest is a bundle of laboratory tests sold together. Deleting one
// through the API only clears IsActive.
type PackageTest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Text        string             `bson:"text" json:"text"`
	Description string             `bson:"description" json:"description"`
	Features    []string           `bson:"features" json:"features"`
	Price       *float64           `bson:"price" json:"price"`
	Image       *string            `bson:"image" json:"image"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Timestamps  `bson:",inline"`
}

type PackageTestInput struct {
	Title       string   `json:"title" form:"title" validate:"required"`
	Text        string   `json:"text" form:"text" validate:"required"`
	Description string   `json:"description" form:"description" validate:"required"`
	Features    []string `json:"features" form:"features" validate:"min=1"`
	Price       *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	Image       string   `json:"image" form:"-"`
	IsActive    *bool    `json:"isActive" form:"isActive"`
}

func (in *PackageTestInput) Normalize() {
	validation.Trim(&in.Title, &in.Text, &in.Description, &in.Image)
	in.Features = validation.CleanList(in.Features)
}

func (in PackageTestInput) image() *string {
	if in.Image == "" {
		return nil
	}
	img := in.Image
	return &img
}

func NewPackageTest(in PackageTestInput, now time.Time) PackageTest {
	return PackageTest{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Text:        in.Text,
		Description: in.Description,
		Features:    in.Features,
		Price:       in.Price,
		Image:       in.image(),
		IsActive:    boolOr(in.IsActive, true),
		Timestamps:  stamp(now),
	}
}

func (in PackageTestInput) Changes(now time.Time) bson.M {
	set := bson.M{
		"title":       in.Title,
		"text":        in.Text,
		"description": in.Description,
		"features":    in.Features,
		"price":       in.Price,
		"image":       in.image(),
		"updatedAt":   now.UTC(),
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	return set
}

// ImagePath returns the stored image or "".
func (p PackageTest) ImagePath() string {
	if p.Image == nil {
		return ""
	}
	return *p.Image
}
