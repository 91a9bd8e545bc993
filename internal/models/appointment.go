package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/validation"
)

type Appointment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Phone          string             `bson:"phone" json:"phone"`
	Email          string             `bson:"email" json:"email"`
	Address        string             `bson:"address" json:"address"`
	Date           time.Time          `bson:"date" json:"date"`
	Time           string             `bson:"time" json:"time"`
	Service        string             `bson:"service" json:"service"`
	Category       string             `bson:"category" json:"category"`
	ServiceDetails string             `bson:"serviceDetails" json:"serviceDetails"`
	Timestamps     `bson:",inline"`
}

// AppointmentInput is the create/update payload for an appointment.
type AppointmentInput struct {
	Name           string `json:"name" form:"name" validate:"required,max=100"`
	Phone          string `json:"phone" form:"phone" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,labemail"`
	Address        string `json:"address" form:"address" validate:"required,max=500"`
	Date           string `json:"date" form:"date" validate:"required,date"`
	Time           string `json:"time" form:"time" validate:"required"`
	Service        string `json:"service" form:"service" validate:"required"`
	Category       string `json:"category" form:"category" validate:"required"`
	ServiceDetails string `json:"serviceDetails" form:"serviceDetails" validate:"max=500"`
}

func (in *AppointmentInput) Normalize() {
	validation.Trim(&in.Name, &in.Phone, &in.Email, &in.Address, &in.Date,
		&in.Time, &in.Service, &in.Category, &in.ServiceDetails)
	in.Email = strings.ToLower(in.Email)
}

// SlotFilter matches appointments booked for the same email, date and time.
// Call only on validated input.
func (in AppointmentInput) SlotFilter() bson.M {
	date, _ := validation.ParseDate(in.Date)
	return bson.M{"email": in.Email, "date": date, "time": in.Time}
}

func NewAppointment(in AppointmentInput, now time.Time) Appointment {
	date, _ := validation.ParseDate(in.Date)
	return Appointment{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		Date:           date,
		Time:           in.Time,
		Service:        in.Service,
		Category:       in.Category,
		ServiceDetails: in.ServiceDetails,
		Timestamps:     stamp(now),
	}
}

// Changes is the $set document applied by an update.
func (in AppointmentInput) Changes(now time.Time) bson.M {
	date, _ := validation.ParseDate(in.Date)
	return bson.M{
		"name":           in.Name,
		"phone":          in.Phone,
		"email":          in.Email,
		"address":        in.Address,
		"date":           date,
		"time":           in.Time,
		"service":        in.Service,
		"category":       in.Category,
		"serviceDetails": in.ServiceDetails,
		"updatedAt":      now.UTC(),
	}
}
