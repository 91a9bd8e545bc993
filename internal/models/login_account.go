package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginAccount is an administrator of the website.
type LoginAccount struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash
	Timestamps `bson:",inline"`
}

type CredentialsInput struct {
	Email    string `json:"email" form:"email" validate:"required,labemail"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

func (in *CredentialsInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// NewLoginAccount builds an account around an already hashed password.
func NewLoginAccount(email, passwordHash string, now time.Time) LoginAccount {
	return LoginAccount{
		ID:         primitive.NewObjectID(),
		Email:      email,
		Password:   passwordHash,
		Timestamps: stamp(now),
	}
}
