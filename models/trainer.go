// models/trainer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trainer is a staff profile shown on the marketing site
type Trainer struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName        string             `json:"fullName" bson:"fullName"`
	Speciality      string             `json:"speciality,omitempty" bson:"speciality,omitempty"`
	Bio             string             `json:"bio,omitempty" bson:"bio,omitempty"`
	YearsExp        int                `json:"yearsExperience" bson:"yearsExperience"`
	Photo           string             `json:"photo,omitempty" bson:"photo,omitempty"`
	PhotoThumb      string             `json:"photoThumb,omitempty" bson:"photoThumb,omitempty"`
	IntroVideo      string             `json:"introVideo,omitempty" bson:"introVideo,omitempty"`
	IntroVideoThumb string             `json:"introVideoThumb,omitempty" bson:"introVideoThumb,omitempty"`
	Instagram       string             `json:"instagram,omitempty" bson:"instagram,omitempty"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type TrainerRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Speciality string `json:"speciality"`
	Bio        string `json:"bio"`
	YearsExp   int    `json:"yearsExperience"`
	Instagram  string `json:"instagram"`
	IsActive   bool   `json:"isActive"`
}
