// models/plan.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan represents a membership plan in the catalog
type Plan struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64            `json:"price" bson:"price"`
	DurationDays int                `json:"durationDays" bson:"durationDays"`
	Features     []string           `json:"features,omitempty" bson:"features,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PlanRequest is the request body for creating/updating plans
type PlanRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	DurationDays int      `json:"durationDays" validate:"required,gt=0"`
	Features     []string `json:"features"`
	IsActive     bool     `json:"isActive"`
}
