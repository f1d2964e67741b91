// models/quote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quote is a motivational quote rotated on the marketing site
type Quote struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	Author    string             `json:"author,omitempty" bson:"author,omitempty"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type QuoteRequest struct {
	Text     string `json:"text" validate:"required"`
	Author   string `json:"author"`
	IsActive bool   `json:"isActive"`
}
