// models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog represents a blog post shown on the marketing site
type Blog struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Content     string             `json:"content" bson:"content"`
	Excerpt     string             `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	CoverImage  string             `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	Author      string             `json:"author,omitempty" bson:"author,omitempty"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type BlogRequest struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Excerpt     string   `json:"excerpt"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"isPublished"`
}
