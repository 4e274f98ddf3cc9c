package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List is a named user list of content items, unique per (user, name)
type List struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      uint                 `json:"user_id" bson:"user_id"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	ContentIDs  []primitive.ObjectID `json:"content_ids" bson:"content_ids"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreateListRequest defines the request body for creating a list
type CreateListRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateListContentRequest defines the request body for adding or removing
// a content item from a list
type UpdateListContentRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=add remove"`
}
