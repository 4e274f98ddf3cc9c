package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryEntry is a user's personal status for a content item. At most one
// entry exists per (user, content); re-adding overwrites the status in place
// and emits a new LIST_ADD activity.
type LibraryEntry struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	ContentID  primitive.ObjectID `json:"content_id" bson:"content_id"`
	ListStatus string             `json:"list_status" bson:"list_status"`
	UserRating *int               `json:"user_rating,omitempty" bson:"user_rating,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// AddLibraryEntryRequest defines the request body for adding or updating a
// library entry. ContentID accepts a Mongo hex id or an external catalog id.
type AddLibraryEntryRequest struct {
	ContentID  string `json:"content_id" validate:"required"`
	ListStatus string `json:"list_status" validate:"required,oneof=watched to_watch read to_read"`
	UserRating *int   `json:"user_rating,omitempty" validate:"omitempty,min=1,max=10"`
}
