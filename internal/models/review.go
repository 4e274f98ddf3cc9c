package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one user's opinion of one content item. At most one review
// exists per (user, content) pair; a second submission updates it.
type Review struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	ContentID primitive.ObjectID `json:"content_id" bson:"content_id"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	Rating    *int               `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// SubmitReviewRequest defines the request body for creating or updating a review.
// At least one of comment and rating must be present; the handler enforces that
// since validator tags cannot express the cross-field rule.
type SubmitReviewRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	Comment   string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	Rating    *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
}
