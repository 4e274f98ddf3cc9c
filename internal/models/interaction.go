package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interaction type values
const (
	InteractionLike    = "LIKE"
	InteractionComment = "COMMENT"
)

// Interaction is a like or a comment attached to an activity. A partial
// unique index on (user_id, activity_id, interaction_type) scoped to LIKE
// documents enforces at most one like per user per activity; comments are
// unlimited.
type Interaction struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          uint               `json:"user_id" bson:"user_id"`
	ActivityID      primitive.ObjectID `json:"activity_id" bson:"activity_id"`
	InteractionType string             `json:"interaction_type" bson:"interaction_type"`
	CommentText     string             `json:"comment_text,omitempty" bson:"comment_text,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// AddCommentRequest defines the request body for commenting on an activity
type AddCommentRequest struct {
	CommentText string `json:"comment_text" validate:"required,min=1,max=1000"`
}
