package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity type values
const (
	ActivityRating  = "RATING"
	ActivityReview  = "REVIEW"
	ActivityListAdd = "LIST_ADD"
)

// Library list status values
const (
	StatusWatched = "watched"
	StatusToWatch = "to_watch"
	StatusRead    = "read"
	StatusToRead  = "to_read"
)

// Activity is one feed-visible social action stored in MongoDB.
// RATING/REVIEW activities are upserted per (user, related review);
// LIST_ADD activities are append-only history. Likes and CommentCount
// are denormalized from the interaction log and written only by the
// interaction handlers and the reconcile path.
type Activity struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint                `json:"user_id" bson:"user_id"`
	ContentID     primitive.ObjectID  `json:"content_id" bson:"content_id"`
	ActivityType  string              `json:"activity_type" bson:"activity_type"`
	RelatedReview *primitive.ObjectID `json:"related_review,omitempty" bson:"related_review,omitempty"`
	ActionText    string              `json:"action_text" bson:"action_text"`
	CommentCount  int                 `json:"comment_count" bson:"comment_count"`
	Likes         []uint              `json:"likes" bson:"likes"`
	ListStatus    string              `json:"list_status,omitempty" bson:"list_status,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

// ReviewActionText composes the feed text and activity type for a review
// submission. A comment makes it a REVIEW activity; a bare rating makes it
// a RATING activity.
func ReviewActionText(comment string, rating *int) (actionText, activityType string) {
	if comment != "" {
		if rating != nil {
			return fmt.Sprintf("made a comment and rated it %d/10", *rating), ActivityReview
		}
		return "made a comment", ActivityReview
	}
	if rating == nil {
		return "", ActivityRating
	}
	return fmt.Sprintf("rated an item %d/10", *rating), ActivityRating
}

var listStatusActionText = map[string]string{
	StatusWatched: "added it to their watched list",
	StatusToWatch: "added it to their watchlist",
	StatusRead:    "added it to their read list",
	StatusToRead:  "added it to their reading list",
}

// ListAddActionText returns the feed text for a library status change
func ListAddActionText(status string) string {
	return listStatusActionText[status]
}
