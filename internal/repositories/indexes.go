package repositories

import (
	"context"
	"fmt"

	"github.com/culta-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ContentCollection      = "content"
	ReviewsCollection      = "reviews"
	ActivitiesCollection   = "activities"
	InteractionsCollection = "interactions"
	LibraryCollection      = "library"
	ListsCollection        = "lists"
)

// EnsureIndexes creates the unique indexes that back the uniqueness
// invariants: one content record per external id and per title, one review
// and one library entry per (user, content), one LIKE interaction per
// (user, activity), one list per (user, name). Concurrent writers race on
// these indexes rather than on read-then-write checks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ContentCollection: {
			{
				Keys:    bson.D{{Key: "external_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("external_id_unique"),
			},
			{
				Keys:    bson.D{{Key: "title", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("title_unique"),
			},
		},
		ReviewsCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "content_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_content_unique"),
			},
		},
		ActivitiesCollection: {
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("created_at_desc"),
			},
		},
		InteractionsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "activity_id", Value: 1},
					{Key: "interaction_type", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetName("user_activity_like_unique").
					SetPartialFilterExpression(bson.M{
						"interaction_type": models.InteractionLike,
					}),
			},
			{
				Keys:    bson.D{{Key: "activity_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("activity_created_at_asc"),
			},
		},
		LibraryCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "content_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_content_unique"),
			},
		},
		ListsCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_name_unique"),
			},
		},
	}

	for collName, collIndexes := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateMany(ctx, collIndexes); err != nil {
			return fmt.Errorf("failed to create indexes for collection %q: %w", collName, err)
		}
	}
	return nil
}
