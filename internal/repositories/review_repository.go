package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/culta-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.Review, error)
	ListByContent(ctx context.Context, contentID primitive.ObjectID) ([]models.Review, error)
	Delete(ctx context.Context, id string, userID uint) (*models.Review, error)
	RatingStats(ctx context.Context, contentID primitive.ObjectID) (sum int, count int, err error)
}

// MongoReviewRepository implements ReviewRepository for MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoReviewRepository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection(ReviewsCollection)}
}

// Create inserts a new review. The (user_id, content_id) unique index is
// the backstop against concurrent duplicate submissions.
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	_, err := r.collection.InsertOne(ctx, review)
	return translateMongoError(err)
}

// Update overwrites the comment and rating of an existing review
func (r *MongoReviewRepository) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"comment":    review.Comment,
		"rating":     review.Rating,
		"updated_at": review.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByUserAndContent retrieves the single review of a user for a content item
func (r *MongoReviewRepository) GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "content_id": contentID}).Decode(&review)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &review, nil
}

// ListByContent retrieves all reviews for a content item, newest first
func (r *MongoReviewRepository) ListByContent(ctx context.Context, contentID primitive.ObjectID) ([]models.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"content_id": contentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Delete removes a review owned by userID and returns the deleted document
// so the caller can recompute the content rating it contributed to. A review
// owned by someone else comes back as ErrNotFound.
func (r *MongoReviewRepository) Delete(ctx context.Context, id string, userID uint) (*models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID format: %w", err)
	}

	var deleted models.Review
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": objID, "user_id": userID}).Decode(&deleted); err != nil {
		return nil, translateMongoError(err)
	}
	return &deleted, nil
}

// RatingStats aggregates the rated reviews of a content item. Reviews
// without a rating are excluded from both sum and count.
func (r *MongoReviewRepository) RatingStats(ctx context.Context, contentID primitive.ObjectID) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"content_id": contentID,
			"rating":     bson.M{"$exists": true, "$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$content_id",
			"sum":   bson.M{"$sum": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var stats []struct {
		Sum   int `bson:"sum"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &stats); err != nil {
		return 0, 0, err
	}
	if len(stats) == 0 {
		return 0, 0, nil
	}
	return stats[0].Sum, stats[0].Count, nil
}
