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

// FeedQuery selects a page of the activity ledger. A non-nil UserIDs
// restricts the feed to those authors; nil means global.
type FeedQuery struct {
	UserIDs []uint
	Skip    int64
	Limit   int64
}

// ActivityRepository defines the interface for activity ledger operations
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	GetByUserAndReview(ctx context.Context, userID uint, reviewID primitive.ObjectID) (*models.Activity, error)
	UpdateAction(ctx context.Context, id primitive.ObjectID, activityType, actionText string) error
	AddLike(ctx context.Context, id primitive.ObjectID, userID uint) error
	RemoveLike(ctx context.Context, id primitive.ObjectID, userID uint) error
	IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error
	SetCounters(ctx context.Context, id primitive.ObjectID, likes []uint, commentCount int) error
	List(ctx context.Context, q FeedQuery) ([]models.Activity, error)
	Count(ctx context.Context, q FeedQuery) (int64, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection(ActivitiesCollection)}
}

// Create appends a new activity to the ledger
func (r *MongoActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = activity.CreatedAt
	if activity.Likes == nil {
		activity.Likes = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return translateMongoError(err)
}

// GetByID retrieves an activity by id
func (r *MongoActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid activity ID format: %w", err)
	}

	var activity models.Activity
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&activity); err != nil {
		return nil, translateMongoError(err)
	}
	return &activity, nil
}

// GetByUserAndReview retrieves the single activity tied to a user's review.
// This is the upsert key for RATING/REVIEW activities.
func (r *MongoActivityRepository) GetByUserAndReview(ctx context.Context, userID uint, reviewID primitive.ObjectID) (*models.Activity, error) {
	var activity models.Activity
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "related_review": reviewID}).Decode(&activity)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &activity, nil
}

// UpdateAction rewrites the type and text of an existing activity in place
func (r *MongoActivityRepository) UpdateAction(ctx context.Context, id primitive.ObjectID, activityType, actionText string) error {
	update := bson.M{"$set": bson.M{
		"activity_type": activityType,
		"action_text":   actionText,
		"updated_at":    time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike adds a user to the denormalized likes set
func (r *MongoActivityRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID uint) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	return err
}

// RemoveLike removes a user from the denormalized likes set
func (r *MongoActivityRepository) RemoveLike(ctx context.Context, id primitive.ObjectID, userID uint) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$pull": bson.M{"likes": userID}})
	return err
}

// IncrementCommentCount increments the denormalized comment counter
func (r *MongoActivityRepository) IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"comment_count": 1}})
	return err
}

// SetCounters overwrites the denormalized counters with values recomputed
// from the interaction log
func (r *MongoActivityRepository) SetCounters(ctx context.Context, id primitive.ObjectID, likes []uint, commentCount int) error {
	if likes == nil {
		likes = []uint{}
	}
	update := bson.M{"$set": bson.M{
		"likes":         likes,
		"comment_count": commentCount,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves one feed page, newest first
func (r *MongoActivityRepository) List(ctx context.Context, q FeedQuery) ([]models.Activity, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(q.Skip).
		SetLimit(q.Limit)

	cursor, err := r.collection.Find(ctx, feedFilter(q), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Count returns the total number of activities matching the feed filter
func (r *MongoActivityRepository) Count(ctx context.Context, q FeedQuery) (int64, error) {
	return r.collection.CountDocuments(ctx, feedFilter(q))
}

func feedFilter(q FeedQuery) bson.M {
	if q.UserIDs == nil {
		return bson.M{}
	}
	return bson.M{"user_id": bson.M{"$in": q.UserIDs}}
}
