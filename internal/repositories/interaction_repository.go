package repositories

import (
	"context"
	"time"

	"github.com/culta-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InteractionRepository defines the interface for like/comment log operations
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.Interaction) error
	GetLike(ctx context.Context, userID uint, activityID primitive.ObjectID) (*models.Interaction, error)
	DeleteLike(ctx context.Context, userID uint, activityID primitive.ObjectID) error
	ListComments(ctx context.Context, activityID primitive.ObjectID) ([]models.Interaction, error)
	LikerIDs(ctx context.Context, activityID primitive.ObjectID) ([]uint, error)
	CountComments(ctx context.Context, activityID primitive.ObjectID) (int64, error)
}

// MongoInteractionRepository implements InteractionRepository for MongoDB
type MongoInteractionRepository struct {
	collection *mongo.Collection
}

// NewMongoInteractionRepository creates a new MongoInteractionRepository
func NewMongoInteractionRepository(db *mongo.Database) *MongoInteractionRepository {
	return &MongoInteractionRepository{collection: db.Collection(InteractionsCollection)}
}

// Create inserts a like or comment row. For likes the partial unique index
// on (user_id, activity_id, LIKE) rejects a concurrent duplicate, which
// surfaces as ErrDuplicate.
func (r *MongoInteractionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	interaction.ID = primitive.NewObjectID()
	interaction.CreatedAt = time.Now()
	interaction.UpdatedAt = interaction.CreatedAt
	_, err := r.collection.InsertOne(ctx, interaction)
	return translateMongoError(err)
}

// GetLike retrieves a user's like on an activity if one exists
func (r *MongoInteractionRepository) GetLike(ctx context.Context, userID uint, activityID primitive.ObjectID) (*models.Interaction, error) {
	filter := bson.M{
		"user_id":          userID,
		"activity_id":      activityID,
		"interaction_type": models.InteractionLike,
	}

	var interaction models.Interaction
	if err := r.collection.FindOne(ctx, filter).Decode(&interaction); err != nil {
		return nil, translateMongoError(err)
	}
	return &interaction, nil
}

// DeleteLike removes a user's like on an activity
func (r *MongoInteractionRepository) DeleteLike(ctx context.Context, userID uint, activityID primitive.ObjectID) error {
	filter := bson.M{
		"user_id":          userID,
		"activity_id":      activityID,
		"interaction_type": models.InteractionLike,
	}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListComments retrieves the comments of an activity in conversation order,
// oldest first
func (r *MongoInteractionRepository) ListComments(ctx context.Context, activityID primitive.ObjectID) ([]models.Interaction, error) {
	filter := bson.M{
		"activity_id":      activityID,
		"interaction_type": models.InteractionComment,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Interaction
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// LikerIDs recomputes the set of users that like an activity from the log
func (r *MongoInteractionRepository) LikerIDs(ctx context.Context, activityID primitive.ObjectID) ([]uint, error) {
	filter := bson.M{
		"activity_id":      activityID,
		"interaction_type": models.InteractionLike,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Interaction
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.UserID)
	}
	return ids, nil
}

// CountComments recomputes the comment count of an activity from the log
func (r *MongoInteractionRepository) CountComments(ctx context.Context, activityID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"activity_id":      activityID,
		"interaction_type": models.InteractionComment,
	}
	return r.collection.CountDocuments(ctx, filter)
}
