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

// ListRepository defines the interface for named user list operations
type ListRepository interface {
	Create(ctx context.Context, list *models.List) error
	ListByUser(ctx context.Context, userID uint) ([]models.List, error)
	GetByIDAndUser(ctx context.Context, id string, userID uint) (*models.List, error)
	AddContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error
	RemoveContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error
}

// MongoListRepository implements ListRepository for MongoDB
type MongoListRepository struct {
	collection *mongo.Collection
}

// NewMongoListRepository creates a new MongoListRepository
func NewMongoListRepository(db *mongo.Database) *MongoListRepository {
	return &MongoListRepository{collection: db.Collection(ListsCollection)}
}

// Create inserts a new list, racing on the (user_id, name) unique index
func (r *MongoListRepository) Create(ctx context.Context, list *models.List) error {
	list.ID = primitive.NewObjectID()
	list.CreatedAt = time.Now()
	list.UpdatedAt = list.CreatedAt
	if list.ContentIDs == nil {
		list.ContentIDs = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, list)
	return translateMongoError(err)
}

// ListByUser retrieves a user's lists, most recently updated first
func (r *MongoListRepository) ListByUser(ctx context.Context, userID uint) ([]models.List, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lists []models.List
	if err := cursor.All(ctx, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetByIDAndUser retrieves a list owned by the given user
func (r *MongoListRepository) GetByIDAndUser(ctx context.Context, id string, userID uint) (*models.List, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid list ID format: %w", err)
	}

	var list models.List
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "user_id": userID}).Decode(&list)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &list, nil
}

// AddContent adds a content id to a list, once
func (r *MongoListRepository) AddContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"content_ids": contentID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveContent removes a content id from a list
func (r *MongoListRepository) RemoveContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"content_ids": contentID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
