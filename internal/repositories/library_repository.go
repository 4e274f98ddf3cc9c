package repositories

import (
	"context"
	"time"

	"github.com/culta-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LibraryRepository defines the interface for library entry operations
type LibraryRepository interface {
	Create(ctx context.Context, entry *models.LibraryEntry) error
	Update(ctx context.Context, entry *models.LibraryEntry) error
	GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.LibraryEntry, error)
	ListByUser(ctx context.Context, userID uint, status string) ([]models.LibraryEntry, error)
}

// MongoLibraryRepository implements LibraryRepository for MongoDB
type MongoLibraryRepository struct {
	collection *mongo.Collection
}

// NewMongoLibraryRepository creates a new MongoLibraryRepository
func NewMongoLibraryRepository(db *mongo.Database) *MongoLibraryRepository {
	return &MongoLibraryRepository{collection: db.Collection(LibraryCollection)}
}

// Create inserts a new library entry, racing on the (user_id, content_id)
// unique index
func (r *MongoLibraryRepository) Create(ctx context.Context, entry *models.LibraryEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	_, err := r.collection.InsertOne(ctx, entry)
	return translateMongoError(err)
}

// Update overwrites the status and personal rating of an existing entry
func (r *MongoLibraryRepository) Update(ctx context.Context, entry *models.LibraryEntry) error {
	entry.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"list_status": entry.ListStatus,
		"user_rating": entry.UserRating,
		"updated_at":  entry.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByUserAndContent retrieves a user's entry for a content item
func (r *MongoLibraryRepository) GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "content_id": contentID}).Decode(&entry)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &entry, nil
}

// ListByUser retrieves a user's library, optionally filtered by status
func (r *MongoLibraryRepository) ListByUser(ctx context.Context, userID uint, status string) ([]models.LibraryEntry, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["list_status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LibraryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
