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

// ContentQuery carries the structural filters pushed down to the store
// during a content search. Rating filters are deliberately absent: they are
// applied post-merge. A non-nil ExternalIDs restricts the query to records
// also returned by the external sources.
type ContentQuery struct {
	Genres      []string
	YearMin     string
	YearMax     string
	ExternalIDs []string
}

// ContentRepository defines the interface for content data operations
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id string) (*models.Content, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Content, error)
	Search(ctx context.Context, q ContentQuery, limit int64) ([]models.Content, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, details *models.Content) (*models.Content, error)
	UpdateRatingStats(ctx context.Context, id primitive.ObjectID, avgRating float64, totalRatings int) error
	GetSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ContentSummary, error)
}

// MongoContentRepository implements ContentRepository for MongoDB
type MongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a new MongoContentRepository
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{collection: db.Collection(ContentCollection)}
}

// Create inserts a new content record. Uniqueness of external_id and title
// is enforced by the collection indexes and surfaces as ErrDuplicate.
func (r *MongoContentRepository) Create(ctx context.Context, content *models.Content) error {
	content.ID = primitive.NewObjectID()
	content.CreatedAt = time.Now()
	content.UpdatedAt = content.CreatedAt
	_, err := r.collection.InsertOne(ctx, content)
	return translateMongoError(err)
}

// GetByID retrieves a content record by its Mongo id
func (r *MongoContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID format: %w", err)
	}

	var content models.Content
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&content); err != nil {
		return nil, translateMongoError(err)
	}
	return &content, nil
}

// GetByExternalID retrieves a content record by its external catalog id
func (r *MongoContentRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Content, error) {
	var content models.Content
	if err := r.collection.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&content); err != nil {
		return nil, translateMongoError(err)
	}
	return &content, nil
}

// Search retrieves stored content matching the structural filters
func (r *MongoContentRepository) Search(ctx context.Context, q ContentQuery, limit int64) ([]models.Content, error) {
	filter := bson.M{}

	if len(q.Genres) > 0 {
		filter["genres"] = bson.M{"$in": q.Genres}
	}
	if q.ExternalIDs != nil {
		filter["external_id"] = bson.M{"$in": q.ExternalIDs}
	}

	var dateClauses []bson.M
	if q.YearMin != "" {
		dateClauses = append(dateClauses, bson.M{"$or": []bson.M{
			{"release_date": bson.M{"$gte": q.YearMin}},
			{"published_date": bson.M{"$gte": q.YearMin}},
		}})
	}
	if q.YearMax != "" {
		// string comparison works here: dates are stored year-first
		dateClauses = append(dateClauses, bson.M{"$or": []bson.M{
			{"release_date": bson.M{"$lte": q.YearMax + "￿"}},
			{"published_date": bson.M{"$lte": q.YearMax + "￿"}},
		}})
	}
	if len(dateClauses) > 0 {
		filter["$and"] = dateClauses
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.Content
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateDetails overwrites the descriptive fields of a stored record with
// freshly fetched ones and returns the updated document. The stored image
// URL and the derived rating fields are left untouched: cover art must not
// flap between fetches and avg_rating/total_ratings belong to the review
// aggregation.
func (r *MongoContentRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, details *models.Content) (*models.Content, error) {
	update := bson.M{"$set": bson.M{
		"summary":        details.Summary,
		"genres":         details.Genres,
		"release_date":   details.ReleaseDate,
		"published_date": details.PublishedDate,
		"director":       details.Director,
		"author":         details.Author,
		"runtime":        details.Runtime,
		"page_count":     details.PageCount,
		"updated_at":     time.Now(),
	}}

	var updated models.Content
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &updated, nil
}

// UpdateRatingStats writes the recomputed rating aggregate onto a record
func (r *MongoContentRepository) UpdateRatingStats(ctx context.Context, id primitive.ObjectID, avgRating float64, totalRatings int) error {
	update := bson.M{"$set": bson.M{
		"avg_rating":    avgRating,
		"total_ratings": totalRatings,
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

// GetSummariesByIDs retrieves minimal content projections for a set of ids
func (r *MongoContentRepository) GetSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ContentSummary, error) {
	summaries := make(map[primitive.ObjectID]models.ContentSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	projection := bson.M{"_id": 1, "title": 1, "image_url": 1, "content_type": 1, "external_id": 1}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.ContentSummary
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, s := range results {
		summaries[s.ID] = s
	}
	return summaries, nil
}
