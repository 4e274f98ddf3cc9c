package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content type values
const (
	ContentTypeMovie = "movie"
	ContentTypeBook  = "book"
)

// Content represents one catalog item (movie or book) stored in MongoDB,
// keyed by the stable identifier of its external source. AvgRating and
// TotalRatings are derived from the review set and written only by the
// rating recompute path.
type Content struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ExternalID    string             `json:"external_id" bson:"external_id"`
	ContentType   string             `json:"content_type" bson:"content_type"`
	Title         string             `json:"title" bson:"title"`
	Summary       string             `json:"summary,omitempty" bson:"summary,omitempty"`
	Genres        []string           `json:"genres,omitempty" bson:"genres,omitempty"`
	ReleaseDate   string             `json:"release_date,omitempty" bson:"release_date,omitempty"`
	PublishedDate string             `json:"published_date,omitempty" bson:"published_date,omitempty"`
	Director      string             `json:"director,omitempty" bson:"director,omitempty"`
	Author        string             `json:"author,omitempty" bson:"author,omitempty"`
	Runtime       int                `json:"runtime,omitempty" bson:"runtime,omitempty"`
	PageCount     int                `json:"page_count,omitempty" bson:"page_count,omitempty"`
	AvgRating     float64            `json:"avg_rating" bson:"avg_rating"`
	TotalRatings  int                `json:"total_ratings" bson:"total_ratings"`
	ImageURL      string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt     time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ContentSummary is the minimal content projection joined into feed,
// library and list responses
type ContentSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	ImageURL    string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	ContentType string             `json:"content_type" bson:"content_type"`
	ExternalID  string             `json:"external_id" bson:"external_id"`
}

// ToSummary returns the minimal projection of a content record
func (c *Content) ToSummary() ContentSummary {
	return ContentSummary{
		ID:          c.ID,
		Title:       c.Title,
		ImageURL:    c.ImageURL,
		ContentType: c.ContentType,
		ExternalID:  c.ExternalID,
	}
}

// AddContentRequest defines the request body for adding a content record directly
type AddContentRequest struct {
	ExternalID    string   `json:"external_id" validate:"required"`
	ContentType   string   `json:"content_type" validate:"required,oneof=movie book"`
	Title         string   `json:"title" validate:"required"`
	Summary       string   `json:"summary,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Director      string   `json:"director,omitempty"`
	Author        string   `json:"author,omitempty"`
	Runtime       int      `json:"runtime,omitempty" validate:"omitempty,min=0"`
	PageCount     int      `json:"page_count,omitempty" validate:"omitempty,min=0"`
	ImageURL      string   `json:"image_url,omitempty" validate:"omitempty,url"`
}
