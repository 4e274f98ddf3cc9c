// Package catalog talks to the external content catalogs (TMDB for movies,
// Google Books for books) and carries the merge logic that reconciles their
// results with locally persisted content records.
package catalog

import (
	"context"

	"github.com/culta-app/backend/internal/models"
)

// Candidate is one normalized search or detail result from an external source
type Candidate struct {
	ExternalID    string   `json:"external_id"`
	ContentType   string   `json:"content_type"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Director      string   `json:"director,omitempty"`
	Author        string   `json:"author,omitempty"`
	Runtime       int      `json:"runtime,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	AvgRating     float64  `json:"avg_rating"`
	TotalRatings  int      `json:"total_ratings"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// Source is one external content catalog
type Source interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	GetDetails(ctx context.Context, externalID string) (*Candidate, error)
}

// ToContent converts a candidate into an unpersisted content record.
// Derived rating fields stay zero: they belong to the review aggregation,
// not to the external source.
func (cand Candidate) ToContent() models.Content {
	return models.Content{
		ExternalID:    cand.ExternalID,
		ContentType:   cand.ContentType,
		Title:         cand.Title,
		Summary:       cand.Summary,
		Genres:        cand.Genres,
		ReleaseDate:   cand.ReleaseDate,
		PublishedDate: cand.PublishedDate,
		Director:      cand.Director,
		Author:        cand.Author,
		Runtime:       cand.Runtime,
		PageCount:     cand.PageCount,
		ImageURL:      cand.ImageURL,
	}
}
