package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const booksDefaultBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooksSource resolves books against the Google Books volumes API
type GoogleBooksSource struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGoogleBooksSource creates a Google Books source with the default base URL
func NewGoogleBooksSource() *GoogleBooksSource {
	return &GoogleBooksSource{
		BaseURL:    booksDefaultBaseURL,
		HTTPClient: http.DefaultClient,
	}
}

type booksVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Subtitle      string   `json:"subtitle"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		RatingsCount  int      `json:"ratingsCount"`
		ImageLinks    struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type booksSearchResponse struct {
	Items []booksVolume `json:"items"`
}

// Search queries the volumes endpoint and normalizes the results
func (s *GoogleBooksSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	var resp booksSearchResponse
	if err := s.get(ctx, "/volumes", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, item.toCandidate())
	}
	return candidates, nil
}

// GetDetails fetches a single volume by id
func (s *GoogleBooksSource) GetDetails(ctx context.Context, externalID string) (*Candidate, error) {
	var volume booksVolume
	if err := s.get(ctx, "/volumes/"+externalID, nil, &volume); err != nil {
		return nil, err
	}
	if volume.VolumeInfo.Title == "" {
		return nil, fmt.Errorf("google books volume %s has no details", externalID)
	}

	cand := volume.toCandidate()
	cand.ExternalID = externalID
	return &cand, nil
}

func (v booksVolume) toCandidate() Candidate {
	info := v.VolumeInfo

	summary := info.Description
	if summary == "" {
		summary = info.Subtitle
	}

	return Candidate{
		ExternalID:    v.ID,
		ContentType:   "book",
		Title:         info.Title,
		Summary:       stripTags(summary),
		Genres:        info.Categories,
		PublishedDate: info.PublishedDate,
		Author:        strings.Join(info.Authors, ", "),
		PageCount:     info.PageCount,
		AvgRating:     round1(info.AverageRating),
		TotalRatings:  info.RatingsCount,
		ImageURL:      bookImageURL(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail),
	}
}

// Google Books serves thumbnail links over plain http
func bookImageURL(thumbnail, smallThumbnail string) string {
	raw := thumbnail
	if raw == "" {
		raw = smallThumbnail
	}
	return strings.Replace(raw, "http://", "https://", 1)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// book descriptions arrive with embedded markup
func stripTags(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *GoogleBooksSource) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("google books non-2xx status: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
