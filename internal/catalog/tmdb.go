package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	tmdbDefaultBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// TMDBSource resolves movies against The Movie Database API
type TMDBSource struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewTMDBSource creates a TMDB source with the default base URL
func NewTMDBSource(apiKey string) *TMDBSource {
	return &TMDBSource{
		BaseURL:    tmdbDefaultBaseURL,
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
	}
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbSearchResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbCredits struct {
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

// Search queries TMDB movie search and normalizes the results
func (s *TMDBSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	var resp tmdbSearchResponse
	params := url.Values{"query": {query}}
	if err := s.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Results))
	for _, movie := range resp.Results {
		candidates = append(candidates, movie.toCandidate())
	}
	return candidates, nil
}

// GetDetails fetches a single movie with its director credit
func (s *TMDBSource) GetDetails(ctx context.Context, externalID string) (*Candidate, error) {
	var movie tmdbMovie
	if err := s.get(ctx, "/movie/"+externalID, nil, &movie); err != nil {
		return nil, err
	}

	cand := movie.toCandidate()
	cand.ExternalID = externalID

	var credits tmdbCredits
	if err := s.get(ctx, "/movie/"+externalID+"/credits", nil, &credits); err == nil {
		for _, member := range credits.Crew {
			if member.Job == "Director" {
				cand.Director = member.Name
				break
			}
		}
	}

	return &cand, nil
}

func (m tmdbMovie) toCandidate() Candidate {
	cand := Candidate{
		ExternalID:   strconv.FormatInt(m.ID, 10),
		ContentType:  "movie",
		Title:        m.Title,
		ReleaseDate:  m.ReleaseDate,
		Runtime:      m.Runtime,
		AvgRating:    round1(m.VoteAverage),
		TotalRatings: m.VoteCount,
		Summary:      m.Overview,
	}
	if m.PosterPath != "" {
		cand.ImageURL = tmdbImageBaseURL + m.PosterPath
	}
	for _, g := range m.Genres {
		cand.Genres = append(cand.Genres, g.Name)
	}
	return cand
}

func (s *TMDBSource) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", s.APIKey)
	req.URL.RawQuery = params.Encode()

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tmdb non-2xx status: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
