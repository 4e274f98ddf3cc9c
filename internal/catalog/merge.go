package catalog

import (
	"strconv"
	"strings"

	"github.com/culta-app/backend/internal/models"
)

// SearchFilters are the optional structural filters of a content search.
// Genre and year are pushed down to the store query as well; rating is
// applied post-merge only, against the merged avg_rating.
type SearchFilters struct {
	Genres    []string
	YearMin   string
	YearMax   string
	RatingMin *float64
	RatingMax *float64
}

// Empty reports whether no filter is set
func (f SearchFilters) Empty() bool {
	return len(f.Genres) == 0 && f.YearMin == "" && f.YearMax == "" &&
		f.RatingMin == nil && f.RatingMax == nil
}

// MergeResults builds one deduplicated result list keyed by external id.
// Local store matches seed the map; every external candidate with the same
// external id overlays its fields onto the stored entry (external wins
// field-by-field, empty external fields never erase stored ones) or is
// inserted fresh when absent locally. Order is stable: stored records first,
// then external-only candidates in source order.
func MergeResults(local []models.Content, external []Candidate) []models.Content {
	byID := make(map[string]int, len(local))
	merged := make([]models.Content, 0, len(local)+len(external))

	for _, item := range local {
		byID[item.ExternalID] = len(merged)
		merged = append(merged, item)
	}

	for _, cand := range external {
		if i, ok := byID[cand.ExternalID]; ok {
			overlay(&merged[i], cand)
			continue
		}
		item := cand.ToContent()
		// external-only entries carry the source's rating so post-merge
		// rating filters see them
		item.AvgRating = cand.AvgRating
		item.TotalRatings = cand.TotalRatings
		byID[cand.ExternalID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

// overlay copies the non-empty fields of an external candidate onto a
// stored record. The stored image URL survives when the candidate has none.
func overlay(item *models.Content, cand Candidate) {
	if cand.Title != "" {
		item.Title = cand.Title
	}
	if cand.ContentType != "" {
		item.ContentType = cand.ContentType
	}
	if cand.Summary != "" {
		item.Summary = cand.Summary
	}
	if len(cand.Genres) > 0 {
		item.Genres = cand.Genres
	}
	if cand.ReleaseDate != "" {
		item.ReleaseDate = cand.ReleaseDate
	}
	if cand.PublishedDate != "" {
		item.PublishedDate = cand.PublishedDate
	}
	if cand.Director != "" {
		item.Director = cand.Director
	}
	if cand.Author != "" {
		item.Author = cand.Author
	}
	if cand.Runtime > 0 {
		item.Runtime = cand.Runtime
	}
	if cand.PageCount > 0 {
		item.PageCount = cand.PageCount
	}
	if cand.ImageURL != "" {
		item.ImageURL = cand.ImageURL
	}
	if cand.TotalRatings > 0 || cand.AvgRating > 0 {
		item.AvgRating = cand.AvgRating
		item.TotalRatings = cand.TotalRatings
	}
}

// ApplyFilters filters a merged result list. Genre matching is
// case-insensitive with OR semantics; missing ratings count as 0; the year
// comes from the first four characters of the release or published date.
func ApplyFilters(items []models.Content, f SearchFilters) []models.Content {
	if f.Empty() {
		return items
	}

	yearMin := parseYear(f.YearMin)
	yearMax := parseYear(f.YearMax)

	filtered := make([]models.Content, 0, len(items))
	for _, item := range items {
		if f.RatingMin != nil && item.AvgRating < *f.RatingMin {
			continue
		}
		if f.RatingMax != nil && item.AvgRating > *f.RatingMax {
			continue
		}
		year := itemYear(item)
		if yearMin > 0 && year < yearMin {
			continue
		}
		if yearMax > 0 && year > yearMax {
			continue
		}
		if len(f.Genres) > 0 && !hasAnyGenre(item.Genres, f.Genres) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func itemYear(item models.Content) int {
	date := item.ReleaseDate
	if date == "" {
		date = item.PublishedDate
	}
	if len(date) < 4 {
		return 0
	}
	return parseYear(date[:4])
}

func parseYear(s string) int {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return year
}

func hasAnyGenre(itemGenres, required []string) bool {
	for _, want := range required {
		for _, have := range itemGenres {
			if strings.EqualFold(strings.TrimSpace(want), have) {
				return true
			}
		}
	}
	return false
}

// InferContentType guesses the source of an untyped external id from its
// shape: purely numeric ids are TMDB movie ids, everything else (Open
// Library style prefixes, hyphenated volume ids) is a book id. Callers that
// know the type should pass it explicitly instead.
func InferContentType(externalID string) string {
	if _, err := strconv.Atoi(externalID); err == nil {
		return models.ContentTypeMovie
	}
	return models.ContentTypeBook
}
