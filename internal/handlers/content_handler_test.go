package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/culta-app/backend/internal/catalog"
	"github.com/culta-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type contentTestEnv struct {
	handler     *ContentHandler
	contentRepo *fakeContentRepo
	movies      *stubSource
	books       *stubSource
}

func newContentTestEnv(t *testing.T) *contentTestEnv {
	t.Helper()
	env := &contentTestEnv{
		contentRepo: newFakeContentRepo(),
		movies:      &stubSource{details: make(map[string]*catalog.Candidate)},
		books:       &stubSource{details: make(map[string]*catalog.Candidate)},
	}
	env.handler = NewContentHandler(env.contentRepo, env.movies, env.books, zap.NewNop())
	return env
}

type searchResponse struct {
	Count   int              `json:"count"`
	Results []models.Content `json:"results"`
}

func (env *contentTestEnv) search(t *testing.T, query string) *searchResponse {
	t.Helper()
	e := newTestEcho()
	c, rec := testCtx(e, http.MethodGet, "/api/v1/content/search"+query, "", 0)
	require.NoError(t, env.handler.SearchContent(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	return &resp
}

func TestSearchContentMergesStoreAndSources(t *testing.T) {
	env := newContentTestEnv(t)

	// one stored record the movie source also returns
	stored := &models.Content{ExternalID: "550", ContentType: models.ContentTypeMovie, Title: "Fight Club"}
	require.NoError(t, env.contentRepo.Create(context.Background(), stored))
	require.NoError(t, env.contentRepo.UpdateRatingStats(context.Background(), stored.ID, 8.5, 4))

	env.movies.searchResults = []catalog.Candidate{
		{ExternalID: "550", ContentType: models.ContentTypeMovie, Title: "Fight Club", Summary: "fresh summary"},
		{ExternalID: "603", ContentType: models.ContentTypeMovie, Title: "The Matrix"},
	}
	env.books.searchResults = []catalog.Candidate{
		{ExternalID: "vol-1", ContentType: models.ContentTypeBook, Title: "Fight Club (Novel)"},
	}

	resp := env.search(t, "?q=fight")
	assert.Equal(t, 3, resp.Count)

	byID := make(map[string]models.Content)
	for _, item := range resp.Results {
		byID[item.ExternalID] = item
	}

	merged := byID["550"]
	assert.Equal(t, "fresh summary", merged.Summary)
	assert.Equal(t, 8.5, merged.AvgRating, "the stored review-derived rating wins")
	assert.False(t, merged.ID.IsZero(), "the stored record keeps its id in the merged view")
	assert.True(t, byID["603"].ID.IsZero(), "external-only results are not persisted by a search")
}

func TestSearchContentToleratesSourceFailure(t *testing.T) {
	env := newContentTestEnv(t)

	env.movies.searchErr = errors.New("tmdb down")
	env.books.searchResults = []catalog.Candidate{
		{ExternalID: "vol-1", ContentType: models.ContentTypeBook, Title: "Some Book"},
	}

	resp := env.search(t, "?q=anything")
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "vol-1", resp.Results[0].ExternalID)
}

func TestSearchContentTypeRestriction(t *testing.T) {
	env := newContentTestEnv(t)

	env.movies.searchResults = []catalog.Candidate{{ExternalID: "1", ContentType: models.ContentTypeMovie, Title: "A Movie"}}
	env.books.searchResults = []catalog.Candidate{{ExternalID: "b", ContentType: models.ContentTypeBook, Title: "A Book"}}

	resp := env.search(t, "?q=a&type=movie")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, models.ContentTypeMovie, resp.Results[0].ContentType)
}

func TestSearchContentRatingFilter(t *testing.T) {
	env := newContentTestEnv(t)

	env.movies.searchResults = []catalog.Candidate{
		{ExternalID: "1", ContentType: models.ContentTypeMovie, Title: "Great", AvgRating: 8.1, TotalRatings: 10},
		{ExternalID: "2", ContentType: models.ContentTypeMovie, Title: "Meh", AvgRating: 4.0, TotalRatings: 10},
		{ExternalID: "3", ContentType: models.ContentTypeMovie, Title: "Unrated"},
	}

	resp := env.search(t, "?q=x&ratingMin=5")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "1", resp.Results[0].ExternalID)
}

func TestSearchContentRequiresQueryOrFilters(t *testing.T) {
	env := newContentTestEnv(t)
	e := newTestEcho()

	c, _ := testCtx(e, http.MethodGet, "/api/v1/content/search", "", 0)
	err := env.handler.SearchContent(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestSearchContentFilterOnlyBrowsesStore(t *testing.T) {
	env := newContentTestEnv(t)

	scifi := &models.Content{ExternalID: "603", ContentType: models.ContentTypeMovie, Title: "The Matrix", Genres: []string{"Bilim Kurgu"}}
	drama := &models.Content{ExternalID: "550", ContentType: models.ContentTypeMovie, Title: "Fight Club", Genres: []string{"Drama"}}
	require.NoError(t, env.contentRepo.Create(context.Background(), scifi))
	require.NoError(t, env.contentRepo.Create(context.Background(), drama))

	env.movies.searchErr = errors.New("should not be called")
	env.books.searchErr = errors.New("should not be called")

	resp := env.search(t, "?genres=bilim+kurgu")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "603", resp.Results[0].ExternalID)
	assert.False(t, resp.Results[0].ID.IsZero())
}

func (env *contentTestEnv) getContent(t *testing.T, id, query string) (*models.Content, int, error) {
	t.Helper()
	e := newTestEcho()
	c, rec := testCtx(e, http.MethodGet, "/api/v1/content/"+id+query, "", 0)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := env.handler.GetContent(c); err != nil {
		return nil, 0, err
	}

	var content models.Content
	decodeBody(t, rec, &content)
	return &content, rec.Code, nil
}

func TestGetContentPersistsExternalIDOnFirstAccess(t *testing.T) {
	env := newContentTestEnv(t)
	env.movies.details["27205"] = &catalog.Candidate{
		ExternalID:  "27205",
		ContentType: models.ContentTypeMovie,
		Title:       "Inception",
		AvgRating:   8.4,
	}

	content, code, err := env.getContent(t, "27205", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Inception", content.Title)
	assert.Zero(t, content.AvgRating, "external ratings never seed the stored record")

	stored, err := env.contentRepo.GetByExternalID(context.Background(), "27205")
	require.NoError(t, err)
	assert.Equal(t, "Inception", stored.Title)
}

func TestGetContentRefreshKeepsImageAndRatings(t *testing.T) {
	env := newContentTestEnv(t)

	stored := &models.Content{
		ExternalID:  "550",
		ContentType: models.ContentTypeMovie,
		Title:       "Fight Club",
		ImageURL:    "https://img.example/original.jpg",
	}
	require.NoError(t, env.contentRepo.Create(context.Background(), stored))
	require.NoError(t, env.contentRepo.UpdateRatingStats(context.Background(), stored.ID, 7.0, 3))

	env.movies.details["550"] = &catalog.Candidate{
		ExternalID:  "550",
		ContentType: models.ContentTypeMovie,
		Title:       "Fight Club",
		Director:    "David Fincher",
		ImageURL:    "https://external.example/new.jpg",
	}

	content, code, err := env.getContent(t, "550", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "David Fincher", content.Director)
	assert.Equal(t, "https://img.example/original.jpg", content.ImageURL)
	assert.Equal(t, 7.0, content.AvgRating)
}

func TestGetContentRefreshFailureServesStored(t *testing.T) {
	env := newContentTestEnv(t)

	stored := &models.Content{ExternalID: "550", ContentType: models.ContentTypeMovie, Title: "Fight Club"}
	require.NoError(t, env.contentRepo.Create(context.Background(), stored))
	env.movies.detailsErr = errors.New("tmdb down")

	content, code, err := env.getContent(t, "550", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Fight Club", content.Title)
}

func TestGetContentBookFallback(t *testing.T) {
	env := newContentTestEnv(t)
	// a non-numeric id tries the book catalog first
	env.books.details["zyTC"] = &catalog.Candidate{
		ExternalID:  "zyTC",
		ContentType: models.ContentTypeBook,
		Title:       "A Book",
	}

	content, code, err := env.getContent(t, "zyTC", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.ContentTypeBook, content.ContentType)
}

func TestGetContentExplicitType(t *testing.T) {
	env := newContentTestEnv(t)
	// numeric-looking id that actually lives in the book catalog
	env.books.details["12345"] = &catalog.Candidate{
		ExternalID:  "12345",
		ContentType: models.ContentTypeBook,
		Title:       "Numeric Book",
	}

	content, _, err := env.getContent(t, "12345", "?type=book")
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeBook, content.ContentType)
}

func TestGetContentUnresolvable(t *testing.T) {
	env := newContentTestEnv(t)

	_, _, err := env.getContent(t, "nothing-anywhere", "")
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestAddContentDuplicate(t *testing.T) {
	env := newContentTestEnv(t)
	e := newTestEcho()

	body := `{"external_id": "m1", "content_type": "movie", "title": "Manual Entry"}`
	c, rec := testCtx(e, http.MethodPost, "/api/v1/content/add", body, 1)
	require.NoError(t, env.handler.AddContent(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, _ = testCtx(e, http.MethodPost, "/api/v1/content/add", body, 1)
	err := env.handler.AddContent(c)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
}
