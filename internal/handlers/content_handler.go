package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/culta-app/backend/internal/catalog"
	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const searchResultLimit = 50

// ContentHandler handles catalog search, resolution and ingestion
type ContentHandler struct {
	contentRepository repositories.ContentRepository
	movies            catalog.Source
	books             catalog.Source
	logger            *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentRepo repositories.ContentRepository, movies, books catalog.Source, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contentRepository: contentRepo,
		movies:            movies,
		books:             books,
		logger:            logger,
	}
}

// RegisterContentRoutes registers public content routes
func (h *ContentHandler) RegisterContentRoutes(g *echo.Group) {
	g.GET("/content/search", h.SearchContent)
	g.GET("/content/:id", h.GetContent)
}

// RegisterProtectedContentRoutes registers authenticated content routes
func (h *ContentHandler) RegisterProtectedContentRoutes(g *echo.Group) {
	g.POST("/content/add", h.AddContent)
}

// SearchContent queries the external catalogs and the local store in one
// pass and returns a single deduplicated result list. A source failure is
// logged and tolerated; the other source and the store still answer.
// Without a free-text query the search browses the persisted store with the
// structural filters alone, skipping the external sources.
func (h *ContentHandler) SearchContent(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))

	filters, err := parseSearchFilters(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if query == "" && filters.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query or filters")
	}

	contentType := c.QueryParam("type")
	if contentType != "" && contentType != models.ContentTypeMovie && contentType != models.ContentTypeBook {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid content type")
	}

	ctx := c.Request().Context()

	var external []catalog.Candidate
	if query != "" {
		var (
			wg             sync.WaitGroup
			movieResults   []catalog.Candidate
			bookResults    []catalog.Candidate
			movieErr, bErr error
		)
		if contentType == "" || contentType == models.ContentTypeMovie {
			wg.Add(1)
			go func() {
				defer wg.Done()
				movieResults, movieErr = h.movies.Search(ctx, query)
			}()
		}
		if contentType == "" || contentType == models.ContentTypeBook {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bookResults, bErr = h.books.Search(ctx, query)
			}()
		}
		wg.Wait()

		if movieErr != nil {
			h.logger.Warn("movie catalog search failed", zap.String("query", query), zap.Error(movieErr))
		}
		if bErr != nil {
			h.logger.Warn("book catalog search failed", zap.String("query", query), zap.Error(bErr))
		}

		external = make([]catalog.Candidate, 0, len(movieResults)+len(bookResults))
		external = append(external, movieResults...)
		external = append(external, bookResults...)
	}

	// With a free-text query the store contributes only records the external
	// sources surfaced; a filter-only browse queries it unrestricted. Genre
	// and year narrowing is pushed down either way.
	var externalIDs []string
	if query != "" {
		externalIDs = make([]string, 0, len(external))
		for _, cand := range external {
			externalIDs = append(externalIDs, cand.ExternalID)
		}
	}

	local, err := h.contentRepository.Search(ctx, repositories.ContentQuery{
		Genres:      filters.Genres,
		YearMin:     filters.YearMin,
		YearMax:     filters.YearMax,
		ExternalIDs: externalIDs,
	}, searchResultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query content store")
	}

	merged := catalog.MergeResults(local, external)
	merged = catalog.ApplyFilters(merged, filters)

	return c.JSON(http.StatusOK, echo.Map{"count": len(merged), "results": merged})
}

func parseSearchFilters(c echo.Context) (catalog.SearchFilters, error) {
	var f catalog.SearchFilters

	if genres := c.QueryParam("genres"); genres != "" {
		for _, g := range strings.Split(genres, ",") {
			if g = strings.TrimSpace(g); g != "" {
				f.Genres = append(f.Genres, g)
			}
		}
	}
	f.YearMin = c.QueryParam("yearMin")
	f.YearMax = c.QueryParam("yearMax")

	if raw := c.QueryParam("ratingMin"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, errors.New("ratingMin must be a number")
		}
		f.RatingMin = &v
	}
	if raw := c.QueryParam("ratingMax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, errors.New("ratingMax must be a number")
		}
		f.RatingMax = &v
	}
	return f, nil
}

// GetContent resolves a content identifier to a stored record. The id may
// be a store id or an external catalog id; external ids that are not yet
// stored are fetched from their catalog and persisted on first access.
func (h *ContentHandler) GetContent(c echo.Context) error {
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing content ID")
	}
	ctx := c.Request().Context()

	if _, err := primitive.ObjectIDFromHex(id); err == nil {
		content, err := h.contentRepository.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Content not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, content)
	}

	contentType := c.QueryParam("type")
	if contentType != "" && contentType != models.ContentTypeMovie && contentType != models.ContentTypeBook {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid content type")
	}

	stored, err := h.contentRepository.GetByExternalID(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if stored != nil {
		// Refresh descriptive fields from the catalog; the stored image and
		// the review-derived rating fields are never overwritten here.
		cand, fetchErr := h.sourceFor(stored.ContentType).GetDetails(ctx, id)
		if fetchErr != nil {
			h.logger.Warn("catalog detail refresh failed",
				zap.String("external_id", id), zap.Error(fetchErr))
			return c.JSON(http.StatusOK, stored)
		}
		details := cand.ToContent()
		updated, err := h.contentRepository.UpdateDetails(ctx, stored.ID, &details)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, updated)
	}

	cand, err := h.resolveExternal(c, id, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Content not found in any catalog")
	}

	content := cand.ToContent()
	if err := h.contentRepository.Create(ctx, &content); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost a race with a concurrent first access
			if existing, getErr := h.contentRepository.GetByExternalID(ctx, content.ExternalID); getErr == nil {
				return c.JSON(http.StatusOK, existing)
			}
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, content)
}

// resolveExternal fetches details for an unstored external id. When the
// caller did not state the type, the id shape picks the first catalog to
// try and the other one serves as fallback.
func (h *ContentHandler) resolveExternal(c echo.Context, externalID, contentType string) (*catalog.Candidate, error) {
	ctx := c.Request().Context()

	if contentType != "" {
		return h.sourceFor(contentType).GetDetails(ctx, externalID)
	}

	first := catalog.InferContentType(externalID)
	cand, err := h.sourceFor(first).GetDetails(ctx, externalID)
	if err == nil {
		return cand, nil
	}
	h.logger.Debug("primary catalog miss, trying fallback",
		zap.String("external_id", externalID), zap.String("tried", first))

	if first == models.ContentTypeMovie {
		return h.books.GetDetails(ctx, externalID)
	}
	return h.movies.GetDetails(ctx, externalID)
}

func (h *ContentHandler) sourceFor(contentType string) catalog.Source {
	if contentType == models.ContentTypeMovie {
		return h.movies
	}
	return h.books
}

// AddContent persists a content record supplied by the client directly,
// for items the external catalogs do not carry
func (h *ContentHandler) AddContent(c echo.Context) error {
	var req models.AddContentRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	content := &models.Content{
		ExternalID:    req.ExternalID,
		ContentType:   req.ContentType,
		Title:         req.Title,
		Summary:       req.Summary,
		Genres:        req.Genres,
		ReleaseDate:   req.ReleaseDate,
		PublishedDate: req.PublishedDate,
		Director:      req.Director,
		Author:        req.Author,
		Runtime:       req.Runtime,
		PageCount:     req.PageCount,
		ImageURL:      req.ImageURL,
	}

	if err := h.contentRepository.Create(c.Request().Context(), content); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "Content with this external ID already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, content)
}
