package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryHandler handles personal library entries (watched / to-watch /
// read / to-read statuses)
type LibraryHandler struct {
	libraryRepository  repositories.LibraryRepository
	activityRepository repositories.ActivityRepository
	contentRepository  repositories.ContentRepository
}

// NewLibraryHandler creates a new LibraryHandler
func NewLibraryHandler(libraryRepo repositories.LibraryRepository, activityRepo repositories.ActivityRepository, contentRepo repositories.ContentRepository) *LibraryHandler {
	return &LibraryHandler{
		libraryRepository:  libraryRepo,
		activityRepository: activityRepo,
		contentRepository:  contentRepo,
	}
}

// RegisterLibraryRoutes registers authenticated library routes
func (h *LibraryHandler) RegisterLibraryRoutes(g *echo.Group) {
	g.POST("/library/add", h.AddToLibrary)
}

// RegisterPublicLibraryRoutes registers public library routes
func (h *LibraryHandler) RegisterPublicLibraryRoutes(g *echo.Group) {
	g.GET("/library/:userId", h.GetLibrary)
}

// AddToLibrary sets the caller's list status for a content item. The entry
// is upserted, but every call appends a fresh LIST_ADD activity so the feed
// keeps the full status history.
func (h *LibraryHandler) AddToLibrary(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.AddLibraryEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	content, err := resolveContent(ctx, h.contentRepository, req.ContentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entry, err := h.libraryRepository.GetByUserAndContent(ctx, userID, content.ID)
	isNew := false
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		entry = &models.LibraryEntry{
			UserID:     userID,
			ContentID:  content.ID,
			ListStatus: req.ListStatus,
			UserRating: req.UserRating,
		}
		if err := h.libraryRepository.Create(ctx, entry); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		isNew = true
	} else {
		entry.ListStatus = req.ListStatus
		if req.UserRating != nil {
			entry.UserRating = req.UserRating
		}
		if err := h.libraryRepository.Update(ctx, entry); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	activity := &models.Activity{
		UserID:       userID,
		ContentID:    content.ID,
		ActivityType: models.ActivityListAdd,
		ActionText:   models.ListAddActionText(req.ListStatus),
		ListStatus:   req.ListStatus,
	}
	if err := h.activityRepository.Create(c.Request().Context(), activity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record activity")
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"entry": entry, "activity": activity})
}

// GetLibrary returns a user's library entries, optionally filtered by
// status, with the content summaries attached
func (h *LibraryHandler) GetLibrary(c echo.Context) error {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	status := c.QueryParam("status")
	if status != "" {
		if _, ok := map[string]bool{
			models.StatusWatched: true,
			models.StatusToWatch: true,
			models.StatusRead:    true,
			models.StatusToRead:  true,
		}[status]; !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
		}
	}

	ctx := c.Request().Context()

	entries, err := h.libraryRepository.ListByUser(ctx, uint(targetID), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	contentIDs := make([]primitive.ObjectID, 0, len(entries))
	for i := range entries {
		contentIDs = append(contentIDs, entries[i].ContentID)
	}
	summaries, err := h.contentRepository.GetSummariesByIDs(ctx, contentIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load content summaries")
	}

	type entryWithContent struct {
		models.LibraryEntry
		Content models.ContentSummary `json:"content"`
	}
	enriched := make([]entryWithContent, 0, len(entries))
	for i := range entries {
		enriched = append(enriched, entryWithContent{
			LibraryEntry: entries[i],
			Content:      summaries[entries[i].ContentID],
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"count": len(enriched), "entries": enriched})
}
