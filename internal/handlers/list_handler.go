package handlers

import (
	"errors"
	"net/http"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListHandler handles named user lists
type ListHandler struct {
	listRepository    repositories.ListRepository
	contentRepository repositories.ContentRepository
}

// NewListHandler creates a new ListHandler
func NewListHandler(listRepo repositories.ListRepository, contentRepo repositories.ContentRepository) *ListHandler {
	return &ListHandler{
		listRepository:    listRepo,
		contentRepository: contentRepo,
	}
}

// RegisterListRoutes registers authenticated list routes
func (h *ListHandler) RegisterListRoutes(g *echo.Group) {
	g.POST("/lists", h.CreateList)
	g.GET("/lists", h.GetLists)
	g.GET("/lists/:id", h.GetList)
	g.PUT("/lists/:id/content", h.UpdateListContent)
}

// CreateList creates a new named list for the caller. List names are
// unique per user.
func (h *ListHandler) CreateList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list := &models.List{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		ContentIDs:  []primitive.ObjectID{},
	}

	if err := h.listRepository.Create(c.Request().Context(), list); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "You already have a list with this name")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, list)
}

// GetLists returns all of the caller's lists
func (h *ListHandler) GetLists(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	lists, err := h.listRepository.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": len(lists), "lists": lists})
}

// GetList returns one of the caller's lists with content summaries attached
func (h *ListHandler) GetList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	list, err := h.listRepository.GetByIDAndUser(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "List not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summaries, err := h.contentRepository.GetSummariesByIDs(ctx, list.ContentIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load content summaries")
	}

	items := make([]models.ContentSummary, 0, len(list.ContentIDs))
	for _, id := range list.ContentIDs {
		if summary, ok := summaries[id]; ok {
			items = append(items, summary)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"list": list, "items": items})
}

// UpdateListContent adds a content item to one of the caller's lists, or
// removes it. Adding is idempotent.
func (h *ListHandler) UpdateListContent(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateListContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	list, err := h.listRepository.GetByIDAndUser(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "List not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	content, err := resolveContent(ctx, h.contentRepository, req.ContentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Action == "add" {
		err = h.listRepository.AddContent(ctx, list.ID, userID, content.ID)
	} else {
		err = h.listRepository.RemoveContent(ctx, list.ID, userID, content.ID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := h.listRepository.GetByIDAndUser(ctx, c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
