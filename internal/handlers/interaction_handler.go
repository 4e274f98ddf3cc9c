package handlers

import (
	"errors"
	"net/http"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InteractionHandler handles likes and comments on feed activities. The
// interaction log is the source of truth; the denormalized counters on the
// activity document follow it.
type InteractionHandler struct {
	interactionRepository repositories.InteractionRepository
	activityRepository    repositories.ActivityRepository
	userRepository        repositories.UserRepository
	logger                *zap.Logger
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(
	interactionRepo repositories.InteractionRepository,
	activityRepo repositories.ActivityRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) *InteractionHandler {
	return &InteractionHandler{
		interactionRepository: interactionRepo,
		activityRepository:    activityRepo,
		userRepository:        userRepo,
		logger:                logger,
	}
}

// RegisterPublicInteractionRoutes registers interaction routes that do not
// require authentication
func (h *InteractionHandler) RegisterPublicInteractionRoutes(g *echo.Group) {
	g.GET("/activities/:id/comments", h.ListComments)
}

// RegisterInteractionRoutes registers authenticated interaction routes
func (h *InteractionHandler) RegisterInteractionRoutes(g *echo.Group) {
	g.POST("/activities/:id/like", h.ToggleLike)
	g.POST("/activities/:id/comments", h.AddComment)
	g.POST("/activities/:id/counters/reconcile", h.ReconcileCounters)
}

// ToggleLike likes the activity, or removes the caller's existing like.
// The like lives in the interaction log; the activity's likes array is
// updated alongside it.
func (h *InteractionHandler) ToggleLike(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	activity, err := h.activityRepository.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.interactionRepository.GetLike(ctx, userID, activity.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existing != nil {
		if err := h.interactionRepository.DeleteLike(ctx, userID, activity.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.activityRepository.RemoveLike(ctx, activity.ID, userID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "unliked"})
	}

	like := &models.Interaction{
		UserID:          userID,
		ActivityID:      activity.ID,
		InteractionType: models.InteractionLike,
	}
	if err := h.interactionRepository.Create(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// The unique index caught a concurrent double-tap
			return echo.NewHTTPError(http.StatusConflict, "Activity already liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.activityRepository.AddLike(ctx, activity.ID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "liked"})
}

// AddComment appends a comment to an activity and bumps its comment counter
func (h *InteractionHandler) AddComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	activity, err := h.activityRepository.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment := &models.Interaction{
		UserID:          userID,
		ActivityID:      activity.ID,
		InteractionType: models.InteractionComment,
		CommentText:     req.CommentText,
	}
	if err := h.interactionRepository.Create(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.activityRepository.IncrementCommentCount(ctx, activity.ID); err != nil {
		h.logger.Error("comment counter increment failed",
			zap.String("activity_id", activity.ID.Hex()), zap.Error(err))
	}

	return c.JSON(http.StatusCreated, comment)
}

// ListComments returns an activity's comments, oldest first, with the
// commenter's compact profile attached
func (h *InteractionHandler) ListComments(c echo.Context) error {
	ctx := c.Request().Context()

	activity, err := h.activityRepository.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comments, err := h.interactionRepository.ListComments(ctx, activity.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userIDs := make([]uint, 0, len(comments))
	for i := range comments {
		userIDs = append(userIDs, comments[i].UserID)
	}
	users, err := compactUsers(h.userRepository, userIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load commenters")
	}

	type commentWithUser struct {
		models.Interaction
		User models.UserCompact `json:"user"`
	}
	enriched := make([]commentWithUser, 0, len(comments))
	for i := range comments {
		enriched = append(enriched, commentWithUser{
			Interaction: comments[i],
			User:        users[comments[i].UserID],
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"count": len(enriched), "comments": enriched})
}

// ReconcileCounters rederives an activity's likes array and comment count
// from the interaction log and writes them back. Used when the denormalized
// counters have drifted.
func (h *InteractionHandler) ReconcileCounters(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	ctx := c.Request().Context()

	activity, err := h.activityRepository.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	likers, err := h.interactionRepository.LikerIDs(ctx, activity.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	commentCount, err := h.interactionRepository.CountComments(ctx, activity.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.activityRepository.SetCounters(ctx, activity.ID, likers, int(commentCount)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"likes":         likers,
		"comment_count": commentCount,
	})
}
