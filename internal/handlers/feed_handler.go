package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultFeedLimit = 15

// FeedHandler assembles the activity feed: a page of the activity ledger
// with actor and content projections joined in
type FeedHandler struct {
	activityRepository repositories.ActivityRepository
	contentRepository  repositories.ContentRepository
	userRepository     repositories.UserRepository
	followRepository   repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	activityRepo repositories.ActivityRepository,
	contentRepo repositories.ContentRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
) *FeedHandler {
	return &FeedHandler{
		activityRepository: activityRepo,
		contentRepository:  contentRepo,
		userRepository:     userRepo,
		followRepository:   followRepo,
	}
}

// RegisterFeedRoutes registers authenticated feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// feedActivity is one enriched feed item
type feedActivity struct {
	models.Activity
	User    models.UserCompact    `json:"user"`
	Content models.ContentSummary `json:"content"`
}

// GetFeed returns a page of the activity feed, newest first. The default
// scope is global; scope=following narrows it to the users the caller
// follows.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultFeedLimit
	}

	query := repositories.FeedQuery{
		Skip:  int64(page-1) * int64(limit),
		Limit: int64(limit),
	}

	switch scope := c.QueryParam("scope"); scope {
	case "", "global":
		// leave UserIDs nil
	case "following":
		followingIDs, err := h.followRepository.GetFollowingIDs(userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve followed users")
		}
		// Include the caller's own activities alongside the followed ones
		query.UserIDs = append(followingIDs, userID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid feed scope")
	}

	ctx := c.Request().Context()

	activities, err := h.activityRepository.List(ctx, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.activityRepository.Count(ctx, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userIDs := make([]uint, 0, len(activities))
	contentIDs := make([]primitive.ObjectID, 0, len(activities))
	for i := range activities {
		userIDs = append(userIDs, activities[i].UserID)
		contentIDs = append(contentIDs, activities[i].ContentID)
	}

	users, err := compactUsers(h.userRepository, userIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load feed actors")
	}
	summaries, err := h.contentRepository.GetSummariesByIDs(ctx, contentIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load feed content")
	}

	enriched := make([]feedActivity, 0, len(activities))
	for i := range activities {
		enriched = append(enriched, feedActivity{
			Activity: activities[i],
			User:     users[activities[i].UserID],
			Content:  summaries[activities[i].ContentID],
		})
	}

	pages := int(math.Ceil(float64(total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"activities": enriched,
		"page":       page,
		"pages":      pages,
		"total":      total,
	})
}
