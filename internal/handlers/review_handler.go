package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReviewHandler handles review submission, listing and deletion, and owns
// the synchronous rating recompute that keeps content avg_rating and
// total_ratings in step with the review set
type ReviewHandler struct {
	reviewRepository   repositories.ReviewRepository
	activityRepository repositories.ActivityRepository
	contentRepository  repositories.ContentRepository
	userRepository     repositories.UserRepository
	logger             *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	reviewRepo repositories.ReviewRepository,
	activityRepo repositories.ActivityRepository,
	contentRepo repositories.ContentRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviewRepository:   reviewRepo,
		activityRepository: activityRepo,
		contentRepository:  contentRepo,
		userRepository:     userRepo,
		logger:             logger,
	}
}

// RegisterPublicReviewRoutes registers review routes that do not require authentication
func (h *ReviewHandler) RegisterPublicReviewRoutes(g *echo.Group) {
	g.GET("/reviews/:id", h.ListReviews)
}

// RegisterReviewRoutes registers authenticated review routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group) {
	g.POST("/reviews", h.SubmitReview)
	g.DELETE("/reviews/:id", h.DeleteReview)
}

// SubmitReview creates the caller's review for a content item, or updates
// it if one already exists. The content rating stats are recomputed in the
// same request, and the review's feed activity is created or rewritten.
func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Comment == "" && req.Rating == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A review needs a comment or a rating")
	}

	ctx := c.Request().Context()

	content, err := resolveContent(ctx, h.contentRepository, req.ContentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	review, err := h.reviewRepository.GetByUserAndContent(ctx, userID, content.ID)
	isNew := false
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		review = &models.Review{
			UserID:    userID,
			ContentID: content.ID,
			Comment:   req.Comment,
			Rating:    req.Rating,
		}
		if err := h.reviewRepository.Create(ctx, review); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return echo.NewHTTPError(http.StatusConflict, "Review already exists for this content")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		isNew = true
	} else {
		// Partial resubmissions merge into the stored review: an omitted
		// field keeps its previous value, a rating is never silently dropped.
		if req.Comment != "" {
			review.Comment = req.Comment
		}
		if req.Rating != nil {
			review.Rating = req.Rating
		}
		if err := h.reviewRepository.Update(ctx, review); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := h.recomputeRating(ctx, content.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to recompute content rating")
	}

	activity, err := h.upsertReviewActivity(ctx, userID, content.ID, review)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record activity")
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"review": review, "activity": activity})
}

// upsertReviewActivity keeps a single feed entry per review: the first
// submission creates it, every edit rewrites its type and text in place so
// the likes and comments it collected survive the edit.
func (h *ReviewHandler) upsertReviewActivity(ctx context.Context, userID uint, contentID primitive.ObjectID, review *models.Review) (*models.Activity, error) {
	actionText, activityType := models.ReviewActionText(review.Comment, review.Rating)

	activity, err := h.activityRepository.GetByUserAndReview(ctx, userID, review.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		activity = &models.Activity{
			UserID:        userID,
			ContentID:     contentID,
			ActivityType:  activityType,
			RelatedReview: &review.ID,
			ActionText:    actionText,
		}
		if err := h.activityRepository.Create(ctx, activity); err != nil {
			return nil, err
		}
		return activity, nil
	}

	if err := h.activityRepository.UpdateAction(ctx, activity.ID, activityType, actionText); err != nil {
		return nil, err
	}
	activity.ActivityType = activityType
	activity.ActionText = actionText
	return activity, nil
}

// recomputeRating rederives avg_rating and total_ratings from the current
// review set. The average is rounded to one decimal place.
func (h *ReviewHandler) recomputeRating(ctx context.Context, contentID primitive.ObjectID) error {
	sum, count, err := h.reviewRepository.RatingStats(ctx, contentID)
	if err != nil {
		return err
	}
	avg := 0.0
	if count > 0 {
		avg = math.Round(float64(sum)/float64(count)*10) / 10
	}
	return h.contentRepository.UpdateRatingStats(ctx, contentID, avg, count)
}

// ListReviews returns all reviews of a content item, newest first, with the
// reviewer's compact profile attached. The path segment accepts a store id
// or an external catalog id.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	content, err := resolveContent(ctx, h.contentRepository, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reviews, err := h.reviewRepository.ListByContent(ctx, content.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userIDs := make([]uint, 0, len(reviews))
	for i := range reviews {
		userIDs = append(userIDs, reviews[i].UserID)
	}
	users, err := compactUsers(h.userRepository, userIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load reviewers")
	}

	type reviewWithUser struct {
		models.Review
		User models.UserCompact `json:"user"`
	}
	enriched := make([]reviewWithUser, 0, len(reviews))
	for i := range reviews {
		enriched = append(enriched, reviewWithUser{
			Review: reviews[i],
			User:   users[reviews[i].UserID],
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"count": len(enriched), "reviews": enriched})
}

// DeleteReview removes the caller's review and recomputes the content
// rating it contributed to. The review's feed activity stays in the feed.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	deleted, err := h.reviewRepository.Delete(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Review not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if deleted.Rating != nil {
		if err := h.recomputeRating(ctx, deleted.ContentID); err != nil {
			h.logger.Error("rating recompute after review delete failed",
				zap.String("content_id", deleted.ContentID.Hex()), zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Review deleted"})
}
