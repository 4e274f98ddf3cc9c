package handlers

import (
	"context"
	"net/http"

	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID extracts the authenticated user's id from the JWT claims
// set by the auth middleware.
func currentUserID(c echo.Context) (uint, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token claims")
	}
	return claims.UserID, nil
}

// resolveContent looks a content reference up in the store. The reference
// may be a store hex id or an external catalog id; either way the record
// must already be persisted.
func resolveContent(ctx context.Context, repo repositories.ContentRepository, ref string) (*models.Content, error) {
	if _, err := primitive.ObjectIDFromHex(ref); err == nil {
		return repo.GetByID(ctx, ref)
	}
	return repo.GetByExternalID(ctx, ref)
}

// compactUsers loads the compact projections of a set of user ids,
// keyed by id. Missing users are simply absent from the map.
func compactUsers(repo repositories.UserRepository, ids []uint) (map[uint]models.UserCompact, error) {
	users, err := repo.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	compacts := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		compacts[users[i].ID] = users[i].ToCompact()
	}
	return compacts, nil
}
