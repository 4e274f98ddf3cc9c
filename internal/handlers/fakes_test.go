package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/culta-app/backend/internal/catalog"
	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They mirror the store
// semantics the Mongo and Postgres implementations provide, including the
// uniqueness constraints the indexes enforce.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	seen := make(map[uint]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeFollowRepo struct {
	follows map[[2]uint]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{follows: make(map[[2]uint]bool)}
}

func (r *fakeFollowRepo) CreateFollow(follow *models.Follow) error {
	key := [2]uint{follow.FollowerID, follow.FollowingID}
	if r.follows[key] {
		return repositories.ErrDuplicate
	}
	r.follows[key] = true
	return nil
}

func (r *fakeFollowRepo) DeleteFollow(followerID, followingID uint) error {
	key := [2]uint{followerID, followingID}
	if !r.follows[key] {
		return repositories.ErrNotFound
	}
	delete(r.follows, key)
	return nil
}

func (r *fakeFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	return r.follows[[2]uint{followerID, followingID}], nil
}

func (r *fakeFollowRepo) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	for key := range r.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) GetFollowersCount(userID uint) (int64, error) {
	var count int64
	for key := range r.follows {
		if key[1] == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) GetFollowingCount(userID uint) (int64, error) {
	var count int64
	for key := range r.follows {
		if key[0] == userID {
			count++
		}
	}
	return count, nil
}

type fakeContentRepo struct {
	contents map[primitive.ObjectID]*models.Content
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{contents: make(map[primitive.ObjectID]*models.Content)}
}

func (r *fakeContentRepo) Create(ctx context.Context, content *models.Content) error {
	for _, c := range r.contents {
		if c.ExternalID == content.ExternalID || c.Title == content.Title {
			return repositories.ErrDuplicate
		}
	}
	content.ID = primitive.NewObjectID()
	content.CreatedAt = time.Now()
	content.UpdatedAt = content.CreatedAt
	stored := *content
	r.contents[content.ID] = &stored
	return nil
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id string) (*models.Content, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	if c, ok := r.contents[objID]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeContentRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Content, error) {
	for _, c := range r.contents {
		if c.ExternalID == externalID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeContentRepo) Search(ctx context.Context, q repositories.ContentQuery, limit int64) ([]models.Content, error) {
	var out []models.Content
	for _, c := range r.contents {
		if q.ExternalIDs != nil {
			found := false
			for _, id := range q.ExternalIDs {
				if c.ExternalID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeContentRepo) UpdateDetails(ctx context.Context, id primitive.ObjectID, details *models.Content) (*models.Content, error) {
	stored, ok := r.contents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	stored.Title = details.Title
	stored.Summary = details.Summary
	stored.Genres = details.Genres
	stored.ReleaseDate = details.ReleaseDate
	stored.PublishedDate = details.PublishedDate
	stored.Director = details.Director
	stored.Author = details.Author
	stored.Runtime = details.Runtime
	stored.PageCount = details.PageCount
	stored.UpdatedAt = time.Now()
	copied := *stored
	return &copied, nil
}

func (r *fakeContentRepo) UpdateRatingStats(ctx context.Context, id primitive.ObjectID, avgRating float64, totalRatings int) error {
	stored, ok := r.contents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.AvgRating = avgRating
	stored.TotalRatings = totalRatings
	return nil
}

func (r *fakeContentRepo) GetSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ContentSummary, error) {
	out := make(map[primitive.ObjectID]models.ContentSummary)
	for _, id := range ids {
		if c, ok := r.contents[id]; ok {
			out[id] = c.ToSummary()
		}
	}
	return out, nil
}

type fakeReviewRepo struct {
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.ContentID == review.ContentID {
			return repositories.ErrDuplicate
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	stored := *review
	r.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *models.Review) error {
	stored, ok := r.reviews[review.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Comment = review.Comment
	stored.Rating = review.Rating
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeReviewRepo) GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.Review, error) {
	for _, review := range r.reviews {
		if review.UserID == userID && review.ContentID == contentID {
			copied := *review
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeReviewRepo) ListByContent(ctx context.Context, contentID primitive.ObjectID) ([]models.Review, error) {
	var out []models.Review
	for _, review := range r.reviews {
		if review.ContentID == contentID {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id string, userID uint) (*models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	review, ok := r.reviews[objID]
	if !ok || review.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	delete(r.reviews, objID)
	return review, nil
}

func (r *fakeReviewRepo) RatingStats(ctx context.Context, contentID primitive.ObjectID) (int, int, error) {
	sum, count := 0, 0
	for _, review := range r.reviews {
		if review.ContentID == contentID && review.Rating != nil {
			sum += *review.Rating
			count++
		}
	}
	return sum, count, nil
}

type fakeActivityRepo struct {
	activities []*models.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = activity.CreatedAt
	if activity.Likes == nil {
		activity.Likes = []uint{}
	}
	stored := *activity
	r.activities = append(r.activities, &stored)
	return nil
}

func (r *fakeActivityRepo) find(id primitive.ObjectID) *models.Activity {
	for _, activity := range r.activities {
		if activity.ID == id {
			return activity
		}
	}
	return nil
}

func (r *fakeActivityRepo) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	if activity := r.find(objID); activity != nil {
		copied := *activity
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeActivityRepo) GetByUserAndReview(ctx context.Context, userID uint, reviewID primitive.ObjectID) (*models.Activity, error) {
	for _, activity := range r.activities {
		if activity.UserID == userID && activity.RelatedReview != nil && *activity.RelatedReview == reviewID {
			copied := *activity
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeActivityRepo) UpdateAction(ctx context.Context, id primitive.ObjectID, activityType, actionText string) error {
	activity := r.find(id)
	if activity == nil {
		return repositories.ErrNotFound
	}
	activity.ActivityType = activityType
	activity.ActionText = actionText
	activity.UpdatedAt = time.Now()
	return nil
}

func (r *fakeActivityRepo) AddLike(ctx context.Context, id primitive.ObjectID, userID uint) error {
	activity := r.find(id)
	if activity == nil {
		return repositories.ErrNotFound
	}
	for _, existing := range activity.Likes {
		if existing == userID {
			return nil
		}
	}
	activity.Likes = append(activity.Likes, userID)
	return nil
}

func (r *fakeActivityRepo) RemoveLike(ctx context.Context, id primitive.ObjectID, userID uint) error {
	activity := r.find(id)
	if activity == nil {
		return repositories.ErrNotFound
	}
	kept := activity.Likes[:0]
	for _, existing := range activity.Likes {
		if existing != userID {
			kept = append(kept, existing)
		}
	}
	activity.Likes = kept
	return nil
}

func (r *fakeActivityRepo) IncrementCommentCount(ctx context.Context, id primitive.ObjectID) error {
	activity := r.find(id)
	if activity == nil {
		return repositories.ErrNotFound
	}
	activity.CommentCount++
	return nil
}

func (r *fakeActivityRepo) SetCounters(ctx context.Context, id primitive.ObjectID, likes []uint, commentCount int) error {
	activity := r.find(id)
	if activity == nil {
		return repositories.ErrNotFound
	}
	if likes == nil {
		likes = []uint{}
	}
	activity.Likes = likes
	activity.CommentCount = commentCount
	return nil
}

func (r *fakeActivityRepo) matches(activity *models.Activity, q repositories.FeedQuery) bool {
	if q.UserIDs == nil {
		return true
	}
	for _, id := range q.UserIDs {
		if activity.UserID == id {
			return true
		}
	}
	return false
}

func (r *fakeActivityRepo) List(ctx context.Context, q repositories.FeedQuery) ([]models.Activity, error) {
	// newest first
	var filtered []models.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		if r.matches(r.activities[i], q) {
			filtered = append(filtered, *r.activities[i])
		}
	}
	if q.Skip >= int64(len(filtered)) {
		return nil, nil
	}
	filtered = filtered[q.Skip:]
	if q.Limit > 0 && q.Limit < int64(len(filtered)) {
		filtered = filtered[:q.Limit]
	}
	return filtered, nil
}

func (r *fakeActivityRepo) Count(ctx context.Context, q repositories.FeedQuery) (int64, error) {
	var count int64
	for _, activity := range r.activities {
		if r.matches(activity, q) {
			count++
		}
	}
	return count, nil
}

type fakeInteractionRepo struct {
	interactions []*models.Interaction
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{}
}

func (r *fakeInteractionRepo) Create(ctx context.Context, interaction *models.Interaction) error {
	if interaction.InteractionType == models.InteractionLike {
		for _, existing := range r.interactions {
			if existing.InteractionType == models.InteractionLike &&
				existing.UserID == interaction.UserID &&
				existing.ActivityID == interaction.ActivityID {
				return repositories.ErrDuplicate
			}
		}
	}
	interaction.ID = primitive.NewObjectID()
	interaction.CreatedAt = time.Now()
	interaction.UpdatedAt = interaction.CreatedAt
	stored := *interaction
	r.interactions = append(r.interactions, &stored)
	return nil
}

func (r *fakeInteractionRepo) GetLike(ctx context.Context, userID uint, activityID primitive.ObjectID) (*models.Interaction, error) {
	for _, interaction := range r.interactions {
		if interaction.InteractionType == models.InteractionLike &&
			interaction.UserID == userID && interaction.ActivityID == activityID {
			copied := *interaction
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeInteractionRepo) DeleteLike(ctx context.Context, userID uint, activityID primitive.ObjectID) error {
	for i, interaction := range r.interactions {
		if interaction.InteractionType == models.InteractionLike &&
			interaction.UserID == userID && interaction.ActivityID == activityID {
			r.interactions = append(r.interactions[:i], r.interactions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeInteractionRepo) ListComments(ctx context.Context, activityID primitive.ObjectID) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, interaction := range r.interactions {
		if interaction.InteractionType == models.InteractionComment && interaction.ActivityID == activityID {
			out = append(out, *interaction)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) LikerIDs(ctx context.Context, activityID primitive.ObjectID) ([]uint, error) {
	var out []uint
	for _, interaction := range r.interactions {
		if interaction.InteractionType == models.InteractionLike && interaction.ActivityID == activityID {
			out = append(out, interaction.UserID)
		}
	}
	return out, nil
}

func (r *fakeInteractionRepo) CountComments(ctx context.Context, activityID primitive.ObjectID) (int64, error) {
	var count int64
	for _, interaction := range r.interactions {
		if interaction.InteractionType == models.InteractionComment && interaction.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}

type fakeLibraryRepo struct {
	entries map[primitive.ObjectID]*models.LibraryEntry
}

func newFakeLibraryRepo() *fakeLibraryRepo {
	return &fakeLibraryRepo{entries: make(map[primitive.ObjectID]*models.LibraryEntry)}
}

func (r *fakeLibraryRepo) Create(ctx context.Context, entry *models.LibraryEntry) error {
	for _, existing := range r.entries {
		if existing.UserID == entry.UserID && existing.ContentID == entry.ContentID {
			return repositories.ErrDuplicate
		}
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	stored := *entry
	r.entries[entry.ID] = &stored
	return nil
}

func (r *fakeLibraryRepo) Update(ctx context.Context, entry *models.LibraryEntry) error {
	stored, ok := r.entries[entry.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.ListStatus = entry.ListStatus
	stored.UserRating = entry.UserRating
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeLibraryRepo) GetByUserAndContent(ctx context.Context, userID uint, contentID primitive.ObjectID) (*models.LibraryEntry, error) {
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.ContentID == contentID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeLibraryRepo) ListByUser(ctx context.Context, userID uint, status string) ([]models.LibraryEntry, error) {
	var out []models.LibraryEntry
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		if status != "" && entry.ListStatus != status {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

type fakeListRepo struct {
	lists map[primitive.ObjectID]*models.List
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{lists: make(map[primitive.ObjectID]*models.List)}
}

func (r *fakeListRepo) Create(ctx context.Context, list *models.List) error {
	for _, existing := range r.lists {
		if existing.UserID == list.UserID && existing.Name == list.Name {
			return repositories.ErrDuplicate
		}
	}
	list.ID = primitive.NewObjectID()
	list.CreatedAt = time.Now()
	list.UpdatedAt = list.CreatedAt
	stored := *list
	r.lists[list.ID] = &stored
	return nil
}

func (r *fakeListRepo) ListByUser(ctx context.Context, userID uint) ([]models.List, error) {
	var out []models.List
	for _, list := range r.lists {
		if list.UserID == userID {
			out = append(out, *list)
		}
	}
	return out, nil
}

func (r *fakeListRepo) GetByIDAndUser(ctx context.Context, id string, userID uint) (*models.List, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	list, ok := r.lists[objID]
	if !ok || list.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	copied := *list
	return &copied, nil
}

func (r *fakeListRepo) AddContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error {
	list, ok := r.lists[id]
	if !ok || list.UserID != userID {
		return repositories.ErrNotFound
	}
	for _, existing := range list.ContentIDs {
		if existing == contentID {
			return nil
		}
	}
	list.ContentIDs = append(list.ContentIDs, contentID)
	return nil
}

func (r *fakeListRepo) RemoveContent(ctx context.Context, id primitive.ObjectID, userID uint, contentID primitive.ObjectID) error {
	list, ok := r.lists[id]
	if !ok || list.UserID != userID {
		return repositories.ErrNotFound
	}
	kept := list.ContentIDs[:0]
	for _, existing := range list.ContentIDs {
		if existing != contentID {
			kept = append(kept, existing)
		}
	}
	list.ContentIDs = kept
	return nil
}

// stubSource is a canned catalog source
type stubSource struct {
	searchResults []catalog.Candidate
	searchErr     error
	details       map[string]*catalog.Candidate
	detailsErr    error
}

func (s *stubSource) Search(ctx context.Context, query string) ([]catalog.Candidate, error) {
	return s.searchResults, s.searchErr
}

func (s *stubSource) GetDetails(ctx context.Context, externalID string) (*catalog.Candidate, error) {
	if s.detailsErr != nil {
		return nil, s.detailsErr
	}
	if cand, ok := s.details[externalID]; ok {
		return cand, nil
	}
	return nil, repositories.ErrNotFound
}
