package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets TweetStore

	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "tweet content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   callerID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logger.Error("tweet create failed", "error", err, "ownerId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create tweet")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListByUser handles GET /api/v1/users/{userId}/tweets.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := r.PathValue("userId")
	if !validID(userID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}

	tweets, err := h.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		logger.Error("tweet listing failed", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list tweets")
		return
	}

	if len(tweets) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no tweets found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "Tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedTweet(ctx, w, r.PathValue("tweetId"), callerID)
	if err != nil {
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "tweet content is required")
		return
	}

	updated, err := h.Tweets.Update(ctx, existing.ID, req.Content)
	if err != nil {
		logger.Error("tweet update failed", "error", err, "tweetId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedTweet(ctx, w, r.PathValue("tweetId"), callerID)
	if err != nil {
		return
	}

	if err := h.Tweets.Delete(ctx, existing.ID); err != nil {
		logger.Error("tweet delete failed", "error", err, "tweetId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Tweet deleted successfully")
}

func (h TweetHandler) ownedTweet(ctx context.Context, w http.ResponseWriter, tweetID, callerID string) (models.Tweet, error) {
	if !validID(tweetID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return models.Tweet{}, errInvalidRequest
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "tweet not found")
			return models.Tweet{}, err
		}
		logging.FromContext(ctx).Error("tweet lookup failed", "error", err, "tweetId", tweetID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load tweet")
		return models.Tweet{}, err
	}

	if err := requireOwner(callerID, tweet.OwnerID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you do not own this tweet")
		return models.Tweet{}, err
	}

	return tweet, nil
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}
