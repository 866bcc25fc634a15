package handlers

import (
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// LikeHandler implements the like toggles and the liked-video listing.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/video/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request, callerID string) {
	h.toggle(w, r, callerID, models.LikeTargetVideo, r.PathValue("videoId"), "video")
}

// ToggleComment handles POST /api/v1/likes/comment/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request, callerID string) {
	h.toggle(w, r, callerID, models.LikeTargetComment, r.PathValue("commentId"), "comment")
}

// ToggleTweet handles POST /api/v1/likes/tweet/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request, callerID string) {
	h.toggle(w, r, callerID, models.LikeTargetTweet, r.PathValue("tweetId"), "tweet")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, callerID string, target models.LikeTarget, targetID, label string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !validID(targetID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid "+label+" id")
		return
	}

	liked, err := h.Likes.Toggle(ctx, callerID, target, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, label+" not found")
			return
		}
		logger.Error("like toggle failed", "error", err, "target", string(target), "targetId", targetID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to toggle like")
		return
	}

	message := "Liked successfully"
	if !liked {
		message = "Unliked successfully"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos, listing the videos the
// caller has liked.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videos, err := h.Likes.LikedVideos(ctx, callerID)
	if err != nil {
		logger.Error("liked video listing failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list liked videos")
		return
	}

	if len(videos) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no liked videos found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "Liked videos fetched successfully")
}
