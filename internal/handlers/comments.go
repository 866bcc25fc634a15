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

// CommentHandler implements comment listing, creation, edit, and delete.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore

	NowFunc func() time.Time
}

// ListForVideo handles GET /api/v1/videos/{videoId}/comments.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("comment video lookup failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		logger.Error("comment listing failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list comments")
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "Comments fetched successfully")
}

// Create handles POST /api/v1/videos/{videoId}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment content is required")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("comment video lookup failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   callerID,
		VideoID:   videoID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("comment create failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to add comment")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "Comment added successfully")
}

// Update handles PATCH /api/v1/comments/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedComment(ctx, w, r.PathValue("commentId"), callerID)
	if err != nil {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment content is required")
		return
	}

	updated, err := h.Comments.Update(ctx, existing.ID, req.Content)
	if err != nil {
		logger.Error("comment update failed", "error", err, "commentId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update comment")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedComment(ctx, w, r.PathValue("commentId"), callerID)
	if err != nil {
		return
	}

	if err := h.Comments.Delete(ctx, existing.ID); err != nil {
		logger.Error("comment delete failed", "error", err, "commentId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete comment")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Comment deleted successfully")
}

func (h CommentHandler) ownedComment(ctx context.Context, w http.ResponseWriter, commentID, callerID string) (models.Comment, error) {
	if !validID(commentID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid comment id")
		return models.Comment{}, errInvalidRequest
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return models.Comment{}, err
		}
		logging.FromContext(ctx).Error("comment lookup failed", "error", err, "commentId", commentID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load comment")
		return models.Comment{}, err
	}

	if err := requireOwner(callerID, comment.OwnerID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you do not own this comment")
		return models.Comment{}, err
	}

	return comment, nil
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type commentRequest struct {
	Content string `json:"content"`
}
