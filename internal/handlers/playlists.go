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

const (
	playlistNameMin        = 3
	playlistNameMax        = 100
	playlistDescriptionMin = 10
	playlistDescriptionMax = 500
)

// PlaylistHandler implements playlist CRUD and membership management.
// Playlists are private: every read and write is scoped to the owner.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore

	NowFunc func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validatePlaylistFields(req.Name, req.Description); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     callerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logger.Error("playlist create failed", "error", err, "ownerId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "Playlist created successfully")
}

// ListByUser handles GET /api/v1/users/{userId}/playlists. Only the owner
// may list their playlists.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := r.PathValue("userId")
	if !validID(userID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := requireOwner(callerID, userID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you may only list your own playlists")
		return
	}

	playlists, total, err := h.Playlists.ListByOwner(ctx, userID, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		logger.Error("playlist listing failed", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list playlists")
		return
	}

	respondData(ctx, w, http.StatusOK, playlistPage{Playlists: playlists, Total: total}, "Playlists fetched successfully")
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), callerID)
	if err != nil {
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "Playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), callerID)
	if err != nil {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validatePlaylistFields(req.Name, req.Description); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.Playlists.Update(ctx, existing.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		logger.Error("playlist update failed", "error", err, "playlistId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	existing, err := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), callerID)
	if err != nil {
		return
	}

	if err := h.Playlists.Delete(ctx, existing.ID); err != nil {
		logger.Error("playlist delete failed", "error", err, "playlistId", existing.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Playlist deleted successfully")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
// Adding a video that is already present is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	playlist, videoID, ok := h.membershipTarget(ctx, w, r, callerID)
	if !ok {
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("playlist video lookup failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	updated, err := h.Playlists.AddVideo(ctx, playlist.ID, videoID)
	if err != nil {
		logger.Error("playlist add failed", "error", err, "playlistId", playlist.ID, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to add video to playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Video added to playlist successfully")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	playlist, videoID, ok := h.membershipTarget(ctx, w, r, callerID)
	if !ok {
		return
	}

	updated, err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID)
	if err != nil {
		logger.Error("playlist remove failed", "error", err, "playlistId", playlist.ID, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to remove video from playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Video removed from playlist successfully")
}

// membershipTarget resolves and authorizes the playlist plus the video id
// for the add/remove routes. A false return means the response is sent.
func (h PlaylistHandler) membershipTarget(ctx context.Context, w http.ResponseWriter, r *http.Request, callerID string) (models.Playlist, string, bool) {
	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return models.Playlist{}, "", false
	}

	playlist, err := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), callerID)
	if err != nil {
		return models.Playlist{}, "", false
	}

	return playlist, videoID, true
}

func (h PlaylistHandler) ownedPlaylist(ctx context.Context, w http.ResponseWriter, playlistID, callerID string) (models.Playlist, error) {
	if !validID(playlistID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return models.Playlist{}, errInvalidRequest
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return models.Playlist{}, err
		}
		logging.FromContext(ctx).Error("playlist lookup failed", "error", err, "playlistId", playlistID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load playlist")
		return models.Playlist{}, err
	}

	if err := requireOwner(callerID, playlist.OwnerID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you do not own this playlist")
		return models.Playlist{}, err
	}

	return playlist, nil
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// validatePlaylistFields returns an error message for out-of-bounds name or
// description, or "" when both are acceptable.
func validatePlaylistFields(name, description string) string {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if len(name) < playlistNameMin || len(name) > playlistNameMax {
		return "playlist name must be between 3 and 100 characters"
	}
	if len(description) < playlistDescriptionMin || len(description) > playlistDescriptionMax {
		return "playlist description must be between 10 and 500 characters"
	}
	return ""
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistPage struct {
	Playlists []models.Playlist `json:"playlists"`
	Total     int64             `json:"total"`
}
