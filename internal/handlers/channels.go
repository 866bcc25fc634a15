package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clipstream/backend/internal/channels"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/repositories"
)

// ChannelHandler serves the cross-entity aggregation endpoints: channel
// profile, watch history, dashboard stats, and channel video listings.
type ChannelHandler struct {
	Channels ChannelStore
	Stats    StatsProvider
}

// Profile handles GET /api/v1/channels/{username}. The caller is the
// viewer whose subscription resolves the isSubscribed flag.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Channels.Profile(ctx, username, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel does not exist")
			return
		}
		logger.Error("channel profile failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load channel profile")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "Channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history, listing the caller's
// watched videos in watch order.
func (h ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	history, err := h.Channels.WatchHistory(ctx, callerID)
	if err != nil {
		logger.Error("watch history failed", "error", err, "userId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load watch history")
		return
	}

	respondData(ctx, w, http.StatusOK, history, "Watch history fetched successfully")
}

// ChannelStats handles GET /api/v1/channels/{channelId}/stats. Only the
// channel owner may read their dashboard.
func (h ChannelHandler) ChannelStats(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := r.PathValue("channelId")
	if !validID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}
	if err := requireOwner(callerID, channelID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you may only view your own channel stats")
		return
	}

	stats, err := h.Stats.Stats(ctx, channelID)
	if err != nil {
		if errors.Is(err, channels.ErrProviderUnavailable) {
			respondError(ctx, w, http.StatusInternalServerError, "stats service unavailable")
			return
		}
		logger.Error("channel stats failed", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load channel stats")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "Channel stats fetched successfully")
}

// ChannelVideos handles GET /api/v1/channels/{channelId}/videos.
func (h ChannelHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := r.PathValue("channelId")
	if !validID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	videos, err := h.Channels.Videos(ctx, channelID)
	if err != nil {
		logger.Error("channel video listing failed", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list channel videos")
		return
	}

	if len(videos) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no videos found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "Channel videos fetched successfully")
}
