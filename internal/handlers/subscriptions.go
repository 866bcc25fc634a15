package handlers

import (
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/repositories"
)

// SubscriptionHandler implements the subscribe toggle and the two edge
// listings (a channel's subscribers, a user's subscribed channels).
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Channels      ChannelStore
}

// Toggle handles POST /api/v1/subscriptions/{channelId}. Subscribing to
// your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := r.PathValue("channelId")
	if !validID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}
	if channelID == callerID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to your own channel")
		return
	}

	sub, subscribed, err := h.Subscriptions.Toggle(ctx, callerID, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logger.Error("subscription toggle failed", "error", err, "channelId", channelID, "subscriberId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to toggle subscription")
		return
	}

	if subscribed {
		respondData(ctx, w, http.StatusCreated, sub, "Subscribed successfully")
		return
	}
	respondData(ctx, w, http.StatusOK, nil, "Unsubscribed successfully")
}

// Subscribers handles GET /api/v1/channels/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := r.PathValue("channelId")
	if !validID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	subscribers, err := h.Channels.Subscribers(ctx, channelID)
	if err != nil {
		logger.Error("subscriber listing failed", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list subscribers")
		return
	}

	if len(subscribers) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no subscribers found")
		return
	}

	respondData(ctx, w, http.StatusOK, subscribers, "Subscribers fetched successfully")
}

// SubscribedChannels handles GET /api/v1/users/{userId}/subscriptions.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	subscriberID := r.PathValue("userId")
	if !validID(subscriberID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid subscriber id")
		return
	}

	channels, err := h.Channels.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		logger.Error("subscribed channel listing failed", "error", err, "subscriberId", subscriberID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list subscribed channels")
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
