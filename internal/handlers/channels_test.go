package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

func TestChannelHandlerProfile(t *testing.T) {
	store := &fakeChannelStore{
		profile: models.ChannelProfile{
			ID:               testChannelID,
			Username:         "alice",
			SubscribersCount: 3,
			IsSubscribed:     true,
		},
	}
	handler := ChannelHandler{Channels: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/alice", nil)
	req.SetPathValue("username", "alice")
	rec := httptest.NewRecorder()

	handler.Profile(rec, req, "viewer-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var profile models.ChannelProfile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.SubscribersCount != 3 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestChannelHandlerProfileBlankUsername(t *testing.T) {
	handler := ChannelHandler{Channels: &fakeChannelStore{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/%20", nil)
	req.SetPathValue("username", "  ")
	rec := httptest.NewRecorder()

	handler.Profile(rec, req, "viewer-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChannelHandlerProfileNotFound(t *testing.T) {
	handler := ChannelHandler{
		Channels: &fakeChannelStore{profileErr: repositories.ErrNotFound},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/ghost", nil)
	req.SetPathValue("username", "ghost")
	rec := httptest.NewRecorder()

	handler.Profile(rec, req, "viewer-1")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestChannelHandlerWatchHistory(t *testing.T) {
	store := &fakeChannelStore{
		history: []models.WatchEntry{
			{Video: models.Video{ID: "vid-1"}, Owner: models.OwnerSummary{Username: "alice", FullName: "Alice", AvatarURL: "a.png"}},
			{Video: models.Video{ID: "vid-2"}, Owner: models.OwnerSummary{Username: "bob"}},
			{Video: models.Video{ID: "vid-1"}, Owner: models.OwnerSummary{Username: "alice"}},
		},
	}
	handler := ChannelHandler{Channels: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
	rec := httptest.NewRecorder()

	handler.WatchHistory(rec, req, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var entries []models.WatchEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	// Order and repeat watches are preserved.
	if len(entries) != 3 || entries[0].Video.ID != "vid-1" || entries[1].Video.ID != "vid-2" || entries[2].Video.ID != "vid-1" {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestChannelHandlerStatsOwnerOnly(t *testing.T) {
	stats := &fakeStatsProvider{stats: models.ChannelStats{TotalSubscribers: 2, TotalVideos: 1}}
	handler := ChannelHandler{Channels: &fakeChannelStore{}, Stats: stats}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+testChannelID+"/stats", nil)
	req.SetPathValue("channelId", testChannelID)
	rec := httptest.NewRecorder()

	handler.ChannelStats(rec, req, "someone-else")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d for non-owner got %d", http.StatusForbidden, rec.Code)
	}
	if stats.calls != 0 {
		t.Fatal("stats should not be computed for a rejected caller")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+testChannelID+"/stats", nil)
	req.SetPathValue("channelId", testChannelID)
	rec = httptest.NewRecorder()

	handler.ChannelStats(rec, req, testChannelID)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var rollup models.ChannelStats
	if err := json.Unmarshal(env.Data, &rollup); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if rollup.TotalSubscribers != 2 || rollup.TotalVideos != 1 {
		t.Fatalf("unexpected stats %+v", rollup)
	}
}

func TestChannelHandlerStatsProviderFailure(t *testing.T) {
	handler := ChannelHandler{
		Channels: &fakeChannelStore{},
		Stats:    &fakeStatsProvider{err: errors.New("aggregation failed")},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+testChannelID+"/stats", nil)
	req.SetPathValue("channelId", testChannelID)
	rec := httptest.NewRecorder()

	handler.ChannelStats(rec, req, testChannelID)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestChannelHandlerVideosEmpty(t *testing.T) {
	handler := ChannelHandler{Channels: &fakeChannelStore{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+testChannelID+"/videos", nil)
	req.SetPathValue("channelId", testChannelID)
	rec := httptest.NewRecorder()

	handler.ChannelVideos(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for empty channel got %d", http.StatusNotFound, rec.Code)
	}
}
