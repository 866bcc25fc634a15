package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/backend/internal/models"
)

func TestVideoHandlerPublish(t *testing.T) {
	videos := newInMemoryVideoStore()
	relay := &fakeRelay{}
	handler := VideoHandler{
		Videos:    videos,
		Relay:     relay,
		Prober:    fakeProber{duration: 42.5},
		UploadDir: t.TempDir(),
	}

	body, contentType := multipartBody(t,
		map[string]string{"title": "My clip", "description": "A test clip"},
		map[string][]byte{
			"videoFile": []byte("video-bytes"),
			"thumbnail": []byte("thumb-bytes"),
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req, testOwnerID)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatalf("decode video payload: %v", err)
	}
	if video.OwnerID != testOwnerID {
		t.Fatalf("expected caller as owner got %q", video.OwnerID)
	}
	if video.Duration != 42.5 {
		t.Fatalf("expected probed duration got %v", video.Duration)
	}
	if !video.IsPublished {
		t.Fatal("expected new videos to start published")
	}
	if len(relay.uploads) != 2 {
		t.Fatalf("expected video and thumbnail uploads got %d", len(relay.uploads))
	}
	if _, err := videos.FindByID(context.Background(), video.ID); err != nil {
		t.Fatalf("expected video to be stored: %v", err)
	}
}

func TestVideoHandlerPublishRequiresFiles(t *testing.T) {
	handler := VideoHandler{
		Videos:    newInMemoryVideoStore(),
		Relay:     &fakeRelay{},
		Prober:    fakeProber{},
		UploadDir: t.TempDir(),
	}

	body, contentType := multipartBody(t,
		map[string]string{"title": "My clip", "description": "A test clip"},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req, testOwnerID)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVideoHandlerGetCountsViewAndRecordsWatch(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testOwnerID, Title: "Clip", Views: 4}

	channels := &fakeChannelStore{}
	sessions := newTestSessionManager()
	tokens, err := sessions.Issue(context.Background(), testViewerID)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	handler := VideoHandler{Videos: videos, Channels: channels, Sessions: sessions}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+testVideoID, nil)
	req.SetPathValue("videoId", testVideoID)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatalf("decode video payload: %v", err)
	}
	if video.Views != 5 {
		t.Fatalf("expected view counter to bump to 5 got %d", video.Views)
	}
	if len(channels.watches) != 1 || channels.watches[0] != testViewerID+":"+testVideoID {
		t.Fatalf("expected a watch record for the viewer, got %v", channels.watches)
	}
}

func TestVideoHandlerGetAnonymousSkipsHistory(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testOwnerID, Title: "Clip"}

	channels := &fakeChannelStore{}
	handler := VideoHandler{Videos: videos, Channels: channels, Sessions: newTestSessionManager()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+testVideoID, nil)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if len(channels.watches) != 0 {
		t.Fatalf("expected no watch records for anonymous caller, got %v", channels.watches)
	}
}

func TestVideoHandlerGetNotFound(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Sessions: newTestSessionManager()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+testMissingID, nil)
	req.SetPathValue("videoId", testMissingID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestVideoHandlerGetRejectsMalformedID(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Sessions: newTestSessionManager()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/not-a-uuid", nil)
	req.SetPathValue("videoId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for malformed id got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestVideoHandlerDeleteRequiresOwnership(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testOwnerID}

	handler := VideoHandler{Videos: videos, Relay: &fakeRelay{}}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+testVideoID, nil)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req, "intruder")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if _, err := videos.FindByID(context.Background(), testVideoID); err != nil {
		t.Fatal("video should not have been deleted")
	}
}

func TestVideoHandlerDeleteCascadesAssets(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{
		ID:        testVideoID,
		OwnerID:   testOwnerID,
		VideoURL:  "https://media.test/clip",
		Thumbnail: "https://media.test/thumb",
	}

	relay := &fakeRelay{}
	handler := VideoHandler{Videos: videos, Relay: relay}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+testVideoID, nil)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req, testOwnerID)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(relay.deleted) != 2 {
		t.Fatalf("expected both assets deleted got %v", relay.deleted)
	}
	if _, err := videos.FindByID(context.Background(), testVideoID); err == nil {
		t.Fatal("expected video record to be removed")
	}
}

func TestVideoHandlerDeleteAbortsOnRelayFailure(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testOwnerID, VideoURL: "https://media.test/clip"}

	relay := &fakeRelay{deleteErr: errors.New("relay down")}
	handler := VideoHandler{Videos: videos, Relay: relay}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+testVideoID, nil)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req, testOwnerID)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}
	if _, err := videos.FindByID(context.Background(), testVideoID); err != nil {
		t.Fatal("video record should survive a failed asset delete")
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testOwnerID, IsPublished: true}

	handler := VideoHandler{Videos: videos}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+testVideoID+"/toggle-publish", nil)
	req.SetPathValue("videoId", testVideoID)
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req, testOwnerID)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var payload map[string]bool
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode toggle payload: %v", err)
	}
	if payload["isPublished"] {
		t.Fatal("expected publish flag to flip to false")
	}
}
