package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"testing"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type inMemoryPlaylistStore struct {
	playlists map[string]models.Playlist
}

func newInMemoryPlaylistStore() *inMemoryPlaylistStore {
	return &inMemoryPlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *inMemoryPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *inMemoryPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *inMemoryPlaylistStore) ListByOwner(_ context.Context, ownerID string, page, limit int) ([]models.Playlist, int64, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			out = append(out, playlist)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *inMemoryPlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *inMemoryPlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *inMemoryPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if !slices.Contains(playlist.VideoIDs, videoID) {
		playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	}
	s.playlists[playlistID] = playlist
	return playlist, nil
}

func (s *inMemoryPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = slices.DeleteFunc(playlist.VideoIDs, func(id string) bool { return id == videoID })
	s.playlists[playlistID] = playlist
	return playlist, nil
}

func TestPlaylistHandlerCreateValidation(t *testing.T) {
	handler := PlaylistHandler{Playlists: newInMemoryPlaylistStore()}

	cases := []struct {
		name    string
		payload playlistRequest
		want    int
	}{
		{"valid", playlistRequest{Name: "Road trips", Description: "Clips from the summer road trip"}, http.StatusCreated},
		{"name too short", playlistRequest{Name: "ab", Description: "Clips from the summer road trip"}, http.StatusBadRequest},
		{"description too short", playlistRequest{Name: "Road trips", Description: "short"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		body, err := json.Marshal(tc.payload)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req, testUserID)

		if rec.Code != tc.want {
			t.Fatalf("%s: expected status %d got %d: %s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestPlaylistHandlerAddVideoIsSetLike(t *testing.T) {
	store := newInMemoryPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{ID: testPlaylistID, OwnerID: testUserID, Name: "Mix", Description: "A longer description"}
	videos := newInMemoryVideoStore()
	videos.videos[testVideoID] = models.Video{ID: testVideoID, OwnerID: testUserID}

	handler := PlaylistHandler{Playlists: store, Videos: videos}

	add := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+testPlaylistID+"/videos/"+testVideoID, nil)
		req.SetPathValue("videoId", testVideoID)
		req.SetPathValue("playlistId", testPlaylistID)
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req, testUserID)
		return rec
	}

	if rec := add(); rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	// Re-adding the same video is a no-op, not an error.
	if rec := add(); rec.Code != http.StatusOK {
		t.Fatalf("expected status %d on re-add got %d", http.StatusOK, rec.Code)
	}

	playlist, _ := store.FindByID(context.Background(), testPlaylistID)
	if len(playlist.VideoIDs) != 1 {
		t.Fatalf("expected a single membership row, got %v", playlist.VideoIDs)
	}
}

func TestPlaylistHandlerAddMissingVideo(t *testing.T) {
	store := newInMemoryPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{ID: testPlaylistID, OwnerID: testUserID, Name: "Mix", Description: "A longer description"}

	handler := PlaylistHandler{Playlists: store, Videos: newInMemoryVideoStore()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+testPlaylistID+"/videos/"+testMissingID, nil)
	req.SetPathValue("videoId", testMissingID)
	req.SetPathValue("playlistId", testPlaylistID)
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req, testUserID)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPlaylistHandlerOwnerScoping(t *testing.T) {
	store := newInMemoryPlaylistStore()
	store.playlists[testPlaylistID] = models.Playlist{ID: testPlaylistID, OwnerID: testUserID, Name: "Mix", Description: "A longer description"}

	handler := PlaylistHandler{Playlists: store, Videos: newInMemoryVideoStore()}

	// Reads are owner-only too.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+testPlaylistID, nil)
	req.SetPathValue("playlistId", testPlaylistID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req, "intruder")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d for non-owner read got %d", http.StatusForbidden, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/"+testUserID+"/playlists", nil)
	req.SetPathValue("userId", testUserID)
	rec = httptest.NewRecorder()

	handler.ListByUser(rec, req, "intruder")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d for non-owner listing got %d", http.StatusForbidden, rec.Code)
	}
}
