package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/storage"
)

// Fixed ids shared by the handler tests. Path identifiers must be
// UUID-shaped to pass request validation.
const (
	testOwnerID    = "3d2e8f0a-1b59-4d87-9cb1-6f3f2f6b4a01"
	testUserID     = "b8277f60-0c70-4f3f-8f6f-58a1c8d34b77"
	testViewerID   = "91d9cf2e-5f6a-4f2b-8f0d-2b8a19c4e5d3"
	testVideoID    = "7a9f3f6e-0d2c-4f58-9f3a-d41b1f8e6c29"
	testChannelID  = "4e6a1c2b-7d3f-4a85-b1e9-0c5d8f7a2e64"
	testPlaylistID = "a1b2c3d4-e5f6-4789-8abc-def012345678"
	testMissingID  = "00000000-0000-4000-8000-000000000999"
)

// In-memory fakes backing the handler tests. They mirror the repository
// contracts closely enough to exercise the handler branching without a
// database.

type inMemoryUserStore struct {
	users map[string]models.User // keyed by id
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) Update(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type inMemoryVideoStore struct {
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) List(_ context.Context, opts repositories.ListVideosOptions) ([]models.Video, error) {
	var out []models.Video
	for _, video := range s.videos {
		if opts.OwnerID != "" && video.OwnerID != opts.OwnerID {
			continue
		}
		out = append(out, video)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *inMemoryVideoStore) IncrementViews(_ context.Context, id string) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *inMemoryVideoStore) TogglePublish(_ context.Context, id string) (bool, error) {
	video, ok := s.videos[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video.IsPublished, nil
}

type likeKey struct {
	userID   string
	target   models.LikeTarget
	targetID string
}

type inMemoryLikeStore struct {
	likes  map[likeKey]struct{}
	videos *inMemoryVideoStore
}

func newInMemoryLikeStore(videos *inMemoryVideoStore) *inMemoryLikeStore {
	return &inMemoryLikeStore{likes: make(map[likeKey]struct{}), videos: videos}
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, userID string, target models.LikeTarget, targetID string) (bool, error) {
	key := likeKey{userID: userID, target: target, targetID: targetID}
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

func (s *inMemoryLikeStore) LikedVideos(_ context.Context, userID string) ([]models.Video, error) {
	var out []models.Video
	for key := range s.likes {
		if key.userID != userID || key.target != models.LikeTargetVideo {
			continue
		}
		if s.videos != nil {
			if video, ok := s.videos.videos[key.targetID]; ok {
				out = append(out, video)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type subscriptionKey struct {
	subscriberID string
	channelID    string
}

type inMemorySubscriptionStore struct {
	edges map[subscriptionKey]models.Subscription
}

func newInMemorySubscriptionStore() *inMemorySubscriptionStore {
	return &inMemorySubscriptionStore{edges: make(map[subscriptionKey]models.Subscription)}
}

func (s *inMemorySubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (models.Subscription, bool, error) {
	key := subscriptionKey{subscriberID: subscriberID, channelID: channelID}
	if _, ok := s.edges[key]; ok {
		delete(s.edges, key)
		return models.Subscription{}, false, nil
	}
	sub := models.Subscription{
		ID:           fmt.Sprintf("sub-%d", len(s.edges)+1),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}
	s.edges[key] = sub
	return sub, true, nil
}

// fakeRelay records uploads and deletes without touching the network. It
// honors the empty-path no-op contract and removes spooled files the way
// the real relay does.
type fakeRelay struct {
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (r *fakeRelay) Upload(_ context.Context, localPath string) (storage.Asset, error) {
	if localPath == "" {
		return storage.Asset{}, nil
	}
	defer os.Remove(localPath)
	if r.uploadErr != nil {
		return storage.Asset{}, r.uploadErr
	}
	r.uploads = append(r.uploads, localPath)
	key := fmt.Sprintf("asset-%d", len(r.uploads))
	return storage.Asset{URL: "https://media.test/" + key, Key: key, Size: 1}, nil
}

func (r *fakeRelay) Delete(_ context.Context, assetURL string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, assetURL)
	return nil
}

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Inspect(_ context.Context, _ string) (media.Probe, error) {
	if p.err != nil {
		return media.Probe{}, p.err
	}
	return media.Probe{Duration: p.duration, Format: "mp4"}, nil
}

type fakeChannelStore struct {
	profile     models.ChannelProfile
	profileErr  error
	history     []models.WatchEntry
	historyErr  error
	watches     []string
	videos      []models.ChannelVideo
	subscribers []models.UserSummary
	channels    []models.UserSummary
}

func (s *fakeChannelStore) Profile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	if s.profileErr != nil {
		return models.ChannelProfile{}, s.profileErr
	}
	return s.profile, nil
}

func (s *fakeChannelStore) WatchHistory(_ context.Context, userID string) ([]models.WatchEntry, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *fakeChannelStore) RecordWatch(_ context.Context, userID, videoID string) error {
	s.watches = append(s.watches, userID+":"+videoID)
	return nil
}

func (s *fakeChannelStore) Videos(_ context.Context, channelID string) ([]models.ChannelVideo, error) {
	return s.videos, nil
}

func (s *fakeChannelStore) Subscribers(_ context.Context, channelID string) ([]models.UserSummary, error) {
	return s.subscribers, nil
}

func (s *fakeChannelStore) SubscribedChannels(_ context.Context, subscriberID string) ([]models.UserSummary, error) {
	return s.channels, nil
}

type fakeStatsProvider struct {
	stats models.ChannelStats
	err   error
	calls int
}

func (p *fakeStatsProvider) Stats(_ context.Context, channelID string) (models.ChannelStats, error) {
	p.calls++
	if p.err != nil {
		return models.ChannelStats{}, p.err
	}
	return p.stats, nil
}
