package handlers

import (
	"context"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/storage"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, refreshes, verifies, and revokes auth credentials.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Verify(token string) (string, error)
	Revoke(ctx context.Context, userID string)
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, opts repositories.ListVideosOptions) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (bool, error)
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	Update(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore captures toggle persistence for likes.
type LikeStore interface {
	Toggle(ctx context.Context, userID string, target models.LikeTarget, targetID string) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionStore captures toggle persistence for subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Playlist, int64, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
}

// ChannelStore exposes the cross-entity aggregations.
type ChannelStore interface {
	Profile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	Videos(ctx context.Context, channelID string) ([]models.ChannelVideo, error)
	Subscribers(ctx context.Context, channelID string) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
}

// StatsProvider computes (possibly cached) channel dashboard rollups.
type StatsProvider interface {
	Stats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// MediaRelay transfers local temp files to the external media host and
// removes remote assets during delete cascades.
type MediaRelay interface {
	Upload(ctx context.Context, localPath string) (storage.Asset, error)
	Delete(ctx context.Context, assetURL string) error
}

// DurationProber inspects a local media file for its duration.
type DurationProber interface {
	Inspect(ctx context.Context, localPath string) (media.Probe, error)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Channels      ChannelStore
	Stats         StatsProvider
	Relay         MediaRelay
	Prober        DurationProber

	UploadDir     string
	MaxUploadSize int64
	AuthLimiter   RateLimiter
	UploadLimiter RateLimiter
}
