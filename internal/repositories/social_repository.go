package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	Update(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines toggle-style data access for likes. Toggle reports
// whether the like now exists (true: created, false: removed).
type LikeRepository interface {
	Toggle(ctx context.Context, userID string, target models.LikeTarget, targetID string) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionRepository defines toggle-style data access for the
// subscriber -> channel edge.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error)
}

// PlaylistRepository defines data access for playlists and their video sets.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Playlist, int64, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
}

// ChannelRepository gathers the cross-entity aggregations: channel profile,
// watch history, and the stats rollup.
type ChannelRepository interface {
	Profile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	Stats(ctx context.Context, channelID string) (models.ChannelStats, error)
	Videos(ctx context.Context, channelID string) ([]models.ChannelVideo, error)
	Subscribers(ctx context.Context, channelID string) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
}
