package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
)

// PostgresChannelRepository computes the derived cross-entity views:
// channel profile with subscription relationship, watch-history resolution,
// and the channel stats rollup.
type PostgresChannelRepository struct {
	pool db.Pool
}

// NewPostgresChannelRepository constructs a channel repository backed by PostgreSQL.
func NewPostgresChannelRepository(pool db.Pool) *PostgresChannelRepository {
	return &PostgresChannelRepository{pool: pool}
}

// Profile resolves a channel by case-insensitive username and enriches it
// with subscriber counts and the viewer's membership. A single row, public
// fields only.
func (r *PostgresChannelRepository) Profile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var profile models.ChannelProfile
	err = conn.QueryRow(ctx, `
        SELECT
            u.id,
            u.full_name,
            u.username,
            u.email,
            u.avatar_url,
            u.cover_image_url,
            (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscribers_count,
            (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to,
            EXISTS (
                SELECT 1 FROM subscriptions s
                WHERE s.channel_id = u.id
                  AND s.subscriber_id = NULLIF($2::text, '')::uuid
            ) AS is_subscribed
        FROM users u
        WHERE u.username = lower($1)
    `, username, viewerID).Scan(
		&profile.ID, &profile.FullName, &profile.Username, &profile.Email,
		&profile.AvatarURL, &profile.CoverImageURL,
		&profile.SubscribersCount, &profile.ChannelsSubscribedTo, &profile.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory resolves the user's watch log into full video objects, each
// carrying the owner's {fullName, username, avatar} summary. The log's
// ordering and duplicates are preserved exactly; an empty history is a
// valid empty result.
func (r *PostgresChannelRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+prefixedVideoColumns("v")+`,
               o.full_name, o.username, o.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users  o ON o.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.position
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchEntry
	for rows.Next() {
		var entry models.WatchEntry
		if err := rows.Scan(
			&entry.Video.ID, &entry.Video.OwnerID, &entry.Video.Title, &entry.Video.Description,
			&entry.Video.VideoURL, &entry.Video.Thumbnail, &entry.Video.Duration, &entry.Video.Views,
			&entry.Video.IsPublished, &entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.Owner.FullName, &entry.Owner.Username, &entry.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return entries, nil
}

// RecordWatch appends a video reference to the user's watch log. The log is
// append-only: rewatching appends another row.
func (r *PostgresChannelRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (id, user_id, video_id, watched_at)
        VALUES ($1, $2, $3, now())
    `, uuid.NewString(), userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watch entry: %w", err)
	}

	return nil
}

// Stats computes the channel dashboard rollup. All four fields are always
// present and default to zero; a channel with no videos still reports its
// subscriber count.
func (r *PostgresChannelRepository) Stats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.ChannelStats
	err = conn.QueryRow(ctx, `
        WITH channel_videos AS (
            SELECT id, views FROM videos WHERE owner_id = $1
        )
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1)             AS total_subscribers,
            (SELECT COUNT(*) FROM channel_videos)                                  AS total_videos,
            COALESCE((SELECT SUM(views) FROM channel_videos), 0)                   AS total_views,
            (SELECT COUNT(*) FROM likes l
             WHERE l.video_id IN (SELECT id FROM channel_videos))                  AS total_likes
    `, channelID).Scan(&stats.TotalSubscribers, &stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// Videos lists a channel's videos joined with the owner's identity.
func (r *PostgresChannelRepository) Videos(ctx context.Context, channelID string) ([]models.ChannelVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration, v.views, u.username, u.email
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	var videos []models.ChannelVideo
	for rows.Next() {
		var v models.ChannelVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Thumbnail, &v.Duration, &v.Views, &v.Owner, &v.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scan channel video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel videos: %w", err)
	}

	return videos, nil
}

// Subscribers returns the users subscribed to the channel.
func (r *PostgresChannelRepository) Subscribers(ctx context.Context, channelID string) ([]models.UserSummary, error) {
	return r.listEdgeUsers(ctx, `
        SELECT u.id, u.username, u.email, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at
    `, channelID)
}

// SubscribedChannels returns the channels the user subscribes to.
func (r *PostgresChannelRepository) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	return r.listEdgeUsers(ctx, `
        SELECT u.id, u.username, u.email, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at
    `, subscriberID)
}

func (r *PostgresChannelRepository) listEdgeUsers(ctx context.Context, query, arg string) ([]models.UserSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subscription edge: %w", err)
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan subscription edge: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription edge: %w", err)
	}

	return users, nil
}

var _ ChannelRepository = (*PostgresChannelRepository)(nil)
