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

// PostgresSubscriptionRepository provides constraint-backed toggle
// persistence for the subscriber -> channel edge.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the (subscriber, channel) edge atomically under the unique
// constraint and reports which branch fired: created=true means the edge
// now exists.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var sub models.Subscription
	err = conn.QueryRow(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
        RETURNING id, subscriber_id, channel_id, created_at
    `, uuid.NewString(), subscriberID, channelID).Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt)
	if err == nil {
		return sub, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Subscription{}, false, ErrNotFound
		}
		return models.Subscription{}, false, fmt.Errorf("insert subscription: %w", err)
	}

	// Edge already existed: remove it.
	if _, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID); err != nil {
		return models.Subscription{}, false, fmt.Errorf("delete subscription: %w", err)
	}

	return models.Subscription{}, false, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
