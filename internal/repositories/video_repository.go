package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// ListVideosOptions controls filtering, sorting, and pagination for the
// public video listing.
type ListVideosOptions struct {
	Query    string
	OwnerID  string
	SortBy   string // created_at | views | duration | title
	SortDesc bool
	Page     int
	Limit    int
}

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, opts ListVideosOptions) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (bool, error)
}
