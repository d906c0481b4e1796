package repositories

import (
	"context"

	"github.com/google/uuid"
	"write-space.backend/internal/domain/entities"
)

// PostRepository defines read access to published posts
type PostRepository interface {
	ListPublished(ctx context.Context, filter entities.PostFilter) ([]*entities.Post, int64, error)
	FindPublishedBySlug(ctx context.Context, username, slug string) (*entities.Post, error)
	ListPublishedTags(ctx context.Context) ([][]string, error)
}

// ProfileRepository defines read access to author profiles
type ProfileRepository interface {
	FindByUsername(ctx context.Context, username string) (*entities.Profile, error)
	PublishedStats(ctx context.Context, userID uuid.UUID) (*entities.PostStats, error)
}
