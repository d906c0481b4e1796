package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/infrastructure/models"
)

// ProfileRepository implements read access to author profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUsername gets a profile by its unique username
func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Profile{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: null.StringFromPtr(m.DisplayName),
		Bio:         null.StringFromPtr(m.Bio),
		AvatarURL:   null.StringFromPtr(m.AvatarURL),
		SocialLinks: m.SocialLinks,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// PublishedStats counts an author's published posts and sums their views
func (r *ProfileRepository) PublishedStats(ctx context.Context, userID uuid.UUID) (*entities.PostStats, error) {
	var stats entities.PostStats
	if err := GetDB(ctx, r.db).Model(&models.Post{}).
		Select("COUNT(*) AS post_count, COALESCE(SUM(view_count), 0) AS total_views").
		Where("user_id = ? AND status = ?", userID, entities.PostStatusPublished).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
