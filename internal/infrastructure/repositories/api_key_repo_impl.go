package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/infrastructure/models"
)

// incrementUsageSQL charges a single request. The WHERE clause re-checks
// activity and remaining quota so concurrent callers can never push
// usage_count past rate_limit.
const incrementUsageSQL = `UPDATE api_keys
SET usage_count = usage_count + 1, last_used_at = ?, updated_at = ?
WHERE id = ? AND is_active = ? AND usage_count < rate_limit
RETURNING usage_count`

// ApiKeyRepository implements API key data operations
type ApiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new API key repository
func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

// Create persists a new API key
func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	return GetDB(ctx, r.db).Create(r.toModel(apiKey)).Error
}

// FindActiveByKeyHash looks up an active key by the hash of its secret
func (r *ApiKeyRepository) FindActiveByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).
		Where("key_hash = ? AND is_active = ?", keyHash, true).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// FindByUserID lists a user's keys, newest first
func (r *ApiKeyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	var ms []models.ApiKey
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(ms))
	for _, m := range ms {
		model := m
		keys = append(keys, r.toEntity(&model))
	}
	return keys, nil
}

// FindByID gets a key by ID
func (r *ApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// SetActive enables or disables a key without touching its counters
func (r *ApiKeyRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"is_active":  active,
		"updated_at": now,
	})
}

// Rotate stores a new secret hash and zeroes the usage counter
func (r *ApiKeyRepository) Rotate(ctx context.Context, id uuid.UUID, keyHash, keyPreview string, now time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"key_hash":     keyHash,
		"key_preview":  keyPreview,
		"usage_count":  0,
		"last_used_at": nil,
		"updated_at":   now,
	})
}

func (r *ApiKeyRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.ApiKey{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a key permanently
func (r *ApiKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.ApiKey{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IncrementUsage atomically charges one request against the key
func (r *ApiKeyRepository) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
	var usage []int
	if err := GetDB(ctx, r.db).Raw(incrementUsageSQL, now, now, id, true).Scan(&usage).Error; err != nil {
		return 0, err
	}
	if len(usage) == 0 {
		return 0, domainerrors.ErrRateLimited
	}
	return usage[0], nil
}

// ResetUsage zeroes every non-zero usage counter
func (r *ApiKeyRepository) ResetUsage(ctx context.Context) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.ApiKey{}).
		Where("usage_count > ?", 0).
		Updates(map[string]interface{}{
			"usage_count": 0,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *ApiKeyRepository) toModel(k *entities.ApiKey) *models.ApiKey {
	return &models.ApiKey{
		ID:          k.ID,
		UserID:      k.UserID,
		Name:        k.Name,
		Description: k.Description.Ptr(),
		KeyHash:     k.KeyHash,
		KeyPreview:  k.KeyPreview,
		Permissions: k.Permissions,
		IsActive:    k.IsActive,
		RateLimit:   k.RateLimit,
		UsageCount:  k.UsageCount,
		LastUsedAt:  k.LastUsedAt.Ptr(),
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}

func (r *ApiKeyRepository) toEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: null.StringFromPtr(m.Description),
		KeyHash:     m.KeyHash,
		KeyPreview:  m.KeyPreview,
		Permissions: m.Permissions,
		IsActive:    m.IsActive,
		RateLimit:   m.RateLimit,
		UsageCount:  m.UsageCount,
		LastUsedAt:  null.TimeFromPtr(m.LastUsedAt),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
