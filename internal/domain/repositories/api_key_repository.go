package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"write-space.backend/internal/domain/entities"
)

// ApiKeyRepository defines API key data operations
type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindActiveByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	// SetActive flips only the is_active flag so concurrent usage charges are kept.
	SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error
	// Rotate swaps the secret hash and preview and restarts the usage counter.
	Rotate(ctx context.Context, id uuid.UUID, keyHash, keyPreview string, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementUsage charges one request against an active key with remaining
	// quota and returns the new usage count. It returns ErrRateLimited when no
	// row qualified.
	IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (int, error)
	// ResetUsage zeroes the usage counter of every key and returns the number of keys touched.
	ResetUsage(ctx context.Context) (int64, error)
}
