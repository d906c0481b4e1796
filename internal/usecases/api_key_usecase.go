package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/domain/repositories"
	"write-space.backend/pkg/crypto"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/utils"
)

var (
	generateApiKey = crypto.GenerateApiKey
	newApiKeyID    = utils.GenerateUUIDv7
)

var allowedPermissions = map[string]bool{
	"read":       true,
	"read,write": true,
}

// ApiKeyUsecase manages the lifecycle of a user's API keys
type ApiKeyUsecase struct {
	apiKeyRepo       repositories.ApiKeyRepository
	uow              repositories.UnitOfWork
	defaultRateLimit int
}

func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	uow repositories.UnitOfWork,
	defaultRateLimit int,
) *ApiKeyUsecase {
	if defaultRateLimit <= 0 {
		defaultRateLimit = entities.DefaultApiKeyRateLimit
	}
	return &ApiKeyUsecase{
		apiKeyRepo:       apiKeyRepo,
		uow:              uow,
		defaultRateLimit: defaultRateLimit,
	}
}

// CreateApiKey issues a new key. The plaintext secret is only part of this response.
func (u *ApiKeyUsecase) CreateApiKey(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.BadRequest("name is required")
	}

	rateLimit := u.defaultRateLimit
	if input.RateLimit != nil {
		if *input.RateLimit < 1 {
			return nil, domainerrors.BadRequest("rate_limit must be positive")
		}
		rateLimit = *input.RateLimit
	}

	permissions := strings.TrimSpace(input.Permissions)
	if permissions == "" {
		permissions = entities.DefaultApiKeyPermissions
	}
	if !allowedPermissions[permissions] {
		return nil, domainerrors.BadRequest("permissions must be one of: read, read,write")
	}

	secret, err := generateApiKey()
	if err != nil {
		return nil, domainerrors.InternalServerError("failed to generate key")
	}

	now := time.Now()
	entity := &entities.ApiKey{
		ID:          newApiKeyID(),
		UserID:      userID,
		Name:        name,
		Description: null.StringFromPtr(input.Description),
		KeyHash:     crypto.HashApiKey(secret),
		KeyPreview:  crypto.PreviewApiKey(secret),
		Permissions: permissions,
		IsActive:    true,
		RateLimit:   rateLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.apiKeyRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	logger.Info(ctx, "API key created",
		zap.String("api_key_id", entity.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return &entities.CreateApiKeyResponse{ApiKey: entity, Key: secret}, nil
}

// ListApiKeys returns the user's keys, newest first
func (u *ApiKeyUsecase) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.FindByUserID(ctx, userID)
}

// RegenerateApiKey replaces the secret and restarts the quota. The old secret stops working immediately.
func (u *ApiKeyUsecase) RegenerateApiKey(ctx context.Context, userID, id uuid.UUID) (*entities.CreateApiKeyResponse, error) {
	var resp *entities.CreateApiKeyResponse
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		key, err := u.ownedKey(ctx, userID, id)
		if err != nil {
			return err
		}

		secret, err := generateApiKey()
		if err != nil {
			return domainerrors.InternalServerError("failed to generate key")
		}

		now := time.Now()
		key.KeyHash = crypto.HashApiKey(secret)
		key.KeyPreview = crypto.PreviewApiKey(secret)
		if err := u.apiKeyRepo.Rotate(ctx, key.ID, key.KeyHash, key.KeyPreview, now); err != nil {
			return notFoundAsAppError(err)
		}
		key.UsageCount = 0
		key.LastUsedAt = null.Time{}
		key.UpdatedAt = now

		resp = &entities.CreateApiKeyResponse{ApiKey: key, Key: secret}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "API key regenerated", zap.String("api_key_id", id.String()))
	return resp, nil
}

// SetApiKeyActive enables or disables a key without touching its secret
func (u *ApiKeyUsecase) SetApiKeyActive(ctx context.Context, userID, id uuid.UUID, active bool) (*entities.ApiKey, error) {
	var updated *entities.ApiKey
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		key, err := u.ownedKey(ctx, userID, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := u.apiKeyRepo.SetActive(ctx, key.ID, active, now); err != nil {
			return notFoundAsAppError(err)
		}
		key.IsActive = active
		key.UpdatedAt = now
		updated = key
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteApiKey revokes a key permanently
func (u *ApiKeyUsecase) DeleteApiKey(ctx context.Context, userID, id uuid.UUID) error {
	return u.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := u.ownedKey(ctx, userID, id); err != nil {
			return err
		}
		if err := u.apiKeyRepo.Delete(ctx, id); err != nil {
			return notFoundAsAppError(err)
		}
		logger.Info(ctx, "API key deleted", zap.String("api_key_id", id.String()))
		return nil
	})
}

func (u *ApiKeyUsecase) ownedKey(ctx context.Context, userID, id uuid.UUID) (*entities.ApiKey, error) {
	key, err := u.apiKeyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgApiKeyNotFound)
		}
		return nil, err
	}
	if key.UserID != userID {
		return nil, domainerrors.Forbidden("not owner of api key")
	}
	return key, nil
}

func notFoundAsAppError(err error) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(MsgApiKeyNotFound)
	}
	return err
}
