package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"write-space.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock ApiKeyRepository
type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	return m.Called(ctx, apiKey).Error(0)
}

func (m *MockApiKeyRepository) FindActiveByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error {
	return m.Called(ctx, id, active, now).Error(0)
}

func (m *MockApiKeyRepository) Rotate(ctx context.Context, id uuid.UUID, keyHash, keyPreview string, now time.Time) error {
	return m.Called(ctx, id, keyHash, keyPreview, now).Error(0)
}

func (m *MockApiKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApiKeyRepository) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, id, now)
	return args.Int(0), args.Error(1)
}

func (m *MockApiKeyRepository) ResetUsage(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) ListPublished(ctx context.Context, filter entities.PostFilter) ([]*entities.Post, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) FindPublishedBySlug(ctx context.Context, username, slug string) (*entities.Post, error) {
	args := m.Called(ctx, username, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

func (m *MockPostRepository) ListPublishedTags(ctx context.Context) ([][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

// Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUsername(ctx context.Context, username string) (*entities.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) PublishedStats(ctx context.Context, userID uuid.UUID) (*entities.PostStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PostStats), args.Error(1)
}

// Mock TagCache
type MockTagCache struct {
	mock.Mock
}

func (m *MockTagCache) Get(ctx context.Context) ([]entities.TagCount, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]entities.TagCount), args.Bool(1)
}

func (m *MockTagCache) Set(ctx context.Context, tags []entities.TagCount) {
	m.Called(ctx, tags)
}
