package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/interfaces/http/middleware"
)

type postRepoStub struct {
	listFn   func(ctx context.Context, filter entities.PostFilter) ([]*entities.Post, int64, error)
	findFn   func(ctx context.Context, username, slug string) (*entities.Post, error)
	tagsFn   func(ctx context.Context) ([][]string, error)
	lastList entities.PostFilter
}

func (s *postRepoStub) ListPublished(ctx context.Context, filter entities.PostFilter) ([]*entities.Post, int64, error) {
	s.lastList = filter
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return []*entities.Post{}, 0, nil
}

func (s *postRepoStub) FindPublishedBySlug(ctx context.Context, username, slug string) (*entities.Post, error) {
	if s.findFn != nil {
		return s.findFn(ctx, username, slug)
	}
	return nil, domainerrors.ErrNotFound
}

func (s *postRepoStub) ListPublishedTags(ctx context.Context) ([][]string, error) {
	if s.tagsFn != nil {
		return s.tagsFn(ctx)
	}
	return nil, nil
}

type profileRepoStub struct {
	profiles map[string]*entities.Profile
	stats    *entities.PostStats
	statsErr error
}

func (s *profileRepoStub) FindByUsername(_ context.Context, username string) (*entities.Profile, error) {
	if p, ok := s.profiles[username]; ok {
		return p, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (s *profileRepoStub) PublishedStats(context.Context, uuid.UUID) (*entities.PostStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	if s.stats == nil {
		return &entities.PostStats{}, nil
	}
	return s.stats, nil
}

type apiKeyRepoStub struct {
	keys    map[uuid.UUID]*entities.ApiKey
	created []*entities.ApiKey
}

func newApiKeyRepoStub(keys ...*entities.ApiKey) *apiKeyRepoStub {
	s := &apiKeyRepoStub{keys: map[uuid.UUID]*entities.ApiKey{}}
	for _, k := range keys {
		s.keys[k.ID] = k
	}
	return s
}

func (s *apiKeyRepoStub) Create(_ context.Context, apiKey *entities.ApiKey) error {
	s.keys[apiKey.ID] = apiKey
	s.created = append(s.created, apiKey)
	return nil
}

func (s *apiKeyRepoStub) FindActiveByKeyHash(context.Context, string) (*entities.ApiKey, error) {
	return nil, errors.New("unused")
}

func (s *apiKeyRepoStub) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	out := []*entities.ApiKey{}
	for _, k := range s.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *apiKeyRepoStub) FindByID(_ context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	if k, ok := s.keys[id]; ok {
		return k, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (s *apiKeyRepoStub) SetActive(_ context.Context, id uuid.UUID, active bool, _ time.Time) error {
	k, ok := s.keys[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	k.IsActive = active
	return nil
}

func (s *apiKeyRepoStub) Rotate(_ context.Context, id uuid.UUID, keyHash, keyPreview string, _ time.Time) error {
	k, ok := s.keys[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	k.KeyHash = keyHash
	k.KeyPreview = keyPreview
	k.UsageCount = 0
	return nil
}

func (s *apiKeyRepoStub) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.keys[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(s.keys, id)
	return nil
}

func (s *apiKeyRepoStub) IncrementUsage(context.Context, uuid.UUID, time.Time) (int, error) {
	return 0, errors.New("unused")
}

func (s *apiKeyRepoStub) ResetUsage(context.Context) (int64, error) { return 0, nil }

type uowStub struct{}

func (uowStub) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}
