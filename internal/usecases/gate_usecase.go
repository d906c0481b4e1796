package usecases

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"write-space.backend/internal/config"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/domain/repositories"
	"write-space.backend/pkg/crypto"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/metrics"
)

// Rate limit response headers
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitUsed      = "X-RateLimit-Used"
)

// RetryPolicy computes the backoff hint sent with a 429
type RetryPolicy struct {
	Monthly bool
	Fixed   time.Duration
}

// NewRetryPolicy builds the policy from rate limit config
func NewRetryPolicy(cfg config.RateLimitConfig) RetryPolicy {
	fixed := cfg.RetryAfter
	if fixed <= 0 {
		fixed = time.Hour
	}
	return RetryPolicy{Monthly: cfg.Monthly(), Fixed: fixed}
}

// RetryAfter returns whole seconds until the quota is expected to refill.
// Monthly quotas refill at 00:00 UTC on the first of the next month.
func (p RetryPolicy) RetryAfter(now time.Time) time.Duration {
	if !p.Monthly {
		return p.Fixed
	}
	now = now.UTC()
	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	secs := int64(math.Ceil(next.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// GateUsecase authenticates API requests and charges them against the key quota
type GateUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	retry      RetryPolicy
	now        func() time.Time
}

func NewGateUsecase(apiKeyRepo repositories.ApiKeyRepository, retry RetryPolicy) *GateUsecase {
	return &GateUsecase{
		apiKeyRepo: apiKeyRepo,
		retry:      retry,
		now:        time.Now,
	}
}

// Authenticate validates the Authorization header and consumes one unit of quota.
// Rejected requests never write to the store.
func (u *GateUsecase) Authenticate(ctx context.Context, authorization string) (*entities.AuthResult, error) {
	if !strings.HasPrefix(authorization, BearerPrefix) {
		metrics.ObserveGateDecision(metrics.DecisionUnauthorized)
		return nil, domainerrors.Unauthorized(MsgMissingApiKey)
	}
	token := strings.TrimPrefix(authorization, BearerPrefix)

	key, err := u.apiKeyRepo.FindActiveByKeyHash(ctx, crypto.HashApiKey(token))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.ObserveGateDecision(metrics.DecisionUnauthorized)
			return nil, domainerrors.Unauthorized(MsgInvalidApiKey)
		}
		metrics.ObserveGateDecision(metrics.DecisionError)
		return nil, domainerrors.InternalError(err)
	}

	now := u.now()
	if !key.HasQuota() {
		return nil, u.rateLimited(ctx, key, now)
	}

	used, err := u.apiKeyRepo.IncrementUsage(ctx, key.ID, now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrRateLimited) {
			// lost the race for the last unit, or the key was deactivated meanwhile
			return nil, u.rateLimited(ctx, key, now)
		}
		metrics.ObserveGateDecision(metrics.DecisionError)
		return nil, domainerrors.InternalError(err)
	}

	metrics.ObserveGateDecision(metrics.DecisionAccepted)
	logger.Debug(ctx, "API key accepted",
		zap.String("api_key_id", key.ID.String()),
		zap.Int("usage", used),
		zap.Int("rate_limit", key.RateLimit),
	)

	return &entities.AuthResult{
		KeyID:       key.ID,
		UserID:      key.UserID,
		RateLimit:   key.RateLimit,
		UsageBefore: used - 1,
	}, nil
}

func (u *GateUsecase) rateLimited(ctx context.Context, key *entities.ApiKey, now time.Time) error {
	metrics.ObserveGateDecision(metrics.DecisionRateLimited)
	logger.Debug(ctx, "API key rate limited",
		zap.String("api_key_id", key.ID.String()),
		zap.Int("rate_limit", key.RateLimit),
	)
	return domainerrors.RateLimited(MsgRateLimitExceeded, u.retry.RetryAfter(now))
}

// RateLimitHeaders renders the quota headers for an accepted request
func RateLimitHeaders(result *entities.AuthResult) map[string]string {
	remaining := result.RateLimit - result.UsageBefore - 1
	if remaining < 0 {
		remaining = 0
	}
	return map[string]string{
		HeaderRateLimitLimit:     strconv.Itoa(result.RateLimit),
		HeaderRateLimitRemaining: strconv.Itoa(remaining),
		HeaderRateLimitUsed:      strconv.Itoa(result.UsageBefore + 1),
	}
}
