package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Default values applied to newly issued keys
const (
	DefaultApiKeyRateLimit   = 1000
	DefaultApiKeyPermissions = "read"
)

// ApiKey represents a developer API key. The secret itself is never stored.
type ApiKey struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	KeyHash     string      `json:"-"`
	KeyPreview  string      `json:"key_preview"`
	Permissions string      `json:"permissions"`
	IsActive    bool        `json:"is_active"`
	RateLimit   int         `json:"rate_limit"`
	UsageCount  int         `json:"usage_count"`
	LastUsedAt  null.Time   `json:"last_used_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HasQuota reports whether the key may serve one more request.
func (k *ApiKey) HasQuota() bool {
	return k.UsageCount < k.RateLimit
}

type CreateApiKeyInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Permissions string  `json:"permissions"`
	RateLimit   *int    `json:"rate_limit"`
}

type UpdateApiKeyInput struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateApiKeyResponse carries the plaintext secret. It is only returned once.
type CreateApiKeyResponse struct {
	ApiKey *ApiKey `json:"api_key"`
	Key    string  `json:"key"`
}

// AuthResult is the outcome of a successful gate check.
type AuthResult struct {
	KeyID       uuid.UUID
	UserID      uuid.UUID
	RateLimit   int
	UsageBefore int
}
