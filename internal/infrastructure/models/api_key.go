package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description *string    `gorm:"type:text"`
	KeyHash     string     `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA-256 hex of the secret
	KeyPreview  string     `gorm:"type:varchar(20);not null"`             // "ws_17000...abcd"
	Permissions string     `gorm:"type:text;not null;default:'read'"`
	IsActive    bool       `gorm:"default:true;not null"`
	RateLimit   int        `gorm:"not null;default:1000"`
	UsageCount  int        `gorm:"not null;default:0"`
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
