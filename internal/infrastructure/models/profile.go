package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username    string    `gorm:"type:text;uniqueIndex;not null"`
	DisplayName *string   `gorm:"type:text"`
	Bio         *string   `gorm:"type:text"`
	AvatarURL   *string   `gorm:"type:text"`
	SocialLinks null.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
