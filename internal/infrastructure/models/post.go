package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Post struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title           string         `gorm:"type:text;not null"`
	Slug            string         `gorm:"type:text;not null"`
	Excerpt         *string        `gorm:"type:text"`
	MarkdownContent string         `gorm:"type:text;not null"`
	HTMLContent     *string        `gorm:"type:text"`
	CoverImage      *string        `gorm:"type:text"`
	Tags            pq.StringArray `gorm:"type:text[]"`
	Status          string         `gorm:"type:text;not null;default:'draft'"`
	ViewCount       int            `gorm:"not null;default:0"`
	LikeCount       int            `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Author          Profile `gorm:"foreignKey:UserID;references:ID"`
}
