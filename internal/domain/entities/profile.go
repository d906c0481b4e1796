package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Profile represents a public author profile
type Profile struct {
	ID          uuid.UUID   `json:"-"`
	Username    string      `json:"username"`
	DisplayName null.String `json:"display_name"`
	Bio         null.String `json:"bio"`
	AvatarURL   null.String `json:"avatar_url"`
	SocialLinks null.JSON   `json:"social_links"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PostStats aggregates an author's published posts
type PostStats struct {
	PostCount  int64 `json:"post_count"`
	TotalViews int64 `json:"total_views"`
}

// UserSummary is the public view of a user
type UserSummary struct {
	Profile
	PostStats
}
