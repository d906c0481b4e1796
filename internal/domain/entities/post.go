package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PostStatusPublished is the only status visible through the public API
const PostStatusPublished = "published"

// PostAuthor is the profile subset embedded in every post
type PostAuthor struct {
	Username    string      `json:"username"`
	DisplayName null.String `json:"display_name"`
	AvatarURL   null.String `json:"avatar_url"`
	Bio         null.String `json:"bio"`
}

// Post represents a published article
type Post struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Excerpt         null.String `json:"excerpt"`
	MarkdownContent string      `json:"markdown_content"`
	HTMLContent     null.String `json:"html_content"`
	CoverImage      null.String `json:"cover_image"`
	Tags            []string    `json:"tags"`
	ViewCount       int         `json:"view_count"`
	LikeCount       int         `json:"like_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Author          *PostAuthor `json:"author"`
}

// PostFilter narrows a post listing
type PostFilter struct {
	Tags           []string
	AuthorUsername string
	Limit          int
	Offset         int
}

// TagCount is the number of published posts carrying a tag
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
