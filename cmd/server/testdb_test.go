package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"write-space.backend/internal/domain/entities"
	"write-space.backend/internal/infrastructure/models"
	"write-space.backend/pkg/crypto"
)

var schema = []string{
	`CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		key_hash TEXT NOT NULL UNIQUE,
		key_preview TEXT NOT NULL,
		permissions TEXT NOT NULL DEFAULT 'read',
		is_active BOOLEAN NOT NULL DEFAULT true,
		rate_limit INTEGER NOT NULL DEFAULT 1000,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT,
		bio TEXT,
		avatar_url TEXT,
		social_links TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		excerpt TEXT,
		markdown_content TEXT NOT NULL,
		html_content TEXT,
		cover_image TEXT,
		tags TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		view_count INTEGER NOT NULL DEFAULT 0,
		like_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`,
}

// newServerDB opens a private in-memory database with the public schema.
// A single connection serializes writers the way row locks do in Postgres.
func newServerDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// seedKey stores a key with the given quota state and returns its secret
func seedKey(t *testing.T, db *gorm.DB, userID uuid.UUID, limit, usage int) (string, uuid.UUID) {
	t.Helper()
	secret, err := crypto.GenerateApiKey()
	require.NoError(t, err)

	now := time.Now()
	m := &models.ApiKey{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        "seeded",
		KeyHash:     crypto.HashApiKey(secret),
		KeyPreview:  crypto.PreviewApiKey(secret),
		Permissions: entities.DefaultApiKeyPermissions,
		IsActive:    true,
		RateLimit:   limit,
		UsageCount:  usage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(m).Error)
	return secret, m.ID
}

func usageOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var m models.ApiKey
	require.NoError(t, db.Where("id = ?", id).First(&m).Error)
	return m.UsageCount
}

func seedAuthor(t *testing.T, db *gorm.DB, username string, posts ...string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	profile := &models.Profile{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(profile).Error)

	for i, slug := range posts {
		created := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&models.Post{
			ID:              uuid.New(),
			UserID:          profile.ID,
			Title:           "Post " + slug,
			Slug:            slug,
			MarkdownContent: "# " + slug,
			Tags:            pq.StringArray{"go"},
			Status:          entities.PostStatusPublished,
			ViewCount:       3,
			CreatedAt:       created,
			UpdatedAt:       created,
		}).Error)
	}
	return profile.ID
}
