package repositories

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
	"write-space.backend/internal/infrastructure/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createAPIKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
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
	);`)
}

func createContentTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT,
		bio TEXT,
		avatar_url TEXT,
		social_links TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE posts (
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
	);`)
}

func seedProfile(t *testing.T, db *gorm.DB, username string) uuid.UUID {
	t.Helper()
	display := strings.ToUpper(username[:1]) + username[1:]
	m := &models.Profile{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: &display,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func seedPost(t *testing.T, db *gorm.DB, userID uuid.UUID, slug, status string, views int, createdAt time.Time, tags ...string) uuid.UUID {
	t.Helper()
	m := &models.Post{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           "Title " + slug,
		Slug:            slug,
		MarkdownContent: "# " + slug,
		Tags:            pq.StringArray(tags),
		Status:          status,
		ViewCount:       views,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}
