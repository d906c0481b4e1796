package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"write-space.backend/internal/config"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/pkg/crypto"
)

func nowFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeAdminRuntime struct {
	profile   *entities.Profile
	findErr   error
	createErr error
	lastUser  *uuid.UUID
	lastInput *entities.CreateApiKeyInput
}

func (f *fakeAdminRuntime) FindProfile(context.Context, string) (*entities.Profile, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.profile, nil
}

func (f *fakeAdminRuntime) CreateApiKey(_ context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastUser = &userID
	f.lastInput = input

	rateLimit := 1000
	if input.RateLimit != nil {
		rateLimit = *input.RateLimit
	}
	return &entities.CreateApiKeyResponse{
		ApiKey: &entities.ApiKey{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       input.Name,
			KeyPreview: "ws_17000...beef",
			RateLimit:  rateLimit,
		},
		Key: "ws_1700000000000_beef",
	}, nil
}

func depsWith(rt *fakeAdminRuntime, out io.Writer) apiKeyAdminDeps {
	return apiKeyAdminDeps{
		loadEnv: func() error { return nil },
		loadCfg: func() *config.Config { return &config.Config{} },
		prepare: func(context.Context, *config.Config) (apiKeyAdminRuntime, io.Closer, error) {
			return rt, nopCloser{}, nil
		},
		now: nowFunc(time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)),
		out: out,
	}
}

func TestResolveApiKeyName(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	if got := resolveApiKeyName("custom", now); got != "custom" {
		t.Fatalf("expected custom got %s", got)
	}
	if got := resolveApiKeyName("  ", now); got != "cli-20260215-120000" {
		t.Fatalf("unexpected generated name: %s", got)
	}
}

func TestResolveOwner(t *testing.T) {
	ctx := context.Background()
	profileID := uuid.New()
	rt := &fakeAdminRuntime{profile: &entities.Profile{ID: profileID, Username: "alice"}}

	if _, err := resolveOwner(ctx, rt, "", ""); err == nil {
		t.Fatal("expected error without owner")
	}
	if _, err := resolveOwner(ctx, rt, uuid.NewString(), "alice"); err == nil {
		t.Fatal("expected error with both owner flags")
	}
	if _, err := resolveOwner(ctx, rt, "bad-uuid", ""); err == nil {
		t.Fatal("expected error for invalid uuid")
	}

	id := uuid.New()
	if got, err := resolveOwner(ctx, rt, id.String(), ""); err != nil || got != id {
		t.Fatalf("expected %s got %s (err=%v)", id, got, err)
	}
	if got, err := resolveOwner(ctx, rt, "", "alice"); err != nil || got != profileID {
		t.Fatalf("expected profile id %s got %s (err=%v)", profileID, got, err)
	}

	missing := &fakeAdminRuntime{findErr: domainerrors.ErrNotFound}
	if _, err := resolveOwner(ctx, missing, "", "ghost"); err == nil || !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected wrapped not found, got %v", err)
	}
}

func TestRunApiKeyAdmin_Branches(t *testing.T) {
	userID := uuid.New()

	t.Run("flag parse error", func(t *testing.T) {
		if err := runApiKeyAdmin([]string{"-unknown-flag"}, depsWith(&fakeAdminRuntime{}, io.Discard)); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("owner required", func(t *testing.T) {
		err := runApiKeyAdmin(nil, depsWith(&fakeAdminRuntime{}, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "is required") {
			t.Fatalf("expected owner error, got %v", err)
		}
	})

	t.Run("prepare error", func(t *testing.T) {
		deps := depsWith(&fakeAdminRuntime{}, io.Discard)
		deps.loadEnv = func() error { return errors.New("no env") }
		deps.prepare = func(context.Context, *config.Config) (apiKeyAdminRuntime, io.Closer, error) {
			return nil, nil, errors.New("db failed")
		}
		err := runApiKeyAdmin([]string{"-user-id", userID.String()}, deps)
		if err == nil || !strings.Contains(err.Error(), "db failed") {
			t.Fatalf("expected prepare error, got %v", err)
		}
	})

	t.Run("create error", func(t *testing.T) {
		rt := &fakeAdminRuntime{createErr: domainerrors.BadRequest("rate_limit must be positive")}
		err := runApiKeyAdmin([]string{"-user-id", userID.String(), "-rate-limit", "-5"}, depsWith(rt, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "failed creating api key") {
			t.Fatalf("expected create error, got %v", err)
		}
	})

	t.Run("success output", func(t *testing.T) {
		var out bytes.Buffer
		rt := &fakeAdminRuntime{}
		err := runApiKeyAdmin([]string{
			"-user-id", userID.String(),
			"-description", "nightly export",
			"-rate-limit", "50",
			"-permissions", "read,write",
		}, depsWith(rt, &out))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}

		if *rt.lastUser != userID {
			t.Fatalf("key created for %s, want %s", *rt.lastUser, userID)
		}
		if rt.lastInput.Name != "cli-20260216-100000" || rt.lastInput.Permissions != "read,write" {
			t.Fatalf("unexpected input: %+v", rt.lastInput)
		}
		if rt.lastInput.Description == nil || *rt.lastInput.Description != "nightly export" {
			t.Fatalf("description not forwarded: %+v", rt.lastInput)
		}
		if rt.lastInput.RateLimit == nil || *rt.lastInput.RateLimit != 50 {
			t.Fatalf("rate limit not forwarded: %+v", rt.lastInput)
		}
		for _, want := range []string{"Created API key and stored in DB", "rate_limit=50", "API_KEY=ws_1700000000000_beef"} {
			if !strings.Contains(out.String(), want) {
				t.Fatalf("missing %q in output: %s", want, out.String())
			}
		}
	})

	t.Run("defaults leave optional fields unset", func(t *testing.T) {
		rt := &fakeAdminRuntime{profile: &entities.Profile{ID: userID, Username: "alice"}}
		deps := depsWith(rt, io.Discard)
		deps.prepare = func(context.Context, *config.Config) (apiKeyAdminRuntime, io.Closer, error) {
			return rt, nil, nil
		}
		if err := runApiKeyAdmin([]string{"-username", "alice", "-name", "explicit"}, deps); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if rt.lastInput.Description != nil || rt.lastInput.RateLimit != nil {
			t.Fatalf("optional fields should be nil: %+v", rt.lastInput)
		}
		if rt.lastInput.Permissions != entities.DefaultApiKeyPermissions {
			t.Fatalf("unexpected permissions %q", rt.lastInput.Permissions)
		}
	})
}

func TestPrepareRuntime_CreatesKeyInDatabase(t *testing.T) {
	origOpen := openAdminDB
	origOpenSQL := openAdminSQLDB
	defer func() {
		openAdminDB = origOpen
		openAdminSQLDB = origOpenSQL
	}()

	db, err := gorm.Open(sqlite.Open("file:apikey_admin_prepare?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range []string{
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
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	openAdminDB = func(context.Context, config.DatabaseConfig) (*gorm.DB, error) { return db, nil }
	// keep the in-memory database alive past the command's deferred close
	openAdminSQLDB = func(*gorm.DB) (io.Closer, error) { return nopCloser{}, nil }

	ownerID := uuid.New()
	if err := db.Exec(`INSERT INTO profiles (id, username, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		ownerID, "alice", time.Now(), time.Now()).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	var out bytes.Buffer
	cfg := &config.Config{RateLimit: config.RateLimitConfig{DefaultKeyLimit: 250}}
	err = runApiKeyAdmin([]string{"-username", "alice", "-name", "sync"}, apiKeyAdminDeps{
		loadEnv: func() error { return nil },
		loadCfg: func() *config.Config { return cfg },
		out:     &out,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var secret string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "API_KEY=") {
			secret = strings.TrimPrefix(line, "API_KEY=")
		}
	}
	if !strings.HasPrefix(secret, crypto.ApiKeyPrefix) {
		t.Fatalf("missing secret in output: %s", out.String())
	}

	var row struct {
		UserID    string
		RateLimit int
	}
	if err := db.Raw(`SELECT user_id, rate_limit FROM api_keys WHERE key_hash = ?`, crypto.HashApiKey(secret)).Scan(&row).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.UserID != ownerID.String() || row.RateLimit != 250 {
		t.Fatalf("unexpected stored key: %+v", row)
	}
}

func TestPrepareRuntime_Errors(t *testing.T) {
	origOpen := openAdminDB
	origOpenSQL := openAdminSQLDB
	defer func() {
		openAdminDB = origOpen
		openAdminSQLDB = origOpenSQL
	}()

	openAdminDB = func(context.Context, config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}
	if _, _, err := prepareRuntime(context.Background(), &config.Config{}); err == nil || !strings.Contains(err.Error(), "failed to connect db") {
		t.Fatalf("expected connect error, got %v", err)
	}

	openAdminDB = func(context.Context, config.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:apikey_admin_sql_err?mode=memory&cache=shared"), &gorm.Config{})
	}
	openAdminSQLDB = func(*gorm.DB) (io.Closer, error) {
		return nil, errors.New("sql db init failed")
	}
	if _, _, err := prepareRuntime(context.Background(), &config.Config{}); err == nil || !strings.Contains(err.Error(), "failed to init sql db") {
		t.Fatalf("expected sql db init error, got %v", err)
	}
}

func TestMain_ExitsWhenOwnerMissing(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_APIKEY_ADMIN") == "1" {
		os.Args = []string{"apikey-admin"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_ExitsWhenOwnerMissing")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_APIKEY_ADMIN=1")
	if err := cmd.Run(); err == nil {
		t.Fatal("expected helper process to fail without an owner")
	}
}
