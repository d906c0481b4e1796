package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"write-space.backend/internal/config"
	"write-space.backend/internal/domain/entities"
	domainrepo "write-space.backend/internal/domain/repositories"
	"write-space.backend/internal/infrastructure/datasources/postgres"
	"write-space.backend/internal/infrastructure/repositories"
	"write-space.backend/internal/usecases"
)

var openAdminDB = postgres.NewConnection

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type apiKeyAdminRuntime interface {
	FindProfile(ctx context.Context, username string) (*entities.Profile, error)
	CreateApiKey(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error)
}

type apiKeyAdminDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(ctx context.Context, cfg *config.Config) (apiKeyAdminRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type apiKeyAdminRuntimeImpl struct {
	profileRepo domainrepo.ProfileRepository
	apiKeyCase  *usecases.ApiKeyUsecase
}

func (r apiKeyAdminRuntimeImpl) FindProfile(ctx context.Context, username string) (*entities.Profile, error) {
	return r.profileRepo.FindByUsername(ctx, username)
}

func (r apiKeyAdminRuntimeImpl) CreateApiKey(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	return r.apiKeyCase.CreateApiKey(ctx, userID, input)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func prepareRuntime(ctx context.Context, cfg *config.Config) (apiKeyAdminRuntime, io.Closer, error) {
	db, err := openAdminDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}

	sqlDB, err := openAdminSQLDB(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}

	apiKeyUsecase := usecases.NewApiKeyUsecase(
		repositories.NewApiKeyRepository(db),
		repositories.NewUnitOfWork(db),
		cfg.RateLimit.DefaultKeyLimit,
	)
	return apiKeyAdminRuntimeImpl{
		profileRepo: repositories.NewProfileRepository(db),
		apiKeyCase:  apiKeyUsecase,
	}, sqlDB, nil
}

func defaultApiKeyAdminDeps() apiKeyAdminDeps {
	return apiKeyAdminDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		now:     time.Now,
		out:     os.Stdout,
	}
}

func resolveApiKeyName(input string, now time.Time) string {
	if strings.TrimSpace(input) != "" {
		return input
	}
	return fmt.Sprintf("cli-%s", now.UTC().Format("20060102-150405"))
}

func resolveOwner(ctx context.Context, runtime apiKeyAdminRuntime, userID, username string) (uuid.UUID, error) {
	switch {
	case userID != "" && username != "":
		return uuid.Nil, fmt.Errorf("use either --user-id or --username, not both")
	case userID != "":
		id, err := uuid.Parse(userID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid --user-id: %w", err)
		}
		return id, nil
	case username != "":
		profile, err := runtime.FindProfile(ctx, username)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to load profile %q: %w", username, err)
		}
		return profile.ID, nil
	default:
		return uuid.Nil, fmt.Errorf("--user-id or --username is required")
	}
}

func runApiKeyAdmin(args []string, deps apiKeyAdminDeps) error {
	def := defaultApiKeyAdminDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("apikey-admin", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "owner user UUID")
	usernameFlag := fs.String("username", "", "owner username, resolved through profiles")
	nameFlag := fs.String("name", "", "api key display name (optional)")
	descriptionFlag := fs.String("description", "", "api key description (optional)")
	permissionsFlag := fs.String("permissions", entities.DefaultApiKeyPermissions, "read or read,write")
	rateLimitFlag := fs.Int("rate-limit", 0, "request quota, 0 selects the configured default")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userIDFlag == "" && *usernameFlag == "" {
		return fmt.Errorf("--user-id or --username is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx := context.Background()
	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(ctx, cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	userID, err := resolveOwner(ctx, runtime, *userIDFlag, *usernameFlag)
	if err != nil {
		return err
	}

	input := &entities.CreateApiKeyInput{
		Name:        resolveApiKeyName(*nameFlag, deps.now()),
		Permissions: *permissionsFlag,
	}
	if *descriptionFlag != "" {
		input.Description = descriptionFlag
	}
	if *rateLimitFlag != 0 {
		input.RateLimit = rateLimitFlag
	}

	resp, err := runtime.CreateApiKey(ctx, userID, input)
	if err != nil {
		return fmt.Errorf("failed creating api key: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created API key and stored in DB")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", userID.String())
	_, _ = fmt.Fprintf(deps.out, "api_key_id=%s\n", resp.ApiKey.ID.String())
	_, _ = fmt.Fprintf(deps.out, "name=%s\n", resp.ApiKey.Name)
	_, _ = fmt.Fprintf(deps.out, "rate_limit=%d\n", resp.ApiKey.RateLimit)
	_, _ = fmt.Fprintf(deps.out, "key_preview=%s\n", resp.ApiKey.KeyPreview)
	_, _ = fmt.Fprintf(deps.out, "API_KEY=%s\n", resp.Key)
	return nil
}

func main() {
	if err := runApiKeyAdmin(os.Args[1:], defaultApiKeyAdminDeps()); err != nil {
		log.Fatal(err)
	}
}
