package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"write-space.backend/internal/config"
	"write-space.backend/internal/infrastructure/cache"
	"write-space.backend/internal/infrastructure/datasources/postgres"
	"write-space.backend/internal/infrastructure/jobs"
	"write-space.backend/internal/infrastructure/repositories"
	"write-space.backend/internal/interfaces/http/handlers"
	"write-space.backend/internal/interfaces/http/middleware"
	"write-space.backend/internal/usecases"
	"write-space.backend/pkg/jwt"
	"write-space.backend/pkg/logger"
	"write-space.backend/pkg/redis"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	sessionTokenTTL   = time.Hour
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis only backs the tag cache, so the API keeps serving without it
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(ctx, "Redis unavailable, tag cache disabled", zap.Error(err))
	} else {
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	if cfg.RateLimit.Monthly() {
		quotaJob := jobs.NewQuotaResetJob(repositories.NewApiKeyRepository(db))
		go func() {
			if err := quotaJob.Start(ctx); err != nil {
				logger.Error(ctx, "Quota reset job failed", zap.Error(err))
			}
		}()
	}

	r := newRouter(cfg, db)
	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info(ctx, "Write-Space API starting",
		zap.String("port", cfg.Server.Port),
		zap.String("window", cfg.RateLimit.Window),
	)
	return serve(ctx, srv)
}

// serve runs srv until it fails or ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- runServer(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newRouter wires repositories, usecases and handlers onto a gin engine
func newRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	postRepo := repositories.NewPostRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	uow := repositories.NewUnitOfWork(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, sessionTokenTTL)

	gateUsecase := usecases.NewGateUsecase(apiKeyRepo, usecases.NewRetryPolicy(cfg.RateLimit))
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, uow, cfg.RateLimit.DefaultKeyLimit)
	contentUsecase := usecases.NewContentUsecase(postRepo, profileRepo, cache.NewTagCache(cfg.Redis.TagsTTL))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	applyCORSMiddleware(r)

	systemHandler := handlers.NewSystemHandler(handlers.PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))
	apiGate := middleware.APIGateMiddleware(gateUsecase)
	registerSystemRoutes(r, systemHandler, apiGate)
	registerAPIRoutes(r, cfg.Server, routeDeps{
		postHandler:   handlers.NewPostHandler(contentUsecase),
		tagHandler:    handlers.NewTagHandler(contentUsecase),
		userHandler:   handlers.NewUserHandler(contentUsecase),
		apiKeyHandler: handlers.NewApiKeyHandler(apiKeyUsecase),
		apiGate:       apiGate,
		sessionAuth:   middleware.AuthMiddleware(jwtService),
	})
	return r
}
