package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetDefaultStructuredLogger("foodgram-api", version, cfg.LogLevel)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	// Postgres schemas come from cmd/migrate.
	if cfg.DBDriver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Token revocation and rate limiting are optional.
		slog.Warn("redis unavailable, continuing without it", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		blocklist service.TokenBlocklist
		limiter   *middleware.RateLimiter
	)
	if redisClient != nil {
		blocklist = service.NewRedisBlocklist(redisClient)
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit)
	}

	images := service.NewImageService(store)
	svc := api.Services{
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, blocklist),
		Users:       service.NewUserService(db, store),
		Recipes:     service.NewRecipeService(db, images),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	routerCfg := router.Config{
		CORSOrigins: cfg.CORSOrigins,
		MediaURL:    cfg.MediaURL,
		Registry:    registry,
		Health: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
	}
	if cfg.StorageBackend == "local" {
		routerCfg.MediaRoot = cfg.MediaRoot
	}
	if cfg.RequestRate > 0 {
		routerCfg.Throttle = rate.NewLimiter(rate.Limit(cfg.RequestRate), cfg.RequestBurst)
	}

	engine := router.SetupRouter(svc, api.Options{PageSize: cfg.PageSize, RecipeLimiter: limiter}, routerCfg)
	srv := server.New(cfg.Addr(), engine)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}
