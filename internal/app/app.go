// Package app wires configuration, storage, messaging, and HTTP transport
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sri-narendra/Tasks/internal/auth"
	"github.com/sri-narendra/Tasks/internal/config"
	"github.com/sri-narendra/Tasks/internal/event"
	handler "github.com/sri-narendra/Tasks/internal/handler/http"
	"github.com/sri-narendra/Tasks/internal/rate"
	"github.com/sri-narendra/Tasks/internal/repository/postgres"
	"github.com/sri-narendra/Tasks/internal/service"
	"github.com/sri-narendra/Tasks/migrations"
	"github.com/sri-narendra/Tasks/pkg/database"
	"github.com/sri-narendra/Tasks/pkg/health"
	pkgkafka "github.com/sri-narendra/Tasks/pkg/kafka"
	"github.com/sri-narendra/Tasks/pkg/middleware"
	"github.com/sri-narendra/Tasks/pkg/tracing"
)

const serviceName = "taskboard-api"

// App holds the assembled server and the resources it owns.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *pkgkafka.Producer
	stopTracing func(context.Context) error
}

// New builds the application: connects to its backends, runs migrations, and
// assembles the HTTP stack. On error all already-opened resources are closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		DSN:      cfg.PostgresDSN,
		MaxConns: cfg.PostgresMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redisClient = redisClient

	a.producer = pkgkafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	if cfg.TracingEnabled {
		stop, err := tracing.Init(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.stopTracing = stop
	}

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	boardRepo := postgres.NewBoardRepository(pool)
	listRepo := postgres.NewListRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	throttle := rate.NewLoginLimiter(redisClient, rate.Config{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow,
	})
	events := event.NewProducer(a.producer, logger)

	authSvc := service.NewAuthService(userRepo, tokenRepo, jwtManager, throttle, events, logger, cfg.RefreshTTL)
	boardSvc := service.NewBoardService(boardRepo, listRepo, taskRepo, attachmentRepo, logger)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	checker.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	router := handler.NewRouter(handler.RouterConfig{
		Auth:       handler.NewAuthHandler(authSvc, logger, cfg.IsProduction()),
		Board:      handler.NewBoardHandler(boardSvc, logger),
		List:       handler.NewListHandler(boardSvc, logger),
		Task:       handler.NewTaskHandler(boardSvc, logger),
		Attachment: handler.NewAttachmentHandler(boardSvc, logger),
		Admin:      handler.NewAdminHandler(authSvc, logger),
		Health:     checker,
		Logger:     logger,
		Validate: func(token string) (*middleware.Claims, error) {
			claims, err := jwtManager.VerifyAccessToken(token)
			if err != nil {
				return nil, err
			}
			return &middleware.Claims{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			}, nil
		},
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			Environment:      cfg.Environment,
		},
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
		ServiceName: serviceName,
		Tracing:     cfg.TracingEnabled,
	})

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return a, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", slog.Duration("timeout", a.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases every backend resource the app owns. Safe to call on a
// partially constructed app.
func (a *App) Close(ctx context.Context) {
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			a.logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close failed", slog.String("error", err.Error()))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("redis close failed", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
