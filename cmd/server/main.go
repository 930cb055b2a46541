package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/okanin/payflow/internal/adapter/http"
	"github.com/okanin/payflow/internal/adapter/http/handler"
	"github.com/okanin/payflow/internal/adapter/http/middleware"
	postgresRepo "github.com/okanin/payflow/internal/adapter/repository/postgres"
	redisRepo "github.com/okanin/payflow/internal/adapter/repository/redis"
	"github.com/okanin/payflow/internal/infrastructure/auth"
	"github.com/okanin/payflow/internal/infrastructure/config"
	"github.com/okanin/payflow/internal/infrastructure/logger"
	"github.com/okanin/payflow/internal/infrastructure/metrics"
	"github.com/okanin/payflow/internal/infrastructure/postgres"
	"github.com/okanin/payflow/internal/infrastructure/redis"
	"github.com/okanin/payflow/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	initialBalance, err := decimal.NewFromString(cfg.InitialBalance)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid INITIAL_BALANCE")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// The idempotency store is pluggable: Postgres by default, Redis
	// when configured.
	var idempotencyRepo usecase.IdempotencyRepository = postgresRepo.NewIdempotencyRepository(pool)

	var redisClient *goredis.Client

	if cfg.IdempotencyBackend == "redis" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()

		idempotencyRepo = redisRepo.NewIdempotencyRepository(client)
		redisClient = client
		log.Info().Msg("connected to redis")
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, initialBalance)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, idGen, retrier)
	coordinator := usecase.NewCoordinator(idempotencyRepo, cfg.IdempotencyTTL, log)

	appMetrics := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(accountUC, jwtManager, appMetrics)
	transferHandler := handler.NewTransferHandler(transferUC, accountUC, appMetrics)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:     authHandler,
		TransferHandler: transferHandler,
		HealthHandler:   healthHandler,
		JWTManager:      jwtManager,
		Coordinator:     coordinator,
		Metrics:         appMetrics,
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logging:         middleware.NewLoggingMiddleware(log),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Periodic sweep of expired idempotency records
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				count, err := coordinator.SweepExpired(sweepCtx)
				if err != nil {
					log.Warn().Err(err).Msg("idempotency sweep failed")
					continue
				}

				if count > 0 {
					appMetrics.IdempotencySwept.Add(float64(count))
					log.Info().Int64("count", count).Msg("swept expired idempotency records")
				}
			}
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
