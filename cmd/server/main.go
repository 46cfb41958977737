package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/velinov/fintrack/internal/adapter/http"
	"github.com/velinov/fintrack/internal/adapter/http/handler"
	"github.com/velinov/fintrack/internal/adapter/http/middleware"
	postgresRepo "github.com/velinov/fintrack/internal/adapter/repository/postgres"
	redisRepo "github.com/velinov/fintrack/internal/adapter/repository/redis"
	"github.com/velinov/fintrack/internal/infrastructure/auth"
	"github.com/velinov/fintrack/internal/infrastructure/config"
	"github.com/velinov/fintrack/internal/infrastructure/extraction"
	"github.com/velinov/fintrack/internal/infrastructure/metrics"
	"github.com/velinov/fintrack/internal/infrastructure/postgres"
	"github.com/velinov/fintrack/internal/infrastructure/redis"
	"github.com/velinov/fintrack/internal/infrastructure/storage"
	"github.com/velinov/fintrack/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_FORMAT") != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	historyRepo := postgresRepo.NewHistoryRepository(pool)
	recurringRepo := postgresRepo.NewRecurringRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	rateLimitStore := redisRepo.NewRateLimitStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, transactionRepo, historyRepo, idGen)
	materializerUC := usecase.NewMaterializerUseCase(txManager, accountRepo, transactionRepo)
	materializerUC.SetRetrier(postgresRepo.NewRetrier())
	accountUC := usecase.NewAccountUseCase(accountRepo, materializerUC, idGen)
	transferUC := usecase.NewTransferUseCase(accountRepo, ledgerUC)
	recurringUC := usecase.NewRecurringUseCase(recurringRepo, transactionRepo, ledgerUC)
	auditUC := usecase.NewAuditUseCase(txManager, accountRepo, ledgerRepo)
	analyticsUC := usecase.NewAnalyticsUseCase(ledgerRepo, materializerUC, cache)

	// Receipt extraction is optional: without an API key uploads are refused.
	var extractionUC *usecase.ExtractionUseCase
	if cfg.GeminiAPIKey != "" {
		extractor, err := extraction.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize receipt extractor")
		}

		var store usecase.ReceiptStore
		if cfg.GCSBucket != "" {
			gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize receipt storage")
			}
			defer gcs.Close()
			store = gcs
		}

		extractionUC = usecase.NewExtractionUseCase(extractor, store, ledgerUC)
		log.Info().Str("model", cfg.GeminiModel).Msg("receipt extraction enabled")
	}

	// Metrics and middleware
	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	loggingMW := middleware.NewLoggingMiddleware(log.Logger)
	metricsMW := middleware.NewMetricsMiddleware(m)
	rateLimitMW := middleware.NewRateLimitMiddleware(rateLimitStore, cfg.RateLimitPerMinute, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, materializerUC, m),
		TransferHandler:    handler.NewTransferHandler(transferUC, m),
		RecurringHandler:   handler.NewRecurringHandler(recurringUC, m),
		LedgerHandler:      handler.NewLedgerHandler(materializerUC, auditUC, m),
		AnalyticsHandler:   handler.NewAnalyticsHandler(analyticsUC),
		ExtractionHandler:  handler.NewExtractionHandler(extractionUC, m),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		JWTManager:         jwtManager,
		LoggingWrapper:     loggingMW.Wrap,
		MetricsWrapper:     metricsMW.Wrap,
		RateLimitWrapper:   rateLimitMW.Wrap,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
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
