package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmarzotto/asta/internal/adapters/api"
	"github.com/dmarzotto/asta/internal/adapters/cache"
	"github.com/dmarzotto/asta/internal/adapters/database"
	"github.com/dmarzotto/asta/internal/config"
	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/internal/domain/users"
	"github.com/dmarzotto/asta/pkg/auth"
	pkgdb "github.com/dmarzotto/asta/pkg/database"
	pkgevents "github.com/dmarzotto/asta/pkg/events"
)

const (
	recentlyViewedLimit = 10
	recentlyViewedTTL   = 24 * time.Hour
	shutdownTimeout     = 10 * time.Second
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load environment variables (local overrides .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Postgres Connection Pool
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to parse database config", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("Unable to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if pingErr := pool.Ping(ctx); pingErr != nil {
		logger.Error("Unable to ping database", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Postgres Connected")

	// 2. Connect to RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()
	logger.Info("RabbitMQ Connected")

	publisher, err := pkgevents.NewRabbitMQPublisher(amqpConn)
	if err != nil {
		logger.Error("Failed to create RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// 3. Redis is optional: without it the recently-viewed feed is disabled
	var recent *cache.RecentlyViewed
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed, recently viewed feed disabled", "error", err)
		} else {
			logger.Info("Redis Connected")
			recent = cache.NewRecentlyViewed(rdb, recentlyViewedLimit, recentlyViewedTTL)
		}
	}

	signer, err := auth.NewSigner([]byte(cfg.JWTSecret), "asta", cfg.AccessTokenTTL)
	if err != nil {
		logger.Error("Failed to create token signer", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories (Infrastructure Layer)
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	userRepo := database.NewPostgresUserRepository(pool)
	itemRepo := database.NewPostgresItemRepository(pool)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)

	// 5. Initialize Services (Domain Layer)
	userService := users.NewService(userRepo, outboxRepo, signer, txManager)
	itemService := items.NewService(itemRepo)
	auctionService := auctions.NewService(txManager, auctionRepo, bidRepo, itemRepo, outboxRepo)

	// 6. Initialize HTTP API
	authHandler := api.NewAuthHandler(userService, logger)
	itemHandler := api.NewItemHandler(itemService, logger)
	auctionHandler := api.NewAuctionHandler(auctionService, recent, logger)
	e := api.NewRouter(authHandler, itemHandler, auctionHandler, signer, logger)

	// 7. Start Outbox Relay alongside the server
	relay := pkgevents.NewOutboxRelay(
		outboxRepo,
		publisher,
		txManager,
		cfg.RelayBatchSize,
		cfg.RelayInterval,
		pkgevents.ExchangeName,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP API", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting Outbox Relay...")
		return relay.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
