package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/outbox"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "storefront")
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	outboxRepo := repository.NewOutboxRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)

	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("redis unreachable, product reads will fall through to postgres")
		}
		productRepo = repository.NewCachedProductRepository(productRepo, rdb, cfg.Cache.TTL, logger)
	}

	if err := seedCatalog(ctx, cfg, productRepo, logger); err != nil {
		return err
	}

	var wg sync.WaitGroup
	if cfg.Events.RabbitURL != "" {
		publisher, err := outbox.Dial(cfg.Events.RabbitURL, cfg.Events.Exchange)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		defer publisher.Close()

		relay := outbox.NewRelay(outboxRepo, publisher, cfg.Events.PollInterval, cfg.Events.BatchSize, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
	} else {
		logger.Info().Msg("RABBIT_URL not set, order events stay in the outbox table")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Services
	authService := service.NewAuthService(userRepo, tokens, logger)
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, outboxRepo, cfg.Checkout.Timeout, logger)
	orderService := service.NewOrderService(orderRepo, logger)

	mux := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
	}, tokens, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		cancel()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		cancel()
		wg.Wait()
		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCatalog upserts CATALOG_SEED_PATH, reading from S3 first when enabled.
func seedCatalog(ctx context.Context, cfg *config.Config, products repository.ProductRepository, logger zerolog.Logger) error {
	if cfg.Catalog.SeedPath == "" {
		return nil
	}

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
		} else {
			s3Loader = l
		}
	}

	loader := catalog.NewFallbackLoader(s3Loader, catalog.NewFileLoader(logger), cfg.S3.Prefix, logger)
	if _, err := catalog.NewSeeder(loader, products, logger).Seed(ctx, cfg.Catalog.SeedPath); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}
