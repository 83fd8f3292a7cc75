package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/subscription-service/internal/api/http"
	"github.com/spec-kit/subscription-service/internal/api/http/handlers"
	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/observability"
	"github.com/spec-kit/subscription-service/internal/persistence"
	"github.com/spec-kit/subscription-service/internal/repository"
	"github.com/spec-kit/subscription-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("postgres is required; set POSTGRES_DSN")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, redis, logger, cfg.Redis).RegisterHandlers()

	userRepo := repository.NewUserRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	subscriptionService := service.NewSubscriptionService(service.SubscriptionDependencies{
		UserRepo:         userRepo,
		SubscriptionRepo: subscriptionRepo,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:         handlers.NewUsersHandler(userService),
		Subscriptions: handlers.NewSubscriptionsHandler(subscriptionService),
		Metrics:       metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
