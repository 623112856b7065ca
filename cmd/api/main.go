package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/mall-of-cayman/marketplace-service/internal/api/http"
	"github.com/mall-of-cayman/marketplace-service/internal/api/http/handlers"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/events"
	"github.com/mall-of-cayman/marketplace-service/internal/observability"
	"github.com/mall-of-cayman/marketplace-service/internal/persistence"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	"github.com/mall-of-cayman/marketplace-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	pool := pg.PoolHandle()
	shopRepo := repository.NewShopRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	districtRepo := repository.NewDistrictRepository(pool)
	deliveryRepo := repository.NewDeliveryConfigRepository(pool)
	revocationRepo := repository.NewTokenRevocationRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ShopRepo:    shopRepo,
		UserRepo:    userRepo,
		Revocations: revocationRepo,
	})
	shopService := service.NewShopService(service.ShopDependencies{
		ShopRepo:   shopRepo,
		Dispatcher: dispatcher,
	})
	assignmentService := service.NewAssignmentService(*cfg, service.AssignmentDependencies{
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		ShopRepo:       shopRepo,
		Dispatcher:     dispatcher,
	})
	districtService := service.NewDistrictService(districtRepo)
	deliveryService := service.NewDeliveryService(service.DeliveryDependencies{
		ConfigRepo:   deliveryRepo,
		DistrictRepo: districtRepo,
		Dispatcher:   dispatcher,
	})

	resolver := auth.NewResolver(auth.ResolverDependencies{
		Tokens:      authService.TokenManager(),
		ShopRepo:    shopRepo,
		UserRepo:    userRepo,
		Assignments: assignmentRepo,
		Revocations: revocationRepo,
	})
	authMiddleware := auth.NewMiddleware(resolver)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, shopService),
		Shops:          handlers.NewShopsHandler(shopService, authService),
		Managers:       handlers.NewManagersHandler(assignmentService),
		Districts:      handlers.NewDistrictsHandler(districtService),
		Delivery:       handlers.NewDeliveryHandler(deliveryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
