package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/report-portal/internal/api/http"
	"github.com/spec-kit/report-portal/internal/api/http/handlers"
	"github.com/spec-kit/report-portal/internal/auth"
	"github.com/spec-kit/report-portal/internal/config"
	"github.com/spec-kit/report-portal/internal/events"
	"github.com/spec-kit/report-portal/internal/observability"
	"github.com/spec-kit/report-portal/internal/persistence"
	"github.com/spec-kit/report-portal/internal/repository"
	"github.com/spec-kit/report-portal/internal/service"
	"github.com/spec-kit/report-portal/internal/storage"
	"github.com/spec-kit/report-portal/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	var (
		userRepo   repository.UserRepository
		reportRepo repository.ReportRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return err
			}
		}
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		reportRepo = repository.NewReportRepository(pg.PoolHandle())
	} else {
		userRepo = repository.NewInMemoryUserRepository()
		reportRepo = repository.NewInMemoryReportRepository()
	}

	documents, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	checks := map[string]handlers.Pinger{"storage": documents}
	var forward events.EventHandler
	if cfg.Redis.Enabled() {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		forward = events.NewRedisForwarder(redis, cfg.Redis.EventsChannel, cfg.Redis.PublishTimeout()).Handle
		checks["redis"] = redis
	} else {
		logger.Info("REDIS_ADDR is empty, events stay in process")
	}
	if pg.Enabled() {
		checks["postgres"] = pg
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, forward), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	if err := authService.Bootstrap(ctx, cfg.Auth.BootstrapAccounts); err != nil {
		return err
	}
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		Documents:  documents,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Rules:      cfg.Reports,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Reports.MaxUploadBytes(),
		ErrorHandler: httptransport.NewErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Auth:           handlers.NewAuthHandler(authService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
