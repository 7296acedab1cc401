package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/clinic-kit/medapp/internal/api/http"
	"github.com/clinic-kit/medapp/internal/api/http/handlers"
	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/config"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/observability"
	"github.com/clinic-kit/medapp/internal/persistence"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/repository/memory"
	"github.com/clinic-kit/medapp/internal/service"
	"github.com/clinic-kit/medapp/internal/storage"
	"github.com/clinic-kit/medapp/internal/worker"
)

// bodyLimitSlack leaves room for multipart framing around an upload.
const bodyLimitSlack = 1 << 20

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

	var store repository.Store
	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memory.NewStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	sessions := auth.NewStatelessSessionStore()
	if redis.Configured() {
		sessions = auth.NewRedisSessionStore(redis.Client)
	}

	blobs, err := storage.NewLocalStore(cfg.Storage.MediaRoot)
	if err != nil {
		logger.Fatal("failed to prepare media root", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	deps := service.Dependencies{
		Store:      store,
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	authService := service.NewAuthService(*cfg, deps, sessions)
	staffService := service.NewStaffService(*cfg, deps)
	patientService := service.NewPatientService(deps)
	fileService := service.NewPatientFileService(*cfg, deps)

	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Fatal("failed to create bootstrap admin", zap.Error(err))
	}

	checks := map[string]handlers.HealthCheck{}
	if pg.Configured() {
		checks["postgres"] = pg.Ping
	}
	if redis.Configured() {
		checks["redis"] = redis.Ping
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + bodyLimitSlack,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(staffService),
		Patients:       handlers.NewPatientHandler(patientService),
		Files:          handlers.NewFileHandler(fileService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
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
