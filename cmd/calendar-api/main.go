package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dept-calendar-api/api/swagger"
	"github.com/noah-isme/dept-calendar-api/internal/handler"
	"github.com/noah-isme/dept-calendar-api/internal/middleware"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/internal/repository"
	"github.com/noah-isme/dept-calendar-api/internal/service"
	"github.com/noah-isme/dept-calendar-api/pkg/cache"
	"github.com/noah-isme/dept-calendar-api/pkg/config"
	"github.com/noah-isme/dept-calendar-api/pkg/database"
	"github.com/noah-isme/dept-calendar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dept-calendar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dept-calendar-api/pkg/middleware/requestid"
	"github.com/noah-isme/dept-calendar-api/pkg/storage"
)

// @title Department Calendar API
// @version 1.0.0
// @description Shared departmental event calendar with recurrence, conflict detection and import/export
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type snapshotRepository interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	loc := cfg.Calendar.Location()

	files, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Sugar().Fatalw("storage unavailable", "error", err)
	}

	repo, checks, closeRepo, err := openSnapshotRepository(ctx, cfg, files, metrics, logr)
	if err != nil {
		logr.Sugar().Fatalw("snapshot backend unavailable", "backend", cfg.Storage.Backend, "error", err)
	}
	defer closeRepo()

	persistCfg := service.PersisterConfig{
		Key:        cfg.Calendar.StorageKey,
		Backend:    cfg.Storage.Backend,
		Timeout:    cfg.Persist.Timeout,
		Retries:    cfg.Persist.Retries,
		RetryDelay: cfg.Persist.RetryDelay,
	}
	var (
		persister interface {
			Load(ctx context.Context) ([]byte, error)
			Save(ctx context.Context, revision uint64, payload []byte)
		}
		async *service.AsyncPersister
	)
	if cfg.Persist.Async {
		async = service.NewAsyncPersister(repo, persistCfg, metrics, logr)
		// Outlives ctx so Flush can run during shutdown.
		async.Start(context.Background())
		persister = async
	} else {
		persister = service.NewSyncPersister(repo, persistCfg, metrics, logr)
	}

	validate := validator.New()
	expander := service.NewRecurrenceExpander(cfg.Calendar.DefaultCap, cfg.Calendar.MaxCap)
	store := service.NewEventStore(persister, expander, validate, metrics, logr, service.EventStoreConfig{
		DefaultDuration: cfg.Calendar.DefaultDuration,
		HistorySize:     cfg.Calendar.HistorySize,
		Location:        loc,
	})
	restored := store.Load(ctx)
	logr.Sugar().Infow("calendar loaded", "events", restored, "backend", cfg.Storage.Backend, "timezone", loc.String())

	accounts, err := service.ParseAccounts(cfg.Auth.Accounts)
	if err != nil {
		logr.Sugar().Fatalw("invalid editor accounts", "error", err)
	}
	if len(accounts) == 0 {
		logr.Warn("no editor accounts configured; the calendar is read-only")
	}
	authSvc := service.NewAuthService(accounts, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "dept-calendar-api",
	})

	views := service.NewCalendarViewService(store, service.CalendarViewConfig{
		DayStartHour: cfg.Calendar.DayStartHour,
		DayEndHour:   cfg.Calendar.DayEndHour,
		SlotMinutes:  cfg.Calendar.SlotMinutes,
	})
	handlers := handler.Handlers{
		Events:    handler.NewEventHandler(store, service.NewTransferService(store, expander, logr)),
		Calendar:  handler.NewCalendarHandler(views),
		Reminders: handler.NewReminderHandler(service.NewReminderService(store)),
		Assistant: handler.NewAssistantHandler(service.NewAssistantService(store, 0, logr)),
		Auth:      handler.NewAuthHandler(authSvc),
	}

	var backups *service.BackupService
	if cfg.Backup.Enabled {
		backups = service.NewBackupService(store, files, metrics, logr, service.BackupConfig{
			Schedule:  cfg.Backup.Schedule,
			Dir:       cfg.Backup.Dir,
			Retention: cfg.Backup.Retention,
			Location:  loc,
		})
		if err := backups.Start(ctx); err != nil {
			logr.Sugar().Fatalw("backup scheduler failed", "error", err)
		}
		handlers.Backups = handler.NewBackupHandler(backups)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	r.GET("/metrics/summary", ops.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jwt := middleware.JWT(authSvc)
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers, logr, handler.Guards{
		Authenticated: []gin.HandlerFunc{jwt},
		Editor:        []gin.HandlerFunc{jwt, middleware.RequireRoles(models.RoleEditor, models.RoleAdmin)},
		Admin:         []gin.HandlerFunc{jwt, middleware.RequireRoles(models.RoleAdmin)},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("http shutdown incomplete", "error", err)
	}
	if backups != nil {
		backups.Stop()
	}
	if async != nil {
		if err := async.Flush(shutdownCtx); err != nil {
			logr.Sugar().Warnw("pending snapshot not flushed", "error", err)
		}
		async.Stop()
	}
}

// openSnapshotRepository connects the configured backend and returns its
// readiness checks and a close function.
func openSnapshotRepository(ctx context.Context, cfg *config.Config, files *storage.LocalStorage, metrics *service.MetricsService, logr *zap.Logger) (snapshotRepository, map[string]handler.ReadinessCheck, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewMemorySnapshotRepository(), nil, noop, nil
	case config.BackendFile, "":
		return repository.NewFileSnapshotRepository(files), nil, noop, nil
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		checks := map[string]handler.ReadinessCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		return repository.NewRedisSnapshotRepository(client, "dept-calendar", logr), checks, func() { _ = client.Close() }, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		repo := repository.NewPostgresSnapshotRepository(db, metrics)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
		return repo, checks, func() { _ = db.Close() }, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
