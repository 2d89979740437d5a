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
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-manager-api/api/swagger"
	"github.com/noah-isme/gym-manager-api/internal/handler"
	"github.com/noah-isme/gym-manager-api/internal/middleware"
	"github.com/noah-isme/gym-manager-api/internal/repository"
	"github.com/noah-isme/gym-manager-api/internal/service"
	"github.com/noah-isme/gym-manager-api/pkg/cache"
	"github.com/noah-isme/gym-manager-api/pkg/config"
	"github.com/noah-isme/gym-manager-api/pkg/database"
	"github.com/noah-isme/gym-manager-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-manager-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gym-manager-api/pkg/middleware/requestid"
	"github.com/noah-isme/gym-manager-api/pkg/storage"
)

// @title Gym Manager API
// @version 1.0.0
// @description Student roster, shift capacity, monthly billing and finance views for a small gym.
// @BasePath /api/v1
// @schemes http

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

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	db := connectDatabase(ctx, cfg, logr)
	if db != nil {
		defer db.Close()
	}

	snapshotCache, closeCache := openSnapshotCache(ctx, cfg, logr)
	defer closeCache()

	stateCfg := service.GymStateConfig{
		Clock:   service.NewClock(cfg.Gym.Location(), nil),
		Cache:   snapshotCache,
		Metrics: metrics,
		Logger:  logr,
		Seed: service.SeedOptions{
			GymName:       cfg.Gym.Name,
			MaxCapacity:   cfg.Gym.MaxCapacity,
			DefaultAmount: decimal.NewFromInt(cfg.Gym.DefaultAmount),
			DemoStudents:  cfg.Gym.SeedDemo,
		},
	}

	var dispatcher *service.PersistenceDispatcher
	if db != nil {
		gateway := repository.NewPostgresGateway(db, logr)
		stateCfg.Loader = gateway
		if cfg.Persistence.Enabled {
			dispatcher = service.NewPersistenceDispatcher(gateway, cfg.Persistence, metrics, logr)
			dispatcher.Start(ctx)
			stateCfg.Writer = dispatcher
		}
	}

	state := service.NewGymStateService(stateCfg)
	go func() {
		source := state.Load(ctx)
		logr.Info("state ready", zap.String("source", source))
	}()

	var scheduler *service.FeeScheduler
	if cfg.Scheduler.Enabled {
		scheduler = service.NewFeeScheduler(state, cfg.Scheduler.Interval, logr)
		scheduler.Start(ctx)
	}

	dashboard := service.NewDashboardService(state, logr)
	reports := newReportService(cfg, state, dashboard, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, state.Ready, handler.Handlers{
		Students:  handler.NewStudentHandler(state, service.NewMessageService(state)),
		Billing:   handler.NewBillingHandler(state),
		Ledger:    handler.NewLedgerHandler(state),
		Settings:  handler.NewSettingsHandler(state),
		Dashboard: handler.NewDashboardHandler(dashboard),
		Reports:   handler.NewReportHandler(reports),
		Metrics:   handler.NewMetricsHandler(metrics, state.Ready),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("could not stop server gracefully", zap.Error(err))
	}
	scheduler.Stop()
	if dispatcher != nil {
		dispatcher.Stop()
	}
	logr.Info("shutdown complete")
}

// connectDatabase returns nil when the store is unreachable; the state then
// runs from the local cache or seed data.
func connectDatabase(ctx context.Context, cfg *config.Config, logr *zap.Logger) *sqlx.DB {
	if cfg.Database.Host == "" {
		logr.Warn("database not configured, running without remote persistence")
		return nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Warn("database unavailable, running without remote persistence", zap.Error(err))
		return nil
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Error("migrations failed", zap.Error(err))
			_ = db.Close()
			return nil
		}
	}
	return db
}

func openSnapshotCache(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.SnapshotCache, func()) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
			return nil, func() {}
		}
		return repository.NewRedisSnapshotCache(client, cfg.Cache.SnapshotKey), func() { _ = client.Close() }
	case config.CacheDriverSQLite:
		db, err := cache.NewSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			logr.Warn("sqlite cache unavailable", zap.Error(err))
			return nil, func() {}
		}
		store, err := repository.NewSQLiteSnapshotCache(ctx, db, cfg.Cache.SnapshotKey)
		if err != nil {
			logr.Warn("sqlite cache unavailable", zap.Error(err))
			_ = db.Close()
			return nil, func() {}
		}
		return store, func() { _ = db.Close() }
	}
	return nil, func() {}
}

func newReportService(cfg *config.Config, state *service.GymStateService, dashboard *service.DashboardService, logr *zap.Logger) *service.ReportService {
	reportCfg := service.ReportConfig{APIPrefix: cfg.APIPrefix, Retention: cfg.Reports.Retention}
	if cfg.Reports.Dir == "" || cfg.Reports.SigningSecret == "" {
		logr.Info("report archive disabled")
		return service.NewReportService(state, dashboard, nil, nil, reportCfg, logr)
	}
	store, err := storage.NewDiskStore(cfg.Reports.Dir)
	if err != nil {
		logr.Warn("report archive disabled", zap.Error(err))
		return service.NewReportService(state, dashboard, nil, nil, reportCfg, logr)
	}
	signer := storage.NewLinkSigner(cfg.Reports.SigningSecret, cfg.Reports.LinkTTL)
	return service.NewReportService(state, dashboard, store, signer, reportCfg, logr)
}
