package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fleetdesk/fleetdesk/internal/agents"
	"github.com/fleetdesk/fleetdesk/internal/app"
	"github.com/fleetdesk/fleetdesk/internal/auth"
	"github.com/fleetdesk/fleetdesk/internal/billing"
	"github.com/fleetdesk/fleetdesk/internal/catalog/discounts"
	"github.com/fleetdesk/fleetdesk/internal/catalog/services"
	"github.com/fleetdesk/fleetdesk/internal/chat"
	"github.com/fleetdesk/fleetdesk/internal/dashboard"
	"github.com/fleetdesk/fleetdesk/internal/fleet/drivers"
	fleetjobs "github.com/fleetdesk/fleetdesk/internal/fleet/jobs"
	"github.com/fleetdesk/fleetdesk/internal/fleet/vehicles"
	"github.com/fleetdesk/fleetdesk/internal/observability"
	"github.com/fleetdesk/fleetdesk/internal/platform/cache"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/view"
	"github.com/fleetdesk/fleetdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := db.Migrate(ctx, dbpool); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "fleetdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	servicesManager := services.NewManager(services.NewRepository(dbpool))
	servicesHandler := services.NewHandler(logger, servicesManager, templates, csrfManager, sessionManager)

	discountsManager := discounts.NewManager(discounts.NewRepository(dbpool))
	discountsHandler := discounts.NewHandler(logger, discountsManager, templates, csrfManager, sessionManager)

	agentsManager := agents.NewManager(agents.NewRepository(dbpool))
	agentsHandler := agents.NewHandler(logger, agentsManager, templates, csrfManager, sessionManager)

	driversManager := drivers.NewManager(drivers.NewRepository(dbpool))
	driversHandler := drivers.NewHandler(logger, driversManager, templates, csrfManager, sessionManager)

	vehiclesManager := vehicles.NewManager(vehicles.NewRepository(dbpool))
	vehiclesHandler := vehicles.NewHandler(logger, vehiclesManager, templates, csrfManager, sessionManager)

	jobsManager := fleetjobs.NewManager(fleetjobs.NewRepository(dbpool))
	jobsHandler := fleetjobs.NewHandler(logger, jobsManager, templates, csrfManager, sessionManager)

	billingEngine := billing.NewEngine(logger, billing.NewRepository(dbpool))
	billingHandler := billing.NewHandler(logger, billingEngine, templates, csrfManager, sessionManager)

	dashboardCache := cache.NewJSONCache(redisClient, cfg.DashboardCacheTTL)
	dashboardManager := dashboard.NewManager(logger, dashboard.NewRepository(dbpool), dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardManager, templates, csrfManager, sessionManager)

	chatResponder := chat.NewResponder(logger, chat.NewStore(dbpool))
	chatHandler := chat.NewHandler(logger, chatResponder)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHealthHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		ServicesHandler:  servicesHandler,
		DiscountsHandler: discountsHandler,
		AgentsHandler:    agentsHandler,
		DriversHandler:   driversHandler,
		VehiclesHandler:  vehiclesHandler,
		JobsHandler:      jobsHandler,
		BillingHandler:   billingHandler,
		ChatHandler:      chatHandler,
		JobHealthHandler: jobHealthHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
