package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	_ "modernc.org/sqlite"

	"github.com/settatam/statusflow/internal/adapter/action"
	"github.com/settatam/statusflow/internal/adapter/fsm"
	"github.com/settatam/statusflow/internal/adapter/otel"
	riveradapter "github.com/settatam/statusflow/internal/adapter/river"
	"github.com/settatam/statusflow/internal/adapter/sqlite"
	"github.com/settatam/statusflow/internal/adapter/webhook"
	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/config"
	"github.com/settatam/statusflow/internal/domain"

	handler "github.com/settatam/statusflow/internal/adapter/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Database ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// --- Async jobs ---
	riverClient, err := riveradapter.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error("river stop", "error", err)
		}
	}()

	// --- Adapters (out) ---
	statusRepo := otel.NewTracingStatusRepository(sqlite.NewStatusRepository(db))
	transitionRepo := sqlite.NewTransitionRepository(db)
	automationRepo := sqlite.NewAutomationRepository(db)
	entityRepo := sqlite.NewEntityRepository(db)

	stores := domain.NewStoreRegistry()
	for _, entityType := range domain.EntityTypes {
		stores.Register(entityType, entityRepo.Store(entityType))
	}

	publisher := otel.NewTracingPublisher(riveradapter.NewPublisher(riverClient))
	notifier := riveradapter.NewNotifier(riverClient)
	webhooks := webhook.NewCaller(cfg.WebhookTimeout)
	customActions := action.NewRegistry()

	// --- Application ---
	dispatcher := app.NewDispatcher(automationRepo, notifier, webhooks, customActions, logger, cfg.AutomationTimeout)
	statusSvc := app.NewStatusService(statusRepo, stores)
	graphSvc := app.NewGraphService(statusRepo, transitionRepo)
	automationSvc := app.NewAutomationService(statusRepo, automationRepo)
	entitySvc := app.NewEntityService(entityRepo, statusRepo)
	workflowSvc := app.NewWorkflowService(statusRepo, transitionRepo, stores, fsm.New(), dispatcher, publisher, logger)
	actions := app.NewActions(workflowSvc, statusRepo, stores)
	seeder := app.NewSeeder(statusSvc, graphSvc)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("statusflow", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("statusflow", "0.1.0"))
	handler.Register(api, handler.Services{
		Statuses:    statusSvc,
		Graph:       graphSvc,
		Automations: automationSvc,
		Entities:    entitySvc,
		Workflow:    workflowSvc,
		Actions:     actions,
		Seeder:      seeder,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("statusflow listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	logger.Info("stopped")
	return nil
}
