package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erpacceso/api/internal/app"
	"github.com/erpacceso/api/internal/config"
	infrahttp "github.com/erpacceso/api/internal/infra/http"
	"github.com/erpacceso/api/internal/infra/http/handler"
	"github.com/erpacceso/api/internal/infra/postgres"
	"github.com/erpacceso/api/internal/infra/redis"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/logger"
	"github.com/erpacceso/api/pkg/validator"
)

// Version is set by build flags.
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env, "version", Version)

	// ==========================================================================
	// Infrastructure
	// ==========================================================================
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()
	log.Info("database connected")

	var visibilityCache *redis.Cache[[]string]
	healthChecks := map[string]handler.HealthChecker{"database": db}
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(&cfg.Redis, log)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			return 1
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("failed to close redis", "error", err)
			}
		}()

		visibilityCache, err = redis.NewCache[[]string](redisClient, "visibility", 5*time.Minute)
		if err != nil {
			log.Error("failed to build visibility cache", "error", err)
			return 1
		}
		healthChecks["redis"] = redisHealth{redisClient}
		log.Info("redis connected, visibility cache enabled")
	}

	// ==========================================================================
	// Repositories
	// ==========================================================================
	selectionRepo := postgres.NewSelectionSetRepository(db)
	companyRepo := postgres.NewCompanyRepository(db)
	branchRepo := postgres.NewBranchRepository(db)
	branchResRepo := postgres.NewBranchResourceRepository(db)
	companyResRepo := postgres.NewCompanyResourceRepository(db)
	treeRepo := postgres.NewModuleTreeRepository(db)
	globalRepo := postgres.NewGlobalCatalogRepository(db)
	visibilityRepo := postgres.NewVisibilityRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)

	links := app.SelectionLinkRepositories{
		Modules:       postgres.NewModuleLinkRepository(db),
		Levels:        postgres.NewLevelLinkRepository(db),
		Sublevels:     postgres.NewSublevelLinkRepository(db),
		Warehouses:    postgres.NewWarehouseLinkRepository(db),
		CashRegisters: postgres.NewCashRegisterLinkRepository(db),
		ControlPanels: postgres.NewControlPanelLinkRepository(db),
		Sellers:       postgres.NewSellerLinkRepository(db),
	}
	refCounters := []selection.ReferenceCounter{postgres.NewSelectionSetReferenceCounter(db)}

	// ==========================================================================
	// Services
	// ==========================================================================
	selectionSvc := app.NewSelectionService(selectionRepo, companyRepo, branchRepo, branchResRepo, companyResRepo, links, refCounters, log)
	cloneSvc := app.NewCloneService(selectionRepo, companyRepo, branchRepo, branchResRepo, companyResRepo, globalRepo, log)
	globalsSvc := app.NewGlobalsService(selectionRepo, globalRepo, log)
	visibilitySvc := app.NewVisibilityService(visibilityRepo, selectionRepo, visibilityCache, log)
	catalogSvc := app.NewCatalogService(companyRepo, branchRepo, branchResRepo, companyResRepo, treeRepo, globalRepo, log)
	requestSvc := app.NewRequestService(requestRepo, selectionRepo, log)
	templateSvc := app.NewTemplateService(templateRepo, requestRepo, requestSvc, cloneSvc, log)

	// ==========================================================================
	// HTTP server
	// ==========================================================================
	v := validator.New()
	handlers := &handler.Handlers{
		Health:     handler.NewHealthHandler(Version, healthChecks),
		Catalog:    handler.NewCatalogHandler(catalogSvc, log),
		Selection:  handler.NewSelectionHandler(selectionSvc, cloneSvc, visibilitySvc, v, log),
		Globals:    handler.NewGlobalsHandler(globalsSvc, v, log),
		Visibility: handler.NewVisibilityHandler(visibilitySvc, v, log),
		Request:    handler.NewRequestHandler(requestSvc, v, log),
		Template:   handler.NewTemplateHandler(templateSvc, v, log),
	}

	server := infrahttp.NewServer(&cfg.Server, handlers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "error", err)
			return 1
		}
	case sig := <-stop:
		log.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return 1
	}

	log.Info("server stopped")
	return 0
}

// redisHealth adapts the redis client's Ping to the health check interface.
type redisHealth struct {
	client *redis.Client
}

func (r redisHealth) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx)
}
