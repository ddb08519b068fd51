package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cosmetics-dashboard/internal/config"
	"cosmetics-dashboard/internal/dataset"
	"cosmetics-dashboard/internal/observability"
	"cosmetics-dashboard/internal/server"
	"cosmetics-dashboard/internal/services"
	"cosmetics-dashboard/internal/ui/templates"
)

func main() {
	// Missing .env is fine, the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	cache := dataset.NewTableLRU(cfg.Upload.CacheEntries, cfg.Upload.CacheTTL)
	store := dataset.NewStore(cache, logger)
	dashboard := services.NewDashboard(store, logger)

	if cfg.Upload.SeedFile != "" {
		seedTable(dashboard, cfg.Upload.SeedFile, logger)
	}

	srv := server.New(cfg, logger, dashboard, handleDashboardPage(logger))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	graceful := server.NewGracefulServer(httpServer, logger, cfg.Server.ShutdownTimeout)
	if err := graceful.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// seedTable preloads a CSV dataset at boot so the dashboard is populated
// before the first upload. A bad seed file is logged, not fatal.
func seedTable(dashboard *services.Dashboard, path string, logger *slog.Logger) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read seed file", "path", path, "error", err)
		return
	}
	summary, err := dashboard.Upload(raw)
	if err != nil {
		logger.Warn("failed to load seed file", "path", path, "error", err)
		return
	}
	logger.Info("seed dataset loaded", "path", path, "records", summary.Records)
}

func handleDashboardPage(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Dashboard().Render(ctx, w); err != nil {
			logger.Error("failed to render dashboard page", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
