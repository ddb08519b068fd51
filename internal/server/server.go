package server

import (
	"log/slog"
	"net/http"

	"cosmetics-dashboard/internal/config"
	"cosmetics-dashboard/internal/handlers"
	"cosmetics-dashboard/internal/middleware"
	"cosmetics-dashboard/internal/services"
)

// Server wires the dashboard services to their HTTP surface.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	dashboard *services.Dashboard
	api       *handlers.APIHandlers
	sse       *handlers.SSEHandlers
	homepage  http.HandlerFunc
}

func New(cfg *config.Config, logger *slog.Logger, dashboard *services.Dashboard, homepage http.HandlerFunc) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		dashboard: dashboard,
		api:       handlers.NewAPIHandlers(dashboard, cfg.Upload.MaxBytes, logger),
		sse:       handlers.NewSSEHandlers(dashboard, logger),
		homepage:  homepage,
	}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.homepage)

	mux.HandleFunc("POST /api/upload", s.api.HandleUpload)
	mux.HandleFunc("GET /api/filters", s.api.HandleFilters)
	mux.HandleFunc("GET /api/kpis", s.api.HandleKPIs)
	mux.HandleFunc("GET /api/monthly-sales", s.api.HandleMonthlySales)
	mux.HandleFunc("GET /api/country-sales", s.api.HandleCountrySales)
	mux.HandleFunc("GET /api/person-performance", s.api.HandlePersonPerformance)
	mux.HandleFunc("GET /api/top-products", s.api.HandleTopProducts)
	mux.HandleFunc("GET /api/dashboard", s.api.HandleDashboard)
	mux.HandleFunc("GET /api/records", s.api.HandleRecords)
	mux.HandleFunc("GET /api/export/monthly.png", s.api.HandleExportMonthly)
	mux.HandleFunc("GET /api/export/countries.png", s.api.HandleExportCountries)
	mux.HandleFunc("GET /health", s.api.HandleHealth)
	mux.HandleFunc("GET /admin/stats", s.api.HandleStats)

	mux.HandleFunc("GET /sse/filters", s.sse.HandleFilters)
	mux.HandleFunc("GET /sse/kpis", s.sse.HandleKPIs)
	mux.HandleFunc("GET /sse/monthly-sales", s.sse.HandleMonthlySales)
	mux.HandleFunc("GET /sse/country-sales", s.sse.HandleCountrySales)
	mux.HandleFunc("GET /sse/person-performance", s.sse.HandlePersonPerformance)
	mux.HandleFunc("GET /sse/top-products", s.sse.HandleTopProducts)
	mux.HandleFunc("GET /sse/records", s.sse.HandleRecords)
	mux.HandleFunc("GET /sse/refresh-all", s.sse.HandleRefreshAll)

	rateLimiter := middleware.NewRateLimiter(s.cfg.Security)

	chain := middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(s.cfg.Security),
		middleware.TrustedProxy(s.cfg.Security),
		middleware.RateLimit(rateLimiter, s.logger),
	)
	return chain(mux)
}
