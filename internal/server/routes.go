package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studiolinks/internal/config"
	"studiolinks/internal/directory"
	"studiolinks/internal/handlers"
	"studiolinks/internal/handlers/api"
	"studiolinks/internal/middleware"
	"studiolinks/internal/redirect"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(dir *directory.Directory, yamlCfg *config.YAMLConfig) {
	resolver := redirect.NewResolver(dir, s.Cfg.FallbackBaseURL)

	// Initialize middleware
	qrRewrite := middleware.NewQRRewrite(yamlCfg.Rewrite.Exempt)

	// Initialize handlers
	redirectHandler := handlers.NewRedirectHandler(resolver, s.Cfg)
	qrHandler := handlers.NewQRHandler(resolver, s.Cfg, yamlCfg.QR.Palette)
	probeHandler := handlers.NewProbeHandler(dir)
	apiResolveHandler := api.NewResolveHandler(resolver, s.Cfg)

	// /<slug>.png must be rewritten before any route is matched
	s.App.Use(qrRewrite.Handle)

	// Operational routes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON API
	s.App.Get("/api/resolve/:slug", apiResolveHandler.Resolve)

	// QR codes
	s.App.Get("/qr/:slug", qrHandler.QR)

	// Redirect route - must be last (catch-all for slugs)
	s.App.Get("/:slug", redirectHandler.Redirect)
}
