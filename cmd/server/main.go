package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/config"
	"studiolinks/internal/jobs"
	"studiolinks/internal/linksource"
	"studiolinks/internal/metrics"
	"studiolinks/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		fatal("failed to load YAML config", err)
	}

	links, err := linksource.Open(ctx, cfg)
	if err != nil {
		fatal("failed to open link source", err)
	}
	defer links.Close()

	// Per-slug lookup counts are only persisted with the postgres source
	if links.DB != nil {
		metrics.Init(links.DB)
	} else {
		metrics.Init(nil)
	}

	// Limiter counters are shared across instances when Redis is configured
	var limiterStorage fiber.Storage
	if links.Store != nil {
		limiterStorage = links.Store
	}

	srv := server.New(cfg, limiterStorage)
	srv.RegisterRoutes(links.Directory, yamlCfg)

	if cfg.DirectoryWarmInterval > 0 {
		go jobs.NewWarmer(links.Directory, cfg.DirectoryWarmInterval).Start(ctx)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancel()
	if err := srv.Shutdown(); err != nil {
		fatal("server forced to shutdown", err)
	}
	slog.Info("server exited")
}

// setupLogger installs a text handler in development and JSON elsewhere.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
