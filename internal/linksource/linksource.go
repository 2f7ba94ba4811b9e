// Package linksource opens the configured link table and the link directory
// cached in front of it.
package linksource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/storage/redis/v3"

	"studiolinks/internal/config"
	"studiolinks/internal/db"
	"studiolinks/internal/directory"
	"studiolinks/internal/sheets"
)

// Links is an opened link directory and the resources backing it.
type Links struct {
	Directory *directory.Directory
	DB        *db.DB         // Set for the postgres source
	Store     *redis.Storage // Set when REDIS_URL is configured
}

// Open connects to the configured source and builds the directory. With the
// postgres source, migrations run first and development databases are seeded.
func Open(ctx context.Context, cfg *config.Config) (*Links, error) {
	l := &Links{}

	var src directory.Source
	switch cfg.LinkSource {
	case config.SourcePostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		l.DB = database
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if cfg.IsDev() {
			if err := database.SeedDevLinks(ctx); err != nil {
				slog.Warn("failed to seed dev links", "error", err)
			}
		}
		src = database
	case config.SourceSheets:
		s, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID: cfg.SheetsID,
			Range:         cfg.SheetsRange,
			Email:         cfg.ServiceAccountEmail,
			PrivateKey:    cfg.ServiceAccountPrivateKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		src = s
	default:
		return nil, fmt.Errorf("unknown link source %q", cfg.LinkSource)
	}

	opts := directory.Options{
		TTL:          cfg.DirectoryTTL,
		FetchTimeout: cfg.DirectoryFetchTimeout,
	}
	if cfg.RedisURL != "" {
		l.Store = redis.New(redis.Config{URL: cfg.RedisURL})
		opts.Store = l.Store
	}
	l.Directory = directory.New(src, opts)

	slog.Info("link directory configured",
		"source", cfg.LinkSource,
		"ttl", cfg.DirectoryTTL,
		"shared_store", l.Store != nil,
	)
	return l, nil
}

// Close releases the database pool and the shared store.
func (l *Links) Close() {
	if l.DB != nil {
		l.DB.Close()
	}
	if l.Store != nil {
		if err := l.Store.Close(); err != nil {
			slog.Warn("failed to close shared store", "error", err)
		}
	}
}
