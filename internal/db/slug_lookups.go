package db

import (
	"context"

	"studiolinks/internal/models"
)

// IncrementSlugLookup upserts a slug lookup count by outcome.
func (d *DB) IncrementSlugLookup(ctx context.Context, slug, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO slug_lookups (slug, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (slug, outcome) DO UPDATE
		SET count = slug_lookups.count + 1, last_seen_at = NOW()
	`, slug, outcome)
	return err
}

// GetAllSlugLookups returns all slug lookup rows for metrics export.
func (d *DB) GetAllSlugLookups(ctx context.Context) ([]models.SlugLookup, error) {
	rows, err := d.Pool.Query(ctx, `SELECT slug, outcome, count, last_seen_at FROM slug_lookups`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lookups []models.SlugLookup
	for rows.Next() {
		var l models.SlugLookup
		if err := rows.Scan(&l.Slug, &l.Outcome, &l.Count, &l.LastSeenAt); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}
