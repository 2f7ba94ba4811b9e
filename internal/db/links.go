package db

import (
	"context"
	"fmt"

	"studiolinks/internal/models"
	"studiolinks/internal/validation"
)

// FetchRows returns every link as a [slug, url] row. It satisfies
// directory.Source so the table can stand in for the spreadsheet.
func (d *DB) FetchRows(ctx context.Context) ([][]string, error) {
	rows, err := d.Pool.Query(ctx, `SELECT slug, url FROM links ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var slug, url string
		if err := rows.Scan(&slug, &url); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		out = append(out, []string{slug, url})
	}
	return out, rows.Err()
}

// UpsertLink creates or replaces the destination for a slug.
func (d *DB) UpsertLink(ctx context.Context, link models.Link) error {
	slug, ok := validation.ValidateSlug(link.Slug)
	if !ok {
		return fmt.Errorf("invalid slug %q", link.Slug)
	}

	_, err := d.Pool.Exec(ctx, `
		INSERT INTO links (slug, url)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE
		SET url = EXCLUDED.url, updated_at = NOW()
	`, slug, link.URL)
	if err != nil {
		return fmt.Errorf("failed to upsert link %s: %w", slug, err)
	}
	return nil
}

// DeleteLink removes a slug. Returns ErrLinkNotFound if it does not exist.
func (d *DB) DeleteLink(ctx context.Context, slug string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM links WHERE slug = $1`, validation.NormalizeSlug(slug))
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// SeedDevLinks inserts sample links for development. Skips links that already exist.
func (d *DB) SeedDevLinks(ctx context.Context) error {
	links := []models.Link{
		{Slug: "kudzu", URL: "https://example.com/kudzu"},
		{Slug: "go", URL: "https://go.dev"},
		{Slug: "docs", URL: "https://pkg.go.dev"},
	}

	for _, link := range links {
		if _, err := d.Pool.Exec(ctx, `
			INSERT INTO links (slug, url) VALUES ($1, $2)
			ON CONFLICT (slug) DO NOTHING
		`, link.Slug, link.URL); err != nil {
			return fmt.Errorf("failed to seed link %s: %w", link.Slug, err)
		}
	}

	return nil
}
