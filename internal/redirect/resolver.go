// Package redirect decides where a slug request is sent.
package redirect

import (
	"context"
	"errors"
	"net/url"

	"studiolinks/internal/directory"
	"studiolinks/internal/models"
	"studiolinks/internal/validation"
)

// CacheControl lets edge caches absorb bursts (5 minutes fresh, a day stale)
// while browsers never keep the redirect permanently.
const CacheControl = "public, s-maxage=300, stale-while-revalidate=86400"

// invalidSlug stands in for an empty slug in fallback URLs.
const invalidSlug = "invalid"

// Links resolves normalized slugs to destinations.
type Links interface {
	Resolve(ctx context.Context, slug string) (string, error)
}

// Decision is where a request for a slug should be redirected.
// Redirects are always 302 since destinations can change at the source.
type Decision struct {
	Slug      string // Normalized slug, or the raw token when invalid
	Outcome   string // models.Outcome*
	Location  string
	Cacheable bool // Only resolved redirects carry CacheControl
}

// Resolver validates slugs and resolves them against the link directory.
type Resolver struct {
	links        Links
	fallbackBase string
}

// NewResolver creates a resolver that sends unknown slugs to fallbackBase.
func NewResolver(links Links, fallbackBase string) *Resolver {
	return &Resolver{links: links, fallbackBase: fallbackBase}
}

// Resolve maps a raw path segment to a redirect decision. Invalid and
// unknown slugs resolve to the fallback URL and never return an error.
// A source failure returns the fallback decision together with the error so
// the caller chooses between surfacing it and degrading.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Decision, error) {
	slug, ok := validation.ValidateSlug(raw)
	if !ok {
		if slug == "" {
			slug = invalidSlug
		}
		return Decision{Slug: slug, Outcome: models.OutcomeInvalid, Location: r.FallbackURL(slug)}, nil
	}

	dest, err := r.links.Resolve(ctx, slug)
	switch {
	case err == nil:
		return Decision{Slug: slug, Outcome: models.OutcomeResolved, Location: dest, Cacheable: true}, nil
	case errors.Is(err, directory.ErrNotFound):
		return Decision{Slug: slug, Outcome: models.OutcomeNotFound, Location: r.FallbackURL(slug)}, nil
	default:
		return Decision{Slug: slug, Outcome: models.OutcomeError, Location: r.FallbackURL(slug)}, err
	}
}

// FallbackURL builds the fallback address carrying slug as a query parameter.
func (r *Resolver) FallbackURL(slug string) string {
	u, err := url.Parse(r.fallbackBase)
	if err != nil {
		return r.fallbackBase + "?slug=" + url.QueryEscape(slug)
	}
	q := u.Query()
	q.Set("slug", slug)
	u.RawQuery = q.Encode()
	return u.String()
}
