package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/config"
	"studiolinks/internal/metrics"
	"studiolinks/internal/redirect"
)

const routeRedirect = "redirect"

// RedirectHandler handles slug-to-URL redirects.
type RedirectHandler struct {
	resolver *redirect.Resolver
	cfg      *config.Config
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(resolver *redirect.Resolver, cfg *config.Config) *RedirectHandler {
	return &RedirectHandler{resolver: resolver, cfg: cfg}
}

// Redirect looks up a slug and redirects to its destination, or to the
// fallback page when the slug is invalid or unknown.
func (h *RedirectHandler) Redirect(c fiber.Ctx) error {
	d, err := resolve(c, h.resolver, h.cfg, routeRedirect)
	if err != nil {
		return err
	}
	return sendRedirect(c, d)
}

// resolve runs the resolver for the slug route param and records the outcome.
// A source failure is returned unless the service is configured to degrade to
// the fallback redirect.
func resolve(c fiber.Ctx, resolver *redirect.Resolver, cfg *config.Config, route string) (redirect.Decision, error) {
	d, err := resolver.Resolve(c.Context(), c.Params("slug"))
	metrics.RecordLookup(route, d.Slug, d.Outcome)
	if err != nil {
		if !cfg.FallbackOnSourceError {
			return d, err
		}
		slog.Warn("link source unavailable, serving fallback", "route", route, "slug", d.Slug, "error", err)
	}
	return d, nil
}

// sendRedirect writes a 302 for d. Only resolved destinations are edge-cacheable.
func sendRedirect(c fiber.Ctx, d redirect.Decision) error {
	if d.Cacheable {
		c.Set(fiber.HeaderCacheControl, redirect.CacheControl)
	}
	return c.Redirect().Status(fiber.StatusFound).To(d.Location)
}
