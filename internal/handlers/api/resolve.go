package api

import (
	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/config"
	"studiolinks/internal/directory"
	"studiolinks/internal/metrics"
	"studiolinks/internal/models"
	"studiolinks/internal/redirect"
)

// ResolveHandler handles slug resolution via JSON API.
type ResolveHandler struct {
	resolver *redirect.Resolver
	cfg      *config.Config
}

// NewResolveHandler creates a new API resolve handler.
func NewResolveHandler(resolver *redirect.Resolver, cfg *config.Config) *ResolveHandler {
	return &ResolveHandler{resolver: resolver, cfg: cfg}
}

// Resolve resolves a slug to its URL without performing a redirect.
func (h *ResolveHandler) Resolve(c fiber.Ctx) error {
	d, err := h.resolver.Resolve(c.Context(), c.Params("slug"))
	metrics.RecordLookup("api", d.Slug, d.Outcome)
	if err != nil {
		if directory.IsFetchError(err) {
			return jsonError(c, fiber.StatusBadGateway, "link source unavailable")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve slug")
	}

	switch d.Outcome {
	case models.OutcomeInvalid:
		return jsonError(c, fiber.StatusBadRequest, "invalid slug")
	case models.OutcomeNotFound:
		return jsonError(c, fiber.StatusNotFound, "slug not found")
	}

	base := h.cfg.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return jsonSuccess(c, models.ResolveResponse{
		Slug:     d.Slug,
		URL:      d.Location,
		ShortURL: base + "/" + d.Slug,
	})
}
