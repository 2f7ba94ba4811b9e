package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/directory"
	"studiolinks/internal/models"
)

// SnapshotProvider yields the current link directory snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*directory.Snapshot, error)
	Stats() directory.Stats
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	dir SnapshotProvider
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(dir SnapshotProvider) *ProbeHandler {
	return &ProbeHandler{dir: dir}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the link directory can produce a snapshot.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if _, err := h.dir.Snapshot(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "link directory unavailable",
		})
	}

	st := h.dir.Stats()
	return c.JSON(fiber.Map{
		"status": "ok",
		"data": models.DirectoryStatus{
			Links:     st.Links,
			ExpiresAt: st.ExpiresAt,
			Fetches:   st.Fetches,
		},
	})
}
