package handlers

import (
	"math/rand/v2"
	"strings"

	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/config"
	"studiolinks/internal/metrics"
	"studiolinks/internal/models"
	"studiolinks/internal/qr"
	"studiolinks/internal/redirect"
)

const routeQR = "qr"

// QRHandler renders branded QR codes for slugs.
type QRHandler struct {
	resolver *redirect.Resolver
	cfg      *config.Config
	palette  []string
	intn     func(n int) int
}

// NewQRHandler creates a new QR handler. Colours are picked from palette
// when a request does not supply a valid one.
func NewQRHandler(resolver *redirect.Resolver, cfg *config.Config, palette []string) *QRHandler {
	return &QRHandler{resolver: resolver, cfg: cfg, palette: palette, intn: rand.IntN}
}

// QR resolves the slug and responds with a PNG encoding either the short URL
// or the destination. Invalid and unknown slugs redirect like /:slug does.
func (h *QRHandler) QR(c fiber.Ctx) error {
	d, err := resolve(c, h.resolver, h.cfg, routeQR)
	if err != nil {
		return err
	}
	if d.Outcome != models.OutcomeResolved {
		return c.Redirect().Status(fiber.StatusFound).To(d.Location)
	}

	target := strings.ToLower(c.Query("target", qr.TargetShort))
	text := h.shortURL(c, d.Slug)
	if target == qr.TargetLong {
		text = d.Location
	} else {
		target = qr.TargetShort
	}

	background, err := qr.ChooseBackground(c.Query("color"), h.palette, h.cfg.MinLightness, h.cfg.MaxLightness, h.intn)
	if err != nil {
		return err
	}

	png, err := qr.Encode(text, qr.Options{
		Background: background,
		Badge:      qr.BrandText(c.Query("brand"), h.cfg.BrandText),
	})
	if err != nil {
		return err
	}
	metrics.QRRenders.WithLabelValues(target).Inc()

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, redirect.CacheControl)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+d.Slug+`.png"`)
	return c.Send(png)
}

// shortURL is the public redirect address for slug. The configured base URL
// wins over the request origin so codes stay stable behind proxies.
func (h *QRHandler) shortURL(c fiber.Ctx, slug string) string {
	base := h.cfg.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/" + slug
}
