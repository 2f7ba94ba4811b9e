package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"studiolinks/internal/validation"
)

// pngPath matches a single-segment image request such as /kudzu.png.
var pngPath = regexp.MustCompile(`^/([A-Za-z0-9_-]+)\.(?i:png)$`)

// QRRewrite serves /{slug}.png as /qr/{slug} so a QR image can be linked
// by file name. The query string is kept. Static asset paths listed in
// exempt pass through untouched.
type QRRewrite struct {
	exempt map[string]struct{}
}

// NewQRRewrite creates the rewrite middleware. Exempt paths are matched
// case-insensitively.
func NewQRRewrite(exempt []string) *QRRewrite {
	m := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		m[strings.ToLower(p)] = struct{}{}
	}
	return &QRRewrite{exempt: m}
}

// Target returns the rewritten path for p, or false when p is not rewritten.
func (r *QRRewrite) Target(p string) (string, bool) {
	if _, ok := r.exempt[strings.ToLower(p)]; ok {
		return "", false
	}
	m := pngPath.FindStringSubmatch(p)
	if m == nil {
		return "", false
	}
	return "/qr/" + validation.NormalizeSlug(m[1]), true
}

// Handle rewrites matching requests and continues the chain.
func (r *QRRewrite) Handle(c fiber.Ctx) error {
	if target, ok := r.Target(c.Path()); ok {
		c.Path(target)
	}
	return c.Next()
}
