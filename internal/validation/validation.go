package validation

import (
	"regexp"
	"strings"
)

// SlugPattern defines the valid slug format: lowercase alphanumerics, hyphens, underscores.
var SlugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// hexColorPattern accepts 3 or 6 hex digits without the leading '#'.
var hexColorPattern = regexp.MustCompile(`^(?i)([0-9a-f]{3}){1,2}$`)

// NormalizeSlug trims whitespace and lowercases ASCII letters so lookups are
// case-insensitive. Other runes are left alone, so Unicode case folding can
// never turn input such as U+212A (Kelvin sign) into a valid slug.
func NormalizeSlug(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, strings.TrimSpace(raw))
}

// ValidateSlug normalizes raw and reports whether the result is a usable slug.
// The normalized form is returned either way so callers can echo it back.
// Path separators, dots, percent-encodings and non-ASCII input are all rejected.
func ValidateSlug(raw string) (string, bool) {
	slug := NormalizeSlug(raw)
	if slug == "" {
		return slug, false
	}
	return slug, SlugPattern.MatchString(slug)
}

// ValidateHexColor checks a caller-supplied colour such as "fff", "#FFFFFF"
// or " #a1b2c3 " and returns it as "#xxxxxx"/"#xxx" with a leading '#'.
func ValidateHexColor(raw string) (string, bool) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if !hexColorPattern.MatchString(cleaned) {
		return "", false
	}
	return "#" + cleaned, true
}
