package qr

import (
	"strings"
	"unicode/utf8"

	colorful "github.com/lucasb-eyer/go-colorful"

	"studiolinks/internal/validation"
)

// Encoded targets: the short redirect URL or the destination itself.
const (
	TargetShort = "short"
	TargetLong  = "long"
)

// MaxBrandRunes caps the badge text length.
const MaxBrandRunes = 16

// BrandText picks the badge text: requested, else fallback, trimmed,
// upper-cased and capped at MaxBrandRunes. An empty result means no badge.
func BrandText(requested, fallback string) string {
	brand := requested
	if brand == "" {
		brand = fallback
	}
	brand = strings.ToUpper(strings.TrimSpace(brand))
	if utf8.RuneCountInString(brand) > MaxBrandRunes {
		brand = string([]rune(brand)[:MaxBrandRunes])
	}
	return brand
}

// ChooseBackground returns the light colour for a code. A valid requested hex
// colour wins, otherwise one is picked from palette; either way it is forced
// into the [minL, maxL] lightness band.
func ChooseBackground(requested string, palette []string, minL, maxL float64, intn func(n int) int) (colorful.Color, error) {
	hex, ok := validation.ValidateHexColor(requested)
	if !ok {
		hex = PickColor(palette, intn)
	}
	light, err := ForceLightBackground(hex, minL, maxL)
	if err != nil {
		return colorful.Color{}, err
	}
	return ParseHex(light)
}
