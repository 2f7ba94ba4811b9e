package qr

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default lightness band, in percent, for QR backgrounds.
const (
	DefaultMinLightness = 87
	DefaultMaxLightness = 97
)

// ParseHex parses a "#rgb" or "#rrggbb" colour.
func ParseHex(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return c, nil
}

// ForceLightBackground keeps the hue and saturation of hex but clamps its
// HSL lightness into [minL, maxL] percent, so dark modules and badge text
// stay readable on top of it. The result is "#rrggbb".
func ForceLightBackground(hex string, minL, maxL float64) (string, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return "", err
	}

	h, s, l := c.Hsl()
	l = math.Min(maxL/100, math.Max(minL/100, l))

	return colorful.Hsl(h, s, l).Clamped().Hex(), nil
}

// PickColor returns palette[intn(len(palette))]. intn must return a value in [0, n).
func PickColor(palette []string, intn func(n int) int) string {
	if len(palette) == 0 {
		return "#ffffff"
	}
	return palette[intn(len(palette))]
}
