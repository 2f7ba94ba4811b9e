// Package qr renders QR codes as PNG images with an optional brand badge
// composited onto the bottom-right corner.
package qr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// Rendering defaults.
const (
	DefaultScale  = 8 // pixels per module
	DefaultMargin = 2 // quiet zone, in modules
)

// DarkColor is used for the QR modules.
var DarkColor = color.RGBA{0x11, 0x11, 0x11, 0xff}

// Options controls how a code is rendered.
type Options struct {
	Background color.Color // Light colour, also used as the badge fill. White when nil.
	Badge      string      // Brand text. Empty renders no badge.
	Scale      int
	Margin     int
}

// Encode renders text as a PNG QR code. Codes carrying a badge use the
// highest error correction level so the obscured corner still scans.
func Encode(text string, opts Options) ([]byte, error) {
	img, err := Render(text, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodingError{Op: "png", Err: err}
	}
	return buf.Bytes(), nil
}

// Render builds the QR image without encoding it.
func Render(text string, opts Options) (*image.RGBA, error) {
	if text == "" {
		return nil, &EncodingError{Op: "encode", Err: errors.New("empty content")}
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	margin := opts.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}

	level := qrcode.Medium
	if opts.Badge != "" {
		level = qrcode.Highest
	}

	code, err := qrcode.New(text, level)
	if err != nil {
		return nil, &EncodingError{Op: "encode", Err: err}
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()

	size := (len(bitmap) + margin*2) * scale
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	dark := image.NewUniform(DarkColor)
	for y, row := range bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			px, py := (x+margin)*scale, (y+margin)*scale
			draw.Draw(img, image.Rect(px, py, px+scale, py+scale), dark, image.Point{}, draw.Src)
		}
	}

	if opts.Badge != "" {
		badge, err := renderBadge(opts.Badge, BadgeHeight(size), bg, size)
		if err != nil {
			return nil, &EncodingError{Op: "badge", Err: err}
		}
		b := badge.Bounds()
		at := image.Pt(size-b.Dx(), size-b.Dy())
		draw.Draw(img, b.Add(at), badge, image.Point{}, draw.Over)
	}

	return img, nil
}
