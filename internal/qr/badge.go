package qr

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Badge proportions relative to the requested text height.
const (
	badgeFontRatio = 0.7
	badgePadXRatio = 0.5
	badgePadYRatio = 0.18

	// kappa approximates a quarter circle with a cubic Bézier.
	kappa = 0.5522847498
)

var badgeTextColor = color.RGBA{0x11, 0x11, 0x11, 0xff}

var (
	fontOnce  sync.Once
	badgeFont *opentype.Font
	fontErr   error
)

// loadFont parses the embedded Go Bold face once. Glyphs are rasterised
// from their outlines, so no system font is needed at runtime.
func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		badgeFont, fontErr = opentype.Parse(gobold.TTF)
	})
	return badgeFont, fontErr
}

// BadgeHeight returns the text height used for a badge on an image of the given width.
func BadgeHeight(imageWidth int) int {
	return max(32, int(math.Round(float64(imageWidth)*0.09)))
}

// renderBadge draws text right-aligned inside a rounded pill filled with
// fill. The pill is shrunk until it fits within maxWidth.
func renderBadge(text string, height int, fill color.Color, maxWidth int) (*image.RGBA, error) {
	if text == "" {
		return nil, errors.New("empty badge text")
	}
	f, err := loadFont()
	if err != nil {
		return nil, err
	}

	for {
		layout, err := layoutBadge(f, text, height)
		if err != nil {
			return nil, err
		}
		if layout.width <= maxWidth {
			return drawBadge(layout, text, fill), nil
		}
		next := height * maxWidth / layout.width
		if next >= height {
			next = height - 1
		}
		if next < 4 {
			return nil, errors.New("badge does not fit image")
		}
		height = next
	}
}

type badgeLayout struct {
	face     font.Face
	width    int
	pillH    int
	padX     int
	advance  fixed.Int26_6
	baseline int
}

func layoutBadge(f *opentype.Font, text string, height int) (badgeLayout, error) {
	fontSize := math.Round(float64(height) * badgeFontRatio)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return badgeLayout{}, err
	}

	padX := int(math.Round(float64(height) * badgePadXRatio))
	padY := int(math.Round(float64(height) * badgePadYRatio))
	advance := font.MeasureString(face, text)

	pillH := height + padY*2
	width := max(advance.Ceil()+padX*2, pillH)

	return badgeLayout{
		face:     face,
		width:    width,
		pillH:    pillH,
		padX:     padX,
		advance:  advance,
		baseline: int(math.Round(float64(pillH)/2 + fontSize*0.35)),
	}, nil
}

func drawBadge(l badgeLayout, text string, fill color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.pillH))

	w, h := float32(l.width), float32(l.pillH)
	r := h / 2
	k := r * kappa

	z := vector.NewRasterizer(l.width, l.pillH)
	z.MoveTo(r, 0)
	z.LineTo(w-r, 0)
	z.CubeTo(w-r+k, 0, w, r-k, w, r)
	z.CubeTo(w, r+k, w-r+k, h, w-r, h)
	z.LineTo(r, h)
	z.CubeTo(r-k, h, 0, r+k, 0, r)
	z.CubeTo(0, r-k, r-k, 0, r, 0)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(badgeTextColor),
		Face: l.face,
		Dot:  fixed.Point26_6{X: fixed.I(l.width-l.padX) - l.advance, Y: fixed.I(l.baseline)},
	}
	d.DrawString(text)

	return img
}
