package qr

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func sameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8
}

func TestEncode_ProducesPNG(t *testing.T) {
	bg, _ := ParseHex("#e9f5f3")
	data, err := Encode("https://links.example.com/kudzu", Options{Background: bg})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("Encode() output is not a PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		t.Errorf("image is %dx%d, want square", b.Dx(), b.Dy())
	}
	if b.Dx()%DefaultScale != 0 {
		t.Errorf("image width %d is not a multiple of the module scale", b.Dx())
	}

	// Quiet zone keeps the background colour; the finder pattern starts after it.
	if !sameRGB(img.At(0, 0), bg) {
		t.Errorf("corner pixel = %v, want background", img.At(0, 0))
	}
	finder := DefaultMargin * DefaultScale
	if !sameRGB(img.At(finder, finder), DarkColor) {
		t.Errorf("finder pixel = %v, want dark module", img.At(finder, finder))
	}
}

func TestRender_BadgeInBottomRightCorner(t *testing.T) {
	bg, _ := ParseHex("#fde2e4")
	plain, err := Render("https://links.example.com/kudzu", Options{Background: bg})
	if err != nil {
		t.Fatal(err)
	}
	branded, err := Render("https://links.example.com/kudzu", Options{Background: bg, Badge: "AB"})
	if err != nil {
		t.Fatal(err)
	}

	// Higher error correction produces a denser (larger or equal) symbol.
	if branded.Bounds().Dx() < plain.Bounds().Dx() {
		t.Errorf("branded width %d < plain width %d", branded.Bounds().Dx(), plain.Bounds().Dx())
	}

	size := branded.Bounds().Dx()
	badge, err := renderBadge("AB", BadgeHeight(size), bg, size)
	if err != nil {
		t.Fatal(err)
	}
	bw, bh := badge.Bounds().Dx(), badge.Bounds().Dy()

	// Every opaque badge pixel must appear unchanged in the bottom-right corner.
	var opaque, dark int
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			px := badge.RGBAAt(x, y)
			if px.A != 0xff {
				continue
			}
			opaque++
			got := branded.At(size-bw+x, size-bh+y)
			if !sameRGB(got, px) {
				t.Fatalf("pixel (%d,%d) = %v, want badge pixel %v", size-bw+x, size-bh+y, got, px)
			}
			if sameRGB(px, badgeTextColor) {
				dark++
			}
		}
	}
	if opaque == 0 || dark == 0 {
		t.Errorf("badge has %d opaque and %d text pixels, want both > 0", opaque, dark)
	}
	if !sameRGB(branded.At(0, 0), bg) {
		t.Errorf("top-left corner = %v, want background", branded.At(0, 0))
	}
}

func TestRender_LongBrandIsScaledToFit(t *testing.T) {
	img, err := Render("a", Options{Badge: strings.Repeat("W", 16)})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if img.Bounds().Dx() == 0 {
		t.Fatal("empty image")
	}
}

func TestRenderBadge(t *testing.T) {
	fill := color.RGBA{0xee, 0xee, 0xff, 0xff}

	badge, err := renderBadge("DELESSLIN", 32, fill, 1000)
	if err != nil {
		t.Fatalf("renderBadge() error = %v", err)
	}
	b := badge.Bounds()
	if b.Dy() != 32+2*6 {
		t.Errorf("pill height = %d, want %d", b.Dy(), 44)
	}
	if b.Dx() <= b.Dy() {
		t.Errorf("pill width %d should exceed height %d for long text", b.Dx(), b.Dy())
	}

	// Rounded ends leave the extreme corners transparent; the middle is filled.
	if _, _, _, a := badge.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want transparent", a)
	}
	if !sameRGB(badge.At(b.Dx()/2, 1), fill) {
		t.Errorf("top edge centre = %v, want fill colour", badge.At(b.Dx()/2, 1))
	}
}

func TestRenderBadge_ShrinksToMaxWidth(t *testing.T) {
	badge, err := renderBadge("WWWWWWWWWWWWWWWW", 64, color.White, 200)
	if err != nil {
		t.Fatalf("renderBadge() error = %v", err)
	}
	if badge.Bounds().Dx() > 200 {
		t.Errorf("badge width %d exceeds max 200", badge.Bounds().Dx())
	}
}

func TestRenderBadge_TooSmall(t *testing.T) {
	if _, err := renderBadge("WWWWWWWWWWWWWWWW", 32, color.White, 10); err == nil {
		t.Error("renderBadge() error = nil, want does-not-fit error")
	}
}

func TestBadgeHeight(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{100, 32},
		{264, 32},
		{400, 36},
		{1000, 90},
	}
	for _, tt := range tests {
		if got := BadgeHeight(tt.width); got != tt.want {
			t.Errorf("BadgeHeight(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestEncode_Errors(t *testing.T) {
	var encErr *EncodingError

	if _, err := Encode("", Options{}); !errors.As(err, &encErr) {
		t.Errorf("Encode(\"\") error = %v, want *EncodingError", err)
	}

	// Beyond the capacity of the largest symbol.
	if _, err := Encode(strings.Repeat("x", 5000), Options{}); !errors.As(err, &encErr) {
		t.Errorf("Encode(oversized) error = %v, want *EncodingError", err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	opts := Options{Background: color.RGBA{0xf0, 0xf0, 0xf0, 0xff}, Badge: "AB"}
	a, err := Encode("https://links.example.com/x", opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode("https://links.example.com/x", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encode() is not deterministic for identical input")
	}
}
