package chart

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/bmohaisen/report-portfolio/internal/pie"
)

func TestClampSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, minSize},
		{-5, minSize},
		{200, 200},
		{1 << 20, maxSize},
	}
	for _, tt := range tests {
		if got := ClampSize(tt.in); got != tt.want {
			t.Errorf("ClampSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWritePiePNG(t *testing.T) {
	dist := pie.Distribution{{Label: "A", Value: 1}, {Label: "B", Value: 1}, {Label: "C", Value: 1}}

	var buf bytes.Buffer
	if err := WritePiePNG(&buf, dist, 200); err != nil {
		t.Fatalf("WritePiePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("bounds = %v, want 200x200", b)
	}

	// Halfway out along the middle of the first sector (12 to 4 o'clock).
	angle := -math.Pi/2 + math.Pi/3
	x := int(100 + 50*math.Cos(angle))
	y := int(100 + 50*math.Sin(angle))
	assertColor(t, img, x, y, 0x60, 0xa5, 0xfa)

	// Corners lie outside the circle and stay transparent.
	if _, _, _, a := img.At(1, 1).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
}

func TestRenderPieZeroTotal(t *testing.T) {
	img := RenderPie(pie.Distribution{{Label: "A", Value: 0}}, 64)
	if _, _, _, a := img.At(32, 20).RGBA(); a > 0x2000 {
		t.Errorf("zero-valued chart should leave the disc empty, alpha = %d", a)
	}
}

func TestWritePlaceholderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlaceholderPNG(&buf, "Figure 1", "discrepancies.png", 480, 270); err != nil {
		t.Fatalf("WritePlaceholderPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 480 || b.Dy() != 270 {
		t.Fatalf("bounds = %v, want 480x270", b)
	}
	assertColor(t, img, 20, 20, 0xf9, 0xfa, 0xfb)
}

func assertColor(t *testing.T, img image.Image, x, y int, r, g, b uint8) {
	t.Helper()
	cr, cg, cb, _ := img.At(x, y).RGBA()
	near := func(got uint32, want uint8) bool {
		return math.Abs(float64(got>>8)-float64(want)) <= 2
	}
	if !near(cr, r) || !near(cg, g) || !near(cb, b) {
		t.Errorf("pixel (%d,%d) = #%02x%02x%02x, want #%02x%02x%02x", x, y, cr>>8, cg>>8, cb>>8, r, g, b)
	}
}

func TestWritePiePNGMatchesRenderPie(t *testing.T) {
	dist := pie.Distribution{{Label: "A", Value: 3}, {Label: "B", Value: 1}}

	var buf bytes.Buffer
	if err := WritePiePNG(&buf, dist, 48); err != nil {
		t.Fatalf("WritePiePNG: %v", err)
	}
	encoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	rendered := RenderPie(dist, 48)
	b := rendered.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r1, g1, b1, a1 := rendered.At(x, y).RGBA()
			r2, g2, b2, a2 := encoded.At(x, y).RGBA()
			// PNG stores non-premultiplied 8-bit color; allow its rounding.
			if !close16(r1, r2) || !close16(g1, g2) || !close16(b1, b2) || !close16(a1, a2) {
				t.Fatalf("pixel (%d,%d) differs after encoding", x, y)
			}
		}
	}
}

func close16(a, b uint32) bool {
	return math.Abs(float64(a)-float64(b)) <= 0x300
}
