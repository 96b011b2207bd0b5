// Package chart rasterizes pie charts and missing-figure placeholders as PNG.
package chart

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"

	"github.com/bmohaisen/report-portfolio/internal/pie"
)

const (
	minSize = 16
	maxSize = 2048
)

// ClampSize keeps a requested image edge within sane bounds.
func ClampSize(size int) int {
	if size < minSize {
		return minSize
	}
	if size > maxSize {
		return maxSize
	}
	return size
}

// RenderPie draws the distribution on a transparent square canvas. Geometry
// and colors match the SVG rendering of the page.
func RenderPie(dist pie.Distribution, size int) image.Image {
	return drawPie(dist, size).Image()
}

func drawPie(dist pie.Distribution, size int) *gg.Context {
	size = ClampSize(size)
	dc := gg.NewContext(size, size)

	c := float64(size) / 2
	r := c - 2
	for _, a := range pie.ComputeArcs(dist, r, pie.Point{X: c, Y: c}) {
		if a.Span() == 0 {
			continue
		}
		dc.NewSubPath()
		dc.MoveTo(c, c)
		dc.DrawArc(c, c, r, a.StartAngle, a.EndAngle)
		dc.ClosePath()
		dc.SetHexColor(a.Color)
		dc.Fill()
	}

	dc.DrawCircle(c, c, r)
	dc.SetRGBA(0, 0, 0, 0.04)
	dc.SetLineWidth(1)
	dc.Stroke()

	return dc
}

// WritePiePNG encodes RenderPie's output as PNG.
func WritePiePNG(w io.Writer, dist pie.Distribution, size int) error {
	return encode(w, drawPie(dist, size))
}

// RenderPlaceholder draws a dimmed card telling the reader which figure file
// is missing.
func RenderPlaceholder(label, filename string, width, height int) image.Image {
	return drawPlaceholder(label, filename, width, height).Image()
}

func drawPlaceholder(label, filename string, width, height int) *gg.Context {
	width, height = ClampSize(width), ClampSize(height)
	dc := gg.NewContext(width, height)

	dc.SetHexColor("#f9fafb")
	dc.Clear()

	dc.SetHexColor("#d1d5db")
	dc.SetDash(6, 4)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(4, 4, float64(width)-8, float64(height)-8, 10)
	dc.Stroke()
	dc.SetDash()

	w, h := float64(width), float64(height)
	dc.SetHexColor("#6b7280")
	if label != "" {
		dc.DrawStringWrapped(label, w/2, h/2-24, 0.5, 0.5, w-40, 1.4, gg.AlignCenter)
	}
	msg := fmt.Sprintf("Graph not found. Place an image at images/%s", filename)
	dc.SetHexColor("#9ca3af")
	dc.DrawStringWrapped(msg, w/2, h/2+16, 0.5, 0.5, w-40, 1.4, gg.AlignCenter)

	return dc
}

// WritePlaceholderPNG encodes RenderPlaceholder's output as PNG.
func WritePlaceholderPNG(w io.Writer, label, filename string, width, height int) error {
	return encode(w, drawPlaceholder(label, filename, width, height))
}

func encode(w io.Writer, dc *gg.Context) error {
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
