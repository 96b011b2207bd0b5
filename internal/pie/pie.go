// Package pie turns an ordered distribution of labelled values into pie-chart
// sectors and legend percentages.
package pie

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Slice is one labelled value of a Distribution.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Distribution is an ordered set of slices. Order decides both the angular
// order of the sectors and the legend order.
type Distribution []Slice

// Point is a position in drawing coordinates (y grows downwards).
type Point struct {
	X float64
	Y float64
}

// Arc describes one circular sector, from Center out to Start, along the
// circle to End and back.
type Arc struct {
	Index      int
	Label      string
	Value      float64
	StartAngle float64
	EndAngle   float64
	Center     Point
	Start      Point
	End        Point
	Radius     float64
	LargeArc   int
	Color      string
}

var palette = [...]string{
	"#60a5fa", "#34d399", "#fbbf24", "#f472b6",
	"#a78bfa", "#f87171", "#10b981", "#f59e0b",
}

// Color returns the palette color for the slice at index i.
func Color(i int) string {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

func sliceValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Total sums the distribution, substituting 1 when the sum is zero. The sum
// is +Inf when large values overflow float64.
func Total(dist Distribution) float64 {
	return scaledTotal(dist, 1)
}

// scaleFor returns the divisor applied to each value before summing: 1
// unless the plain sum overflows, in which case the largest magnitude.
func scaleFor(dist Distribution) float64 {
	sum, peak := 0.0, 0.0
	for _, s := range dist {
		v := sliceValue(s.Value)
		sum += v
		peak = math.Max(peak, math.Abs(v))
	}
	if math.IsInf(sum, 0) && peak > 0 {
		return peak
	}
	return 1
}

func scaledTotal(dist Distribution, scale float64) float64 {
	total := 0.0
	for _, s := range dist {
		total += sliceValue(s.Value) / scale
	}
	if total == 0 {
		return 1
	}
	return total
}

// ComputeArcs lays the distribution out clockwise starting at 12 o'clock.
// Every slice yields exactly one arc, zero-valued slices included.
func ComputeArcs(dist Distribution, radius float64, center Point) []Arc {
	scale := scaleFor(dist)
	total := scaledTotal(dist, scale)
	arcs := make([]Arc, 0, len(dist))

	acc := 0.0
	for i, s := range dist {
		start := acc/total*2*math.Pi - math.Pi/2
		acc += sliceValue(s.Value) / scale
		end := acc/total*2*math.Pi - math.Pi/2

		large := 0
		if end-start > math.Pi {
			large = 1
		}

		arcs = append(arcs, Arc{
			Index:      i,
			Label:      s.Label,
			Value:      s.Value,
			StartAngle: start,
			EndAngle:   end,
			Center:     center,
			Start:      pointOnCircle(center, radius, start),
			End:        pointOnCircle(center, radius, end),
			Radius:     radius,
			LargeArc:   large,
			Color:      Color(i),
		})
	}
	return arcs
}

func pointOnCircle(c Point, r, angle float64) Point {
	return Point{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
}

// Span is the swept angle in radians.
func (a Arc) Span() float64 {
	return a.EndAngle - a.StartAngle
}

const fullCircleEpsilon = 1e-9

// Path returns SVG path data for the filled sector.
func (a Arc) Path() string {
	var b strings.Builder
	b.WriteString("M " + num(a.Center.X) + " " + num(a.Center.Y))
	b.WriteString(" L " + num(a.Start.X) + " " + num(a.Start.Y))

	r := num(a.Radius)
	if a.Span() >= 2*math.Pi-fullCircleEpsilon {
		// An SVG arc between identical endpoints draws nothing; go through
		// the opposite point instead.
		mid := pointOnCircle(a.Center, a.Radius, a.StartAngle+math.Pi)
		b.WriteString(" A " + r + " " + r + " 0 0 1 " + num(mid.X) + " " + num(mid.Y))
		b.WriteString(" A " + r + " " + r + " 0 0 1 " + num(a.End.X) + " " + num(a.End.Y))
	} else {
		b.WriteString(" A " + r + " " + r + " 0 " + strconv.Itoa(a.LargeArc) + " 1 " + num(a.End.X) + " " + num(a.End.Y))
	}
	b.WriteString(" Z")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// FormatPercentage renders value as a share of the distribution total.
// Shares above 1% get one decimal place, smaller ones two. Each share is
// rounded on its own, so a legend does not necessarily add up to 100.0%.
//
// The share is computed in float64 and the exact binary result is rounded
// half away from zero, so 23 of 80 (28.749999999999996) prints as 28.7%.
func FormatPercentage(value float64, dist Distribution) string {
	scale := scaleFor(dist)
	pct := sliceValue(value) / scale / scaledTotal(dist, scale) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "0.00%"
	}
	places := int32(2)
	if pct > 1 {
		places = 1
	}
	return exactDecimal(pct).StringFixed(places) + "%"
}

// exactDecimal converts f without first shortening it to its shortest
// round-trip form.
func exactDecimal(f float64) decimal.Decimal {
	d, err := decimal.NewFromString(new(big.Float).SetFloat64(f).Text('f', 1100))
	if err != nil {
		return decimal.NewFromFloat(f)
	}
	return d
}
