package main

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmohaisen/report-portfolio/internal/pie"
	"github.com/bmohaisen/report-portfolio/internal/report"
)

const defaultChartSize = 200

type pageView struct {
	Profile      report.Profile
	Sections     []sectionView
	Year         int
	ReportLinked bool
	Note         string
	Footer       string
}

type sectionView struct {
	report.Section
	Pie *pieView
}

type pieView struct {
	Caption string
	Size    int
	Center  float64
	Radius  float64
	Arcs    []pie.Arc
	Legend  []legendEntry
	PNG     string
}

type legendEntry struct {
	Label   string
	Color   string
	Percent string
}

// buildPieView lays a distribution out on a size x size canvas, leaving a
// 2px margin for the outline.
func buildPieView(caption string, dist pie.Distribution, size int, png string) *pieView {
	if size <= 0 {
		size = defaultChartSize
	}
	c := float64(size) / 2
	r := c - 2

	v := &pieView{
		Caption: caption,
		Size:    size,
		Center:  c,
		Radius:  r,
		Arcs:    pie.ComputeArcs(dist, r, pie.Point{X: c, Y: c}),
		PNG:     png,
	}
	for i, s := range dist {
		v.Legend = append(v.Legend, legendEntry{
			Label:   s.Label,
			Color:   pie.Color(i),
			Percent: pie.FormatPercentage(s.Value, dist),
		})
	}
	return v
}

func buildSectionView(s report.Section, chartSize int) sectionView {
	v := sectionView{Section: s}
	if s.Chart != nil && len(s.Chart.Data) > 0 {
		caption := s.Chart.Caption
		if caption == "" {
			caption = s.Title
		}
		v.Pie = buildPieView(caption, s.Chart.Data, chartSize, "/charts/"+s.ID+".png")
	}
	return v
}

func buildPageView(p report.Page, chartSize int, now time.Time) pageView {
	v := pageView{
		Profile:      p.Profile,
		Year:         now.Year(),
		ReportLinked: p.Profile.ReportURL != "" && p.Profile.ReportURL != "#",
		Note:         ReportNote,
		Footer:       FooterNote,
	}
	for _, s := range p.Sections {
		v.Sections = append(v.Sections, buildSectionView(s, chartSize))
	}
	return v
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

// loadTemplates parses every *.html file in dir. Each file is addressable by
// its base name, which is how the gin handlers refer to them.
func loadTemplates(dir string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
	}
	return tmpl, nil
}

// exportPage writes the fully rendered page, the same markup GET / serves.
func exportPage(w io.Writer, tmpl *template.Template, p report.Page, chartSize int, now time.Time) error {
	if err := tmpl.ExecuteTemplate(w, "index.html", buildPageView(p, chartSize, now)); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
