// Package report holds the content model of the portfolio page: the profile
// shown in the header and the report sections rendered below it.
package report

import "github.com/bmohaisen/report-portfolio/internal/pie"

type Profile struct {
	Name      string
	Tagline   string
	Email     string
	GitHub    string
	LinkedIn  string
	ResumeURL string
	ReportURL string
	About     string
}

// Section is one collapsible card. Everything past Bullets is optional.
type Section struct {
	ID       string
	Title    string
	Micro    string
	Bullets  []string
	Exec     *Summary
	Tables   []Table
	Figures  []Figure
	Fallback *Fallback
	Chart    *Chart
}

// Summary is the executive summary block of a section.
type Summary struct {
	Intro  string
	Points []string
	Outro  string
}

type Table struct {
	Caption string
	Columns []string
	Rows    [][]string
}

// Figure references an image file served from the images directory.
type Figure struct {
	Label    string
	Filename string
	Src      string
}

// Fallback is a plain-text walkthrough shown where a graphic would go.
type Fallback struct {
	Title string
	Lines []string
}

type Chart struct {
	Caption string
	Data    pie.Distribution
}

type Page struct {
	Profile  Profile
	Sections []Section
}

// Section looks a section up by ID.
func (p Page) Section(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Charts returns the IDs of sections carrying a pie chart, in page order.
func (p Page) Charts() []string {
	var ids []string
	for _, s := range p.Sections {
		if s.Chart != nil {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
