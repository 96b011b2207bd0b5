package report

import "fmt"

// Violation is a structural problem in the page content. Violations are
// reported, never enforced: the page still renders.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Validate checks the page for structural mismatches and returns every one
// it finds. A nil result means the content is consistent.
func Validate(p Page) []Violation {
	var out []Violation
	add := func(path, format string, args ...any) {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if p.Profile.Tagline == "" {
		add("profile", "tagline required")
	}
	if len(p.Sections) == 0 {
		add("sections", "at least one section required")
	}

	seen := make(map[string]int, len(p.Sections))
	for i, s := range p.Sections {
		path := fmt.Sprintf("sections[%d]", i)

		if s.ID == "" {
			add(path, "missing id")
		} else if first, ok := seen[s.ID]; ok {
			add(path, "duplicate id %q (first used by sections[%d])", s.ID, first)
		} else {
			seen[s.ID] = i
		}
		if s.Title == "" {
			add(path, "missing title")
		}
		if s.Bullets == nil {
			add(path, "bullets must be a list")
		}

		for ti, t := range s.Tables {
			tpath := fmt.Sprintf("%s.tables[%d]", path, ti)
			if len(t.Columns) == 0 {
				add(tpath, "columns required")
			}
			for ri, r := range t.Rows {
				if len(r) != len(t.Columns) {
					add(fmt.Sprintf("%s.rows[%d]", tpath, ri), "length %d must equal columns length %d", len(r), len(t.Columns))
				}
			}
		}

		if s.Chart != nil {
			if len(s.Chart.Data) == 0 || !(ChartTotal(*s.Chart) > 0) {
				add(path+".chart", "total must be > 0")
			}
		}

		for fi, f := range s.Figures {
			if f.Src == "" {
				add(fmt.Sprintf("%s.figures[%d]", path, fi), "missing src")
			}
		}
	}
	return out
}

// ChartTotal is the raw sum of a chart's values, before any zero guard.
func ChartTotal(c Chart) float64 {
	total := 0.0
	for _, d := range c.Data {
		total += d.Value
	}
	return total
}
