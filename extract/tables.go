package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/papervault/papervault/core"
)

// Table detection is geometric: consecutive text rows whose glyph runs
// cluster into the same number of gap-separated cells form a grid. It is a
// best-effort heuristic for born-digital PDFs; a page with no such grid
// simply yields no tables.

const (
	// cellGapFactor scales font size into the minimum horizontal gap that
	// separates two cells in a row.
	cellGapFactor = 2.0
	// minTableRows and minTableCols bound what counts as a grid.
	minTableRows = 2
	minTableCols = 2
	// captionScanDistance is the vertical window (points) around a table in
	// which caption lines are searched.
	captionScanDistance = 60.0
	// captionMaxLen clamps stored captions.
	captionMaxLen = 200
)

var tableCaptionRe = regexp.MustCompile(`^(?:Table|TABLE|Tab\.)\s+[IVXLCivxlc\d]+[:.]`)

// row is one baseline of glyphs split into cell texts.
type row struct {
	y     float64
	cells []string
}

// pageTables detects tables on a single page. Ordinal numbering restarts on
// every page.
func pageTables(page pageData) []core.Table {
	rows := cellRows(page.glyphs)
	if len(rows) == 0 {
		return nil
	}

	lines := buildLines(page.glyphs)

	var tables []core.Table
	start := 0
	for start < len(rows) {
		end := start
		for end+1 < len(rows) &&
			len(rows[end+1].cells) == len(rows[start].cells) &&
			rows[end].y-rows[end+1].y < captionScanDistance {
			end++
		}

		height := len(rows[start].cells)
		if end-start+1 >= minTableRows && height >= minTableCols {
			cells := make([][]string, 0, end-start+1)
			for _, r := range rows[start : end+1] {
				cells = append(cells, r.cells)
			}
			tables = append(tables, core.Table{
				Page:    page.number,
				Index:   len(tables) + 1,
				Caption: findCaption(lines, rows[start].y, rows[end].y, tableCaptionRe),
				Cells:   cells,
			})
		}
		start = end + 1
	}
	return tables
}

// cellRows groups glyphs by baseline and splits each baseline into cells at
// wide horizontal gaps. Rows that split into fewer than minTableCols cells
// are not candidate table rows.
func cellRows(glyphs []glyph) []row {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var rows []row
	var current []glyph
	flush := func() {
		if len(current) == 0 {
			return
		}
		cells := splitCells(current)
		if len(cells) >= minTableCols {
			rows = append(rows, row{y: current[0].y, cells: cells})
		}
		current = current[:0]
	}

	for _, g := range sorted {
		if len(current) > 0 && current[0].y-g.y > yTolerance {
			flush()
		}
		current = append(current, g)
	}
	flush()
	return rows
}

// splitCells breaks a baseline's glyphs into cell texts at wide gaps.
func splitCells(glyphs []glyph) []string {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].x < glyphs[j].x })

	var cells []string
	var sb strings.Builder
	var prevEnd float64

	for i, g := range glyphs {
		gap := g.x - prevEnd
		minGap := g.fontSize * cellGapFactor
		if minGap <= 0 {
			minGap = 10
		}
		if i > 0 && gap > minGap {
			if cell := strings.TrimSpace(sb.String()); cell != "" {
				cells = append(cells, cell)
			}
			sb.Reset()
		} else if i > 0 && gap > g.fontSize*0.3 {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.s)
		prevEnd = g.x + g.w
	}
	if cell := strings.TrimSpace(sb.String()); cell != "" {
		cells = append(cells, cell)
	}
	return cells
}

// findCaption scans lines within a bounded vertical distance of the region
// [bottomY, topY] for the first line matching the caption pattern.
// No match means a nil caption, never a guess.
func findCaption(lines []line, topY, bottomY float64, pattern *regexp.Regexp) *string {
	for _, l := range lines {
		if l.y > topY+captionScanDistance || l.y < bottomY-captionScanDistance {
			continue
		}
		if pattern.MatchString(l.text) {
			caption := l.text
			if len(caption) > captionMaxLen {
				caption = caption[:captionMaxLen] + "..."
			}
			return &caption
		}
	}
	return nil
}
