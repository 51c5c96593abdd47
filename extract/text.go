package extract

import (
	"sort"
	"strings"

	"github.com/papervault/papervault/layout"
)

// yTolerance groups glyphs into the same text line when their baselines are
// within this many points.
const yTolerance = 2.0

// line is one assembled text line with layout metadata.
type line struct {
	y        float64 // baseline, PDF coordinates (larger = higher on page)
	minX     float64
	text     string
	fontSize float64 // average over the line's glyphs
}

// buildLines groups glyphs into lines by baseline, ordered top of page first,
// glyphs within a line ordered left to right.
func buildLines(glyphs []glyph) []line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y // higher y first (top of page)
		}
		return sorted[i].x < sorted[j].x
	})

	var lines []line
	var current []glyph
	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].x < current[j].x })
		var sb strings.Builder
		var sizeSum, prevEnd float64
		minX := current[0].x
		for i, g := range current {
			// Insert a space when there is a visible gap between runs.
			if i > 0 && g.x-prevEnd > g.fontSize*0.3 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString(g.s)
			sizeSum += g.fontSize
			prevEnd = g.x + g.w
		}
		text := strings.TrimSpace(sb.String())
		if text != "" {
			lines = append(lines, line{
				y:        current[0].y,
				minX:     minX,
				text:     text,
				fontSize: sizeSum / float64(len(current)),
			})
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
	return lines
}

// pageText assembles one page's text in reading order. For two-column pages
// the whole left column is emitted before any right-column text; the two are
// never interleaved.
func pageText(page pageData, pageLayout layout.Layout) string {
	if len(page.glyphs) == 0 {
		return ""
	}

	if pageLayout.Kind != layout.TwoColumn {
		return joinLines(buildLines(page.glyphs))
	}

	var left, right []glyph
	for _, g := range page.glyphs {
		if g.x+g.w/2 < pageLayout.Boundary {
			left = append(left, g)
		} else {
			right = append(right, g)
		}
	}

	leftText := joinLines(buildLines(left))
	rightText := joinLines(buildLines(right))

	switch {
	case leftText == "":
		return rightText
	case rightText == "":
		return leftText
	default:
		return leftText + "\n" + rightText
	}
}

func joinLines(lines []line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text
	}
	return strings.Join(parts, "\n")
}

// layoutGlyphs converts a page's glyphs into the layout analyzer's input type.
func layoutGlyphs(page pageData) []layout.Glyph {
	out := make([]layout.Glyph, len(page.glyphs))
	for i, g := range page.glyphs {
		out[i] = layout.Glyph{X: g.x, Width: g.w}
	}
	return out
}
