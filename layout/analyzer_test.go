package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const pageWidth = 612.0 // US letter, points

// columnGlyphs fabricates glyphs evenly spread over [left, right) on several lines.
func columnGlyphs(left, right float64, count int) []Glyph {
	glyphs := make([]Glyph, 0, count)
	step := (right - left) / float64(count)
	for i := 0; i < count; i++ {
		glyphs = append(glyphs, Glyph{X: left + float64(i)*step, Width: step * 0.8})
	}
	return glyphs
}

func TestAnalyze_TwoColumn(t *testing.T) {
	// Dense text in [50,290] and [322,562], empty gutter around the midline.
	glyphs := append(columnGlyphs(50, 290, 400), columnGlyphs(322, 562, 400)...)

	result := NewAnalyzer().Analyze(glyphs, pageWidth)

	assert.Equal(t, TwoColumn, result.Kind)
	assert.InDelta(t, pageWidth/2, result.Boundary, 40,
		"boundary should sit near the page midline")
}

func TestAnalyze_SingleColumn(t *testing.T) {
	glyphs := columnGlyphs(72, 540, 800)

	result := NewAnalyzer().Analyze(glyphs, pageWidth)

	assert.Equal(t, SingleColumn, result.Kind)
}

func TestAnalyze_EmptyPage(t *testing.T) {
	result := NewAnalyzer().Analyze(nil, pageWidth)
	assert.Equal(t, SingleColumn, result.Kind)
}

func TestAnalyze_NearEmptyPage(t *testing.T) {
	// Below MinGlyphs: too little evidence, default to single-column.
	glyphs := columnGlyphs(50, 100, 10)
	result := NewAnalyzer().Analyze(glyphs, pageWidth)
	assert.Equal(t, SingleColumn, result.Kind)
}

func TestAnalyze_ZeroWidthPage(t *testing.T) {
	glyphs := columnGlyphs(50, 290, 400)
	result := NewAnalyzer().Analyze(glyphs, 0)
	assert.Equal(t, SingleColumn, result.Kind)
}

func TestAnalyze_MarginWhitespaceIsNotAGutter(t *testing.T) {
	// All text crowded into the left half. The empty right half is outside
	// the search band's interior run logic only partially; the detected gap
	// must not classify the page as two-column with a boundary at a margin.
	glyphs := columnGlyphs(40, 280, 600)

	result := NewAnalyzer().Analyze(glyphs, pageWidth)

	if result.Kind == TwoColumn {
		// If a gap was found it must be near the midline band, by construction
		// of the search band.
		assert.GreaterOrEqual(t, result.Boundary, pageWidth*0.25)
		assert.LessOrEqual(t, result.Boundary, pageWidth*0.75)
	}
}

func TestAnalyze_NarrowGapBelowMinGutterWidth(t *testing.T) {
	// An 18pt gap leaves only a couple of empty bins, far narrower than a
	// real column gutter.
	glyphs := append(columnGlyphs(50, 294, 400), columnGlyphs(312, 562, 400)...)

	cfg := DefaultConfig()
	cfg.SmoothingWindow = 0
	assert.Equal(t, TwoColumn, NewAnalyzerWithConfig(cfg).Analyze(glyphs, pageWidth).Kind)

	// Requiring at least 8 of 100 bins (~49pt) rejects the narrow gap.
	cfg.MinGutterWidthRatio = 0.08
	assert.Equal(t, SingleColumn, NewAnalyzerWithConfig(cfg).Analyze(glyphs, pageWidth).Kind)
}

func TestAnalyze_PerPageIndependence(t *testing.T) {
	a := NewAnalyzer()

	two := append(columnGlyphs(50, 290, 400), columnGlyphs(322, 562, 400)...)
	one := columnGlyphs(72, 540, 800)

	assert.Equal(t, TwoColumn, a.Analyze(two, pageWidth).Kind)
	assert.Equal(t, SingleColumn, a.Analyze(one, pageWidth).Kind)
	// Same analyzer, same answers again: no state leaks between pages.
	assert.Equal(t, TwoColumn, a.Analyze(two, pageWidth).Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "single-column", SingleColumn.String())
	assert.Equal(t, "two-column", TwoColumn.String())
}
