// Package layout provides per-page column layout analysis for PDF pages.
//
// Layout is decided independently for every page: scanned proceedings volumes
// mix single- and two-column pages within one document, so a document-wide
// flag would misorder text. Detection projects character boxes onto the
// horizontal axis and looks for a sustained low-density band (the column
// gutter) near the page midline.
package layout

// Kind is the detected column layout of a page.
type Kind int

const (
	// SingleColumn is the default and the fallback for inconclusive pages.
	SingleColumn Kind = iota
	// TwoColumn indicates a detected column gutter.
	TwoColumn
)

// String returns a string representation of the layout kind.
func (k Kind) String() string {
	if k == TwoColumn {
		return "two-column"
	}
	return "single-column"
}

// Layout is the analysis result for one page. Boundary is only meaningful
// for TwoColumn layouts and holds the x-coordinate of the gutter center.
type Layout struct {
	Kind     Kind
	Boundary float64
}

// Glyph is the horizontal extent of one rendered character.
// The analyzer only needs x-positions; vertical data is irrelevant here.
type Glyph struct {
	X     float64 // left edge
	Width float64
}

// Config holds detection thresholds.
type Config struct {
	// BinCount is the number of histogram bins across the page width.
	// Default: 100
	BinCount int

	// SmoothingWindow is the half-width of the moving-average window applied
	// to the raw histogram. Default: 3
	SmoothingWindow int

	// GapThresholdRatio is the density (relative to the page's peak density)
	// below which a bin counts as part of a gutter. Default: 0.08
	GapThresholdRatio float64

	// SearchBandStart/SearchBandEnd bound the horizontal region searched for
	// a gutter, as fractions of the page width. A real column gutter sits
	// near the midline; whitespace at the margins is not one.
	// Defaults: 0.25 and 0.75
	SearchBandStart float64
	SearchBandEnd   float64

	// MinGutterWidthRatio is the minimum gutter width, as a fraction of the
	// page width, for a below-threshold run to count as a column gutter.
	// A run narrower than one bin never counts. Default: 0.01
	MinGutterWidthRatio float64

	// MinGlyphs is the minimum number of glyphs required before a page is
	// analyzed at all. Near-empty pages default to single-column.
	// Default: 40
	MinGlyphs int
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		BinCount:            100,
		SmoothingWindow:     3,
		GapThresholdRatio:   0.08,
		SearchBandStart:     0.25,
		SearchBandEnd:       0.75,
		MinGutterWidthRatio: 0.01,
		MinGlyphs:           40,
	}
}

// Analyzer detects single- vs two-column page layouts.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an analyzer with default configuration.
func NewAnalyzer() *Analyzer {
	return &Analyzer{config: DefaultConfig()}
}

// NewAnalyzerWithConfig creates an analyzer with custom thresholds.
func NewAnalyzerWithConfig(config Config) *Analyzer {
	if config.BinCount <= 0 {
		config.BinCount = DefaultConfig().BinCount
	}
	if config.SearchBandEnd <= config.SearchBandStart {
		config.SearchBandStart = DefaultConfig().SearchBandStart
		config.SearchBandEnd = DefaultConfig().SearchBandEnd
	}
	return &Analyzer{config: config}
}

// Analyze decides the layout of one page from its glyph positions.
// Degenerate input (no glyphs, zero width) yields SingleColumn rather than
// an error: layout detection must never fail a document.
func (a *Analyzer) Analyze(glyphs []Glyph, pageWidth float64) Layout {
	if pageWidth <= 0 || len(glyphs) < a.config.MinGlyphs {
		return Layout{Kind: SingleColumn}
	}

	bins := a.histogram(glyphs, pageWidth)
	smoothed := smooth(bins, a.config.SmoothingWindow)

	var maxDensity float64
	for _, v := range smoothed {
		if v > maxDensity {
			maxDensity = v
		}
	}
	if maxDensity == 0 {
		return Layout{Kind: SingleColumn}
	}

	threshold := a.config.GapThresholdRatio * maxDensity
	start := int(float64(len(smoothed)) * a.config.SearchBandStart)
	end := int(float64(len(smoothed)) * a.config.SearchBandEnd)

	// Find the widest run of below-threshold bins inside the search band.
	bestStart, bestLen := -1, 0
	runStart, runLen := -1, 0
	for i := start; i < end; i++ {
		if smoothed[i] < threshold {
			if runStart < 0 {
				runStart = i
			}
			runLen++
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
		} else {
			runStart, runLen = -1, 0
		}
	}

	minGutterBins := int(a.config.MinGutterWidthRatio * float64(len(smoothed)))
	if minGutterBins < 1 {
		minGutterBins = 1
	}
	if bestStart < 0 || bestLen < minGutterBins {
		return Layout{Kind: SingleColumn}
	}

	binWidth := pageWidth / float64(len(bins))
	boundary := (float64(bestStart) + float64(bestLen)/2) * binWidth
	return Layout{Kind: TwoColumn, Boundary: boundary}
}

// histogram counts glyph centers per horizontal bin.
func (a *Analyzer) histogram(glyphs []Glyph, pageWidth float64) []float64 {
	bins := make([]float64, a.config.BinCount)
	binWidth := pageWidth / float64(a.config.BinCount)
	for _, g := range glyphs {
		center := g.X + g.Width/2
		idx := int(center / binWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bins) {
			idx = len(bins) - 1
		}
		bins[idx]++
	}
	return bins
}

// smooth applies a simple moving average with the given half-width.
func smooth(bins []float64, w int) []float64 {
	if w <= 0 {
		return bins
	}
	out := make([]float64, len(bins))
	for i := range bins {
		lo := max(0, i-w)
		hi := min(len(bins), i+w+1)
		var sum float64
		for j := lo; j < hi; j++ {
			sum += bins[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
