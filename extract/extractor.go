// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/layout"
)

// Extractor turns raw PDF bytes into the structured pieces of a document:
// reading-order text, sections, metadata, tables, figures and references.
//
// Parsing the file itself is all-or-nothing, but the downstream stages
// (tables, figures, references) fail independently: a stage error is
// recorded in the result's Stages and never aborts the others.
type Extractor struct {
	analyzer  *layout.Analyzer
	figureDir string
	logger    *slog.Logger
}

// Result carries everything one extraction produced, plus per-stage status.
type Result struct {
	PageCount  int
	Title      *string
	Authors    []string
	DOI        *string
	Keywords   []string
	FullText   string
	Sections   map[string]string
	Tables     []core.Table
	Figures    []core.Figure
	References []core.Reference
	Stages     core.ExtractionStages
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLayoutConfig overrides the column-detection tuning.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(e *Extractor) {
		e.analyzer = layout.NewAnalyzerWithConfig(cfg)
	}
}

// WithFigureDir sets the directory prefix recorded in figure image paths.
// Default is "figures".
func WithFigureDir(dir string) Option {
	return func(e *Extractor) {
		if dir != "" {
			e.figureDir = dir
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor with default settings.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		analyzer:  layout.NewAnalyzer(),
		figureDir: "figures",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "extractor")
	return e
}

// Extract parses the PDF and runs every extraction stage. An unreadable file
// returns ErrUnreadablePDF; everything after a successful parse degrades per
// stage instead of failing the call. The context is checked between pages so
// a wall-clock budget set by the caller cuts long documents off promptly.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*Result, error) {
	doc, err := readDocument(data)
	if err != nil {
		e.logger.Warn("pdf unreadable", "filename", filename, "error", err)
		return nil, wrapUnreadable(err)
	}
	if len(doc.pages) == 0 {
		return nil, wrapUnreadable(errNoPages)
	}

	result := &Result{PageCount: len(doc.pages)}
	stem := docStem(filename)

	var pageTexts []string
	for _, page := range doc.pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageLayout := e.analyzer.Analyze(layoutGlyphs(page), page.width)
		pageTexts = append(pageTexts, pageText(page, pageLayout))

		e.runStage(&result.Stages.Tables, "tables", func() {
			result.Tables = append(result.Tables, pageTables(page)...)
		})
		e.runStage(&result.Stages.Figures, "figures", func() {
			result.Figures = append(result.Figures, pageFigures(page, stem, e.figureDir)...)
		})
	}

	e.assembleText(result, pageTexts)
	e.extractMetadata(result, doc.pages[0])

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.runStage(&result.Stages.References, "references", func() {
		result.References = parseReferences(result.FullText)
	})

	e.logger.Info("extraction complete",
		"filename", filename,
		"pages", result.PageCount,
		"sections", len(result.Sections),
		"tables", len(result.Tables),
		"figures", len(result.Figures),
		"references", len(result.References))

	return result, nil
}

// runStage runs one best-effort stage. A panic inside the stage marks it
// failed and moves on; a stage already marked failed stays failed.
func (e *Extractor) runStage(status *core.StageStatus, name string, fn func()) {
	if *status == core.StageFailed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			*status = core.StageFailed
			e.logger.Warn("extraction stage failed", "stage", name, "panic", r)
		}
	}()
	fn()
	*status = core.StageDone
}

// assembleText joins page texts and splits sections. A document where no
// heading was recognized keeps only the full_text bucket; the chunker falls
// back to whole-document windows in that case.
func (e *Extractor) assembleText(result *Result, pageTexts []string) {
	var nonEmpty []string
	for _, t := range pageTexts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	result.FullText = strings.Join(nonEmpty, "\n")
	result.Sections = splitSections(result.FullText)

	if result.FullText == "" {
		result.Stages.Text = core.StageFailed
		e.logger.Warn("no text layer found, document may be scanned")
		return
	}
	result.Stages.Text = core.StageDone
}

// extractMetadata fills title, authors, DOI and keywords from the first page
// and the opening of the full text.
func (e *Extractor) extractMetadata(result *Result, first pageData) {
	result.Title, result.Authors = titleAndAuthors(first)

	head := result.FullText
	if len(head) > 8000 {
		head = head[:8000]
	}
	result.DOI = findDOI(head)
	result.Keywords = findKeywords(head)
}
