package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/papervault/papervault/core"
)

var figureCaptionRe = regexp.MustCompile(`^(?:Figure|FIGURE|Fig\.?|FIG\.?)\s+\d+`)

// pageFigures turns each embedded raster image on a page into a Figure
// record. The image bytes themselves are owned by external file storage;
// only the reference path is recorded here.
func pageFigures(page pageData, docStem, figureDir string) []core.Figure {
	if len(page.images) == 0 {
		return nil
	}

	lines := buildLines(page.glyphs)

	figures := make([]core.Figure, 0, len(page.images))
	for i, img := range page.images {
		index := i + 1
		name := fmt.Sprintf("%s_p%d_fig%d.png", docStem, page.number, index)
		figures = append(figures, core.Figure{
			Page:      page.number,
			Index:     index,
			Caption:   figureCaption(lines, index),
			Width:     img.width,
			Height:    img.height,
			ImagePath: filepath.Join(figureDir, name),
		})
	}
	return figures
}

// figureCaption finds the caption line for the n-th figure on a page.
// Image XObjects carry no reliable position, so the caption is matched by
// figure number within the page text instead of by proximity. Absence of a
// match yields nil.
func figureCaption(lines []line, index int) *string {
	numbered := regexp.MustCompile(fmt.Sprintf(`^(?:Figure|FIGURE|Fig\.?|FIG\.?)\s+%d[:.]?`, index))
	for _, l := range lines {
		if numbered.MatchString(l.text) {
			caption := l.text
			if len(caption) > captionMaxLen {
				caption = caption[:captionMaxLen] + "..."
			}
			return &caption
		}
	}
	// Fall back to any figure caption line when per-number matching fails
	// and the page has exactly one image.
	if index == 1 {
		for _, l := range lines {
			if figureCaptionRe.MatchString(l.text) {
				caption := l.text
				if len(caption) > captionMaxLen {
					caption = caption[:captionMaxLen] + "..."
				}
				return &caption
			}
		}
	}
	return nil
}

// docStem derives the figure filename stem from the document filename.
func docStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
