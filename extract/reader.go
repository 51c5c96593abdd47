package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Default page dimensions (US letter, points) used when a page carries no
// resolvable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// glyph is one positioned text run from a page content stream.
// Coordinates follow PDF conventions: origin bottom-left, y grows upward.
type glyph struct {
	x        float64
	y        float64
	w        float64
	fontSize float64
	s        string
}

// imageInfo describes one embedded raster image XObject.
type imageInfo struct {
	name   string
	width  float64
	height float64
}

// pageData is everything the extractor needs from one page.
type pageData struct {
	number int // 1-based
	width  float64
	height float64
	glyphs []glyph
	images []imageInfo
}

// document wraps a parsed PDF.
type document struct {
	pages []pageData
}

// readDocument parses raw PDF bytes into per-page glyph and image data.
// An unreadable PDF returns an error (document-fatal); a page whose content
// stream cannot be decoded yields an empty page instead of failing the
// document.
func readDocument(data []byte) (doc *document, err error) {
	// The underlying parser panics on some malformed files. Convert that
	// to an error so callers see ordinary failure semantics.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf parse: %v", r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("pdf parse: empty input")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf parse: %w", err)
	}

	doc = &document{}
	for num := 1; num <= reader.NumPage(); num++ {
		doc.pages = append(doc.pages, readPage(reader.Page(num), num))
	}
	return doc, nil
}

// readPage extracts glyphs and image references from a single page.
// Content-stream failures degrade to an empty page.
func readPage(page pdf.Page, number int) (pd pageData) {
	pd = pageData{number: number, width: defaultPageWidth, height: defaultPageHeight}
	if page.V.IsNull() {
		return pd
	}

	if w, h, ok := mediaBox(page); ok {
		pd.width, pd.height = w, h
	}
	pd.images = pageImages(page)

	defer func() {
		if recover() != nil {
			pd.glyphs = nil
		}
	}()

	content := page.Content()
	pd.glyphs = make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		pd.glyphs = append(pd.glyphs, glyph{
			x:        t.X,
			y:        t.Y,
			w:        t.W,
			fontSize: t.FontSize,
			s:        t.S,
		})
	}
	return pd
}

// mediaBox resolves the page MediaBox, walking up the page tree for
// inherited values.
func mediaBox(page pdf.Page) (width, height float64, ok bool) {
	v := page.V
	for i := 0; i < 16 && !v.IsNull(); i++ {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			width = mb.Index(2).Float64() - mb.Index(0).Float64()
			height = mb.Index(3).Float64() - mb.Index(1).Float64()
			if width > 0 && height > 0 {
				return width, height, true
			}
			return 0, 0, false
		}
		v = v.Key("Parent")
	}
	return 0, 0, false
}

// pageImages enumerates image XObjects from the page resources.
// Order is the resource dictionary key order, which the underlying library
// returns sorted, so numbering is deterministic.
func pageImages(page pdf.Page) []imageInfo {
	defer func() {
		recover() // a broken resource dict loses images, not the page
	}()

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return nil
	}
	xobjects := resources.Key("XObject")
	if xobjects.IsNull() {
		return nil
	}

	var images []imageInfo
	for _, name := range xobjects.Keys() {
		xo := xobjects.Key(name)
		if xo.IsNull() || xo.Key("Subtype").Name() != "Image" {
			continue
		}
		images = append(images, imageInfo{
			name:   name,
			width:  float64(xo.Key("Width").Int64()),
			height: float64(xo.Key("Height").Int64()),
		})
	}
	return images
}
