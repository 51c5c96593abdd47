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

package chunk

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/papervault/papervault/core"
)

// Defaults for character-window chunking.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// softBreakDelimiters are tried in order when a window would cut mid-sentence.
var softBreakDelimiters = []string{". ", "! ", "? ", "\n\n", "\n"}

// Chunker splits document text into fixed-size overlapping windows.
// Splitting is purely deterministic: identical input always yields an
// identical chunk sequence.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithSize sets the nominal window size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		c.size = size
		return nil
	}
}

// WithOverlap sets how many characters consecutive windows share.
// Overlap must be smaller than the window size.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		c.overlap = overlap
		return nil
	}
}

// NewChunker creates a Chunker with the given options.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{size: DefaultSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.overlap >= c.size {
		return nil, ErrInvalidOverlap
	}
	return c, nil
}

// Split chunks a document's text. When at least one section carries text the
// canonical sections are processed in paper order, then any remaining
// caller-supplied section names in sorted order, so nothing is dropped and
// every chunk belongs to exactly one section; otherwise the full text is
// chunked as a single "full_text" span. Ordinals increase monotonically
// across the whole document.
func (c *Chunker) Split(docID core.ID, fullText string, sections map[string]string) []core.Chunk {
	if !hasText(sections) {
		sections = map[string]string{core.SectionFullText: fullText}
	}

	var chunks []core.Chunk
	ordinal := 0
	emit := func(name, text string) {
		chunkType := core.ChunkTypeText
		if name == core.SectionReferences {
			chunkType = core.ChunkTypeReference
		}
		for _, span := range c.windows(text) {
			chunks = append(chunks, core.Chunk{
				DocumentId: docID,
				Ordinal:    ordinal,
				Text:       span,
				Section:    name,
				Type:       chunkType,
			})
			ordinal++
		}
	}

	canonical := make(map[string]bool, len(core.SectionOrder))
	for _, name := range core.SectionOrder {
		canonical[name] = true
		if text, ok := sections[name]; ok {
			emit(name, text)
		}
	}

	// Section names outside the canonical set keep their own name rather
	// than being dropped.
	var extras []string
	for name := range sections {
		if !canonical[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		emit(name, sections[name])
	}

	return chunks
}

// SplitTables emits one chunk per table, cells flattened row by row.
// Ordinals continue from next; table chunks keep their page number.
func (c *Chunker) SplitTables(docID core.ID, tables []core.Table, next int) []core.Chunk {
	var chunks []core.Chunk
	for _, t := range tables {
		text := flattenTable(t)
		if text == "" {
			continue
		}
		chunks = append(chunks, core.Chunk{
			DocumentId: docID,
			Ordinal:    next,
			Text:       text,
			Section:    core.SectionUnclassified,
			Page:       t.Page,
			Type:       core.ChunkTypeTable,
		})
		next++
	}
	return chunks
}

// windows slides a character window over one span of text. The final partial
// window is emitted as-is; whitespace-only windows are not emitted at all.
func (c *Chunker) windows(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var spans []string
	start := 0
	for start < len(text) {
		end := c.windowEnd(text, start)

		if span := strings.TrimSpace(text[start:end]); span != "" {
			spans = append(spans, span)
		}

		if end >= len(text) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end // overlap would stall; give up the overlap for this step
		}
		start = next
	}
	return spans
}

// windowEnd picks the end of the window starting at start: nominal size,
// softened back to the last sentence delimiter, then the last space. A window
// with no break point is cut hard at a rune boundary.
func (c *Chunker) windowEnd(text string, start int) int {
	end := start + c.size
	if end >= len(text) {
		return len(text)
	}

	for _, delim := range softBreakDelimiters {
		if i := strings.LastIndex(text[start:end], delim); i > 0 {
			return start + i + len(delim)
		}
	}
	if i := strings.LastIndex(text[start:end], " "); i > 0 {
		return start + i
	}

	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// hasText reports whether any section carries non-whitespace text.
func hasText(sections map[string]string) bool {
	for _, text := range sections {
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}

// flattenTable renders a table's caption and cells as searchable text.
func flattenTable(t core.Table) string {
	var sb strings.Builder
	if t.Caption != nil {
		sb.WriteString(*t.Caption)
		sb.WriteByte('\n')
	}
	for _, row := range t.Cells {
		joined := strings.TrimSpace(strings.Join(row, " | "))
		if strings.Trim(joined, "| ") == "" {
			continue
		}
		sb.WriteString(joined)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}
