package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs are generated from content hashing; search query IDs come
// from database sequences.
type ID uint64

// IDFromBytes generates a deterministic ID from raw content using BLAKE2b hashing.
// Re-ingesting identical bytes yields the same document ID.
func IDFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromContent generates a deterministic ID from text content.
func IDFromContent(text string) ID {
	return IDFromBytes([]byte(text))
}

// DocumentStatus tracks a document through the ingestion state machine.
// A document moves uploaded -> extracting -> chunking -> embedding -> indexed,
// or to failed from any non-terminal state.
type DocumentStatus int

const (
	StatusUploaded DocumentStatus = iota + 1
	StatusExtracting
	StatusChunking
	StatusEmbedding
	StatusIndexed
	StatusFailed
)

// String returns the status name used in logs and CLI output.
func (s DocumentStatus) String() string {
	switch s {
	case StatusUploaded:
		return "uploaded"
	case StatusExtracting:
		return "extracting"
	case StatusChunking:
		return "chunking"
	case StatusEmbedding:
		return "embedding"
	case StatusIndexed:
		return "indexed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a terminal state.
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// StageStatus records the outcome of one extraction stage.
// Stages succeed or fail independently of each other.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageDone
	StageFailed
)

// String returns the stage status name.
func (s StageStatus) String() string {
	switch s {
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ExtractionStages holds per-stage status flags for a document.
type ExtractionStages struct {
	Text       StageStatus
	Tables     StageStatus
	Figures    StageStatus
	References StageStatus
}

// Document represents one uploaded PDF research paper.
// Title, Authors, DOI and Keywords are best-effort extraction results and
// may be absent. Tables, Figures and References are stored as metadata only;
// they are not vectorized.
type Document struct {
	Id         ID
	Filename   string
	PageCount  int
	Title      *string
	Authors    []string
	DOI        *string
	Keywords   []string
	FullText   string
	Sections   map[string]string
	Tables     []Table
	Figures    []Figure
	References []Reference
	Stages     ExtractionStages
	Status     DocumentStatus
	UploadedAt time.Time
	IndexedAt  time.Time
}

// Table is a structured table extracted from a page.
// Index is the ordinal within the page, not document-global.
type Table struct {
	Page    int
	Index   int
	Caption *string
	Cells   [][]string
}

// Figure is an embedded raster image extracted from a page.
// The image bytes live outside this system; ImagePath is only a reference.
type Figure struct {
	Page      int
	Index     int
	Caption   *string
	Width     float64
	Height    float64
	ImagePath string
}

// Reference is one parsed bibliography entry.
// Year and Authors are heuristic and may be absent.
type Reference struct {
	Index   int
	Text    string
	Year    *int
	Authors []string
}

// ChunkType identifies the kind of content a chunk carries.
type ChunkType int

const (
	ChunkTypeText ChunkType = iota + 1
	ChunkTypeTable
	ChunkTypeReference
)

// String returns the chunk type name used in search responses.
func (t ChunkType) String() string {
	switch t {
	case ChunkTypeTable:
		return "table"
	case ChunkTypeReference:
		return "reference"
	default:
		return "text"
	}
}

// Chunk is the atomic retrieval unit. Chunks are immutable once created;
// re-ingesting a document replaces its whole chunk set.
type Chunk struct {
	DocumentId ID
	Ordinal    int // document-local order, strictly increasing; search tie-break
	Text       string
	Section    string
	Page       int // 1-based; 0 when the originating page is unknown
	Type       ChunkType
	Vector     []float32
}

// SearchQuery is a write-once audit record of one search call.
// It is appended for analytics and never consulted by the search path.
type SearchQuery struct {
	Id          ID
	Text        string
	Vector      []float32
	ResultCount int
	TopScore    float32
	CreatedAt   time.Time
}

// SearchResult pairs a chunk with its similarity score for a query.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// Canonical section names. Unrecognized text lands in SectionUnclassified
// rather than being dropped.
const (
	SectionAbstract     = "abstract"
	SectionIntroduction = "introduction"
	SectionMethodology  = "methodology"
	SectionResults      = "results"
	SectionConclusion   = "conclusion"
	SectionReferences   = "references"
	SectionUnclassified = "unclassified"
	SectionFullText     = "full_text"
)

// SectionOrder is the canonical paper order. The chunker processes sections
// in this order so chunk ordinals are stable across runs.
var SectionOrder = []string{
	SectionAbstract,
	SectionIntroduction,
	SectionMethodology,
	SectionResults,
	SectionConclusion,
	SectionReferences,
	SectionUnclassified,
	SectionFullText,
}
