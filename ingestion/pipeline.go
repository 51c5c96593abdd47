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

package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/chunk"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/extract"
	"github.com/papervault/papervault/storage"
)

// defaultExtractionBudget bounds wall-clock time spent parsing one PDF.
// Pathological files can have unbounded page and object counts.
const defaultExtractionBudget = 2 * time.Minute

// Pipeline orchestrates document ingestion: extraction, chunking, embedding
// and the final atomic index swap. A document moves
// uploaded -> extracting -> chunking -> embedding -> indexed, or to failed.
//
// Per-document mutual exclusion: a second Process call for a document whose
// ingestion is still running is rejected with ErrIngestionInFlight. A failed
// or cancelled run never disturbs the document's previously indexed chunks —
// the chunk set is swapped only as the last step, atomically.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	extractor          *extract.Extractor
	chunker            *chunk.Chunker
	embeddingPool      *ants.Pool
	extractionBudget   time.Duration
	logger             *slog.Logger

	mu       sync.Mutex
	inFlight map[core.ID]struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithExtractionBudget sets the wall-clock budget for PDF extraction.
// Exceeding it marks the document failed instead of blocking the worker.
func WithExtractionBudget(budget time.Duration) Option {
	return func(p *Pipeline) error {
		if budget > 0 {
			p.extractionBudget = budget
		}
		return nil
	}
}

// WithExtractor sets a custom extractor.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithChunker sets a custom chunker.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.NewChunker()
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           provider.Embedder(),
		extractor:          extract.NewExtractor(),
		chunker:            chunker,
		embeddingPool:      pool,
		extractionBudget:   defaultExtractionBudget,
		logger:             slog.Default(),
		inFlight:           make(map[core.ID]struct{}),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Process ingests one PDF end to end. The document ID is derived from the
// file bytes, so re-ingesting identical input targets the same document and
// yields an identical chunk set.
func (p *Pipeline) Process(ctx context.Context, filename string, pdfBytes []byte) (*core.Document, error) {
	if len(pdfBytes) == 0 {
		return nil, ErrEmptyInput
	}
	docID := core.IDFromBytes(pdfBytes)

	if !p.acquire(docID) {
		return nil, ErrIngestionInFlight
	}
	defer p.release(docID)

	prior, err := p.priorRecord(ctx, docID)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{
		Id:         docID,
		Filename:   filename,
		Status:     core.StatusUploaded,
		UploadedAt: time.Now().UTC(),
	}
	if err := p.documentRepository.PutDocument(ctx, doc); err != nil {
		return nil, err
	}

	if err := p.advance(ctx, doc, core.StatusExtracting); err != nil {
		return nil, err
	}

	extractCtx, cancel := context.WithTimeout(ctx, p.extractionBudget)
	result, err := p.extractor.Extract(extractCtx, filename, pdfBytes)
	cancel()
	if err != nil {
		p.logger.Warn("extraction failed", "document_id", docID, "filename", filename, "err", err)
		return doc, p.fail(ctx, doc, prior, err)
	}

	doc.PageCount = result.PageCount
	doc.Title = result.Title
	doc.Authors = result.Authors
	doc.DOI = result.DOI
	doc.Keywords = result.Keywords
	doc.FullText = result.FullText
	doc.Sections = result.Sections
	doc.Tables = result.Tables
	doc.Figures = result.Figures
	doc.References = result.References
	doc.Stages = result.Stages

	return p.index(ctx, doc, prior)
}

// ProcessExtracted ingests a document whose text was already extracted
// elsewhere. Extraction stages are reported as done-for-text only; the
// document ID is derived from the full text.
func (p *Pipeline) ProcessExtracted(ctx context.Context, filename, fullText string, sections map[string]string) (*core.Document, error) {
	if fullText == "" && len(sections) == 0 {
		return nil, ErrEmptyInput
	}
	docID := core.IDFromContent(fullText)

	if !p.acquire(docID) {
		return nil, ErrIngestionInFlight
	}
	defer p.release(docID)

	prior, err := p.priorRecord(ctx, docID)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{
		Id:         docID,
		Filename:   filename,
		FullText:   fullText,
		Sections:   sections,
		Stages:     core.ExtractionStages{Text: core.StageDone},
		Status:     core.StatusUploaded,
		UploadedAt: time.Now().UTC(),
	}
	if err := p.documentRepository.PutDocument(ctx, doc); err != nil {
		return nil, err
	}

	return p.index(ctx, doc, prior)
}

// index runs the chunking and embedding stages and performs the atomic
// chunk-set swap. On any failure or cancellation the previously indexed
// chunks stay untouched.
func (p *Pipeline) index(ctx context.Context, doc *core.Document, prior *core.Document) (*core.Document, error) {
	if err := p.advance(ctx, doc, core.StatusChunking); err != nil {
		return doc, err
	}

	chunks := p.chunker.Split(doc.Id, doc.FullText, doc.Sections)
	chunks = append(chunks, p.chunker.SplitTables(doc.Id, doc.Tables, len(chunks))...)
	if len(chunks) == 0 {
		return doc, p.fail(ctx, doc, prior, ErrNoChunks)
	}

	if err := p.advance(ctx, doc, core.StatusEmbedding); err != nil {
		return doc, err
	}

	embedded := embedChunks(ctx, p.embeddingPool, p.embedder, chunks, p.logger)
	if err := ctx.Err(); err != nil {
		// Cancelled mid-embedding: leave the prior indexed state alone.
		return doc, p.fail(ctx, doc, prior, err)
	}
	if len(embedded) == 0 {
		return doc, p.fail(ctx, doc, prior, ErrNoChunks)
	}

	if err := p.chunkRepository.ReplaceChunks(ctx, doc.Id, embedded); err != nil {
		return doc, p.fail(ctx, doc, prior, err)
	}

	doc.Status = core.StatusIndexed
	doc.IndexedAt = time.Now().UTC()
	if err := p.documentRepository.PutDocument(ctx, doc); err != nil {
		return doc, err
	}

	p.logger.Info("document indexed",
		"document_id", doc.Id,
		"filename", doc.Filename,
		"chunks", len(embedded))
	return doc, nil
}

// advance moves the document to the next state and persists it.
func (p *Pipeline) advance(ctx context.Context, doc *core.Document, status core.DocumentStatus) error {
	doc.Status = status
	return p.documentRepository.PutDocument(ctx, doc)
}

// fail records the failed run and returns the causing error. When the
// document was previously indexed, the prior record is written back so the
// document-level view keeps describing the chunk set that is still live;
// otherwise the document is marked failed. The status write uses a fresh
// context so cancellation of the pipeline context cannot also lose it.
func (p *Pipeline) fail(ctx context.Context, doc *core.Document, prior *core.Document, cause error) error {
	doc.Status = core.StatusFailed
	record := doc
	if prior != nil && prior.Status == core.StatusIndexed {
		p.logger.Warn("ingestion failed, keeping previously indexed record",
			"document_id", doc.Id, "err", cause)
		record = prior
	}
	putCtx := ctx
	if ctx.Err() != nil {
		putCtx = context.WithoutCancel(ctx)
	}
	if err := p.documentRepository.PutDocument(putCtx, record); err != nil {
		p.logger.Error("failed to record document failure", "document_id", doc.Id, "err", err)
	}
	return cause
}

// priorRecord fetches the stored record for a document about to be
// re-ingested. A missing record is not an error.
func (p *Pipeline) priorRecord(ctx context.Context, docID core.ID) (*core.Document, error) {
	prior, err := p.documentRepository.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prior, nil
}

// acquire registers a document as in flight. Returns false when an ingestion
// for the document is already running.
func (p *Pipeline) acquire(docID core.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[docID]; busy {
		return false
	}
	p.inFlight[docID] = struct{}{}
	return true
}

func (p *Pipeline) release(docID core.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, docID)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
