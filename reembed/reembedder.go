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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to embed in each API call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the vectors of every indexed chunk in the store.
// Each document's chunk set is replaced atomically once all of its batches
// embedded, so search stays consistent while the run is in flight.
type Reembedder struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	config             *Config
	progress           io.Writer
	processor          *BatchProcessor
	iterator           *DocumentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		config:             config,
		progress:           progress,
		processor:          NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay),
		iterator:           NewDocumentIterator(documentRepository),
	}, nil
}

// Run executes the reembedding operation over every indexed document.
// Progress is reported to the configured writer. The run stops at the first
// document that cannot be reembedded; documents already swapped keep their
// fresh vectors.
func (r *Reembedder) Run(ctx context.Context) error {
	totalChunks, err := r.countChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No indexed chunks found (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
		totalChunks, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(doc *core.Document) error {
		if err := r.reembedDocument(ctx, doc.Id, tracker); err != nil {
			return fmt.Errorf("failed to reembed document %d: %w", doc.Id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		totalChunks, elapsed.Round(time.Second), float64(totalChunks)/elapsed.Seconds())

	return nil
}

// reembedDocument re-embeds one document's chunks in batches and swaps the
// chunk set atomically once every batch succeeded.
func (r *Reembedder) reembedDocument(ctx context.Context, docID core.ID, tracker *ProgressTracker) error {
	chunks, err := r.chunkRepository.GetChunks(ctx, docID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	for start := 0; start < len(chunks); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := r.processor.Process(ctx, chunks[start:end]); err != nil {
			return err
		}
		tracker.Add(end - start)
	}

	replacement := make([]core.Chunk, len(chunks))
	for i, chunk := range chunks {
		replacement[i] = *chunk
	}
	return r.chunkRepository.ReplaceChunks(ctx, docID, replacement)
}

// countChunks totals the chunks of all indexed documents for progress
// reporting.
func (r *Reembedder) countChunks(ctx context.Context) (int, error) {
	total := 0
	err := r.iterator.ForEach(ctx, func(doc *core.Document) error {
		chunks, err := r.chunkRepository.GetChunks(ctx, doc.Id)
		if err != nil {
			return err
		}
		total += len(chunks)
		return nil
	})
	return total, err
}
