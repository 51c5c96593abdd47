package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/core"
)

// BatchProcessor regenerates embeddings for batches of chunks.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: retry attempts for each embedding API call
// retryBaseDelay: initial delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the texts of one batch of chunks and writes the fresh
// vectors onto them in place. The whole batch is retried as a unit.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	operation := func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = bp.retryBaseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(bp.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries+1, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: sent %d texts, got %d vectors", ErrEmbeddingCountMismatch, len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Vector = embeddings[i]
	}

	return nil
}
