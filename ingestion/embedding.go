package ingestion

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/core"
)

// Retry tuning for per-chunk embedding calls.
const (
	embedInitialInterval = 500 * time.Millisecond
	embedMaxInterval     = 10 * time.Second
	embedMaxElapsed      = 30 * time.Second
)

// embedChunks generates a vector for every chunk, fanning the work out over
// the worker pool. Each chunk is retried independently with exponential
// backoff; a chunk that still fails after the retry budget is dropped from
// the returned set (and logged), never stored vectorless. The returned
// chunks are in ordinal order.
func embedChunks(ctx context.Context, pool *ants.Pool, embedder ai.Embedder, chunks []core.Chunk, logger *slog.Logger) []core.Chunk {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		embedded = make([]core.Chunk, 0, len(chunks))
		failed   int
	)

	for i := range chunks {
		chunk := chunks[i]
		wg.Add(1)
		submit := func() {
			defer wg.Done()

			vector, err := embedWithRetry(ctx, embedder, chunk.Text)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				logger.Warn("chunk embedding failed, excluding from index",
					"document_id", chunk.DocumentId,
					"ordinal", chunk.Ordinal,
					"err", err)
				return
			}

			chunk.Vector = vector
			mu.Lock()
			embedded = append(embedded, chunk)
			mu.Unlock()
		}
		if err := pool.Submit(submit); err != nil {
			// Pool exhausted or released; run inline rather than lose the chunk.
			submit()
		}
	}
	wg.Wait()

	slices.SortFunc(embedded, func(a, b core.Chunk) int {
		return a.Ordinal - b.Ordinal
	})

	if failed > 0 {
		logger.Warn("some chunks excluded from index", "failed", failed, "embedded", len(embedded))
	}
	return embedded
}

// embedWithRetry calls the embedder with exponential backoff. Context
// cancellation stops the retries immediately.
func embedWithRetry(ctx context.Context, embedder ai.Embedder, text string) ([]float32, error) {
	var vector []float32

	operation := func() error {
		v, err := embedder.EmbedText(ctx, text)
		if err != nil {
			return err
		}
		vector = v
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = embedInitialInterval
	b.MaxInterval = embedMaxInterval
	b.MaxElapsedTime = embedMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return vector, nil
}
