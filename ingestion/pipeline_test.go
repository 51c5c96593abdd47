package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/papervault/ai/mock"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
	badgerstore "github.com/papervault/papervault/storage/badger"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.DocumentRepository, storage.ChunkRepository, *mock.MockEmbedder) {
	t.Helper()

	docRepo, chunkRepo, queryLog, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithEmbedder(embedder)

	pipeline, err := NewPipeline(docRepo, chunkRepo, provider, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		pipeline.Release()
		queryLog.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return pipeline, docRepo, chunkRepo, embedder
}

func TestNewPipelineValidation(t *testing.T) {
	docRepo, chunkRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, chunkRepo, provider)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(docRepo, nil, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(docRepo, chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestProcessExtractedIndexesDocument(t *testing.T) {
	pipeline, docRepo, chunkRepo, _ := newTestPipeline(t)
	ctx := context.Background()

	sections := map[string]string{
		core.SectionAbstract:     "We study dense retrieval over research papers.",
		core.SectionIntroduction: strings.Repeat("Introductory sentences go on. ", 40),
	}

	doc, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "full text", sections)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, doc.Status)
	assert.False(t, doc.IndexedAt.IsZero())
	assert.Equal(t, core.StageDone, doc.Stages.Text)

	stored, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, stored.Status)

	chunks, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Abstract chunks come before introduction chunks, ordinals contiguous.
	assert.Equal(t, core.SectionAbstract, chunks[0].Section)
	for i, c := range chunks {
		assert.Equal(t, i, c.Ordinal)
		assert.NotEmpty(t, c.Vector)
	}
}

func TestProcessExtractedIdempotent(t *testing.T) {
	pipeline, _, chunkRepo, _ := newTestPipeline(t)
	ctx := context.Background()

	sections := map[string]string{
		core.SectionAbstract: "Identical input must produce identical chunks.",
		core.SectionResults:  strings.Repeat("Result sentences repeat. ", 30),
	}

	doc1, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "full text", sections)
	require.NoError(t, err)
	first, err := chunkRepo.GetChunks(ctx, doc1.Id)
	require.NoError(t, err)

	doc2, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "full text", sections)
	require.NoError(t, err)
	assert.Equal(t, doc1.Id, doc2.Id)

	second, err := chunkRepo.GetChunks(ctx, doc2.Id)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Ordinal, second[i].Ordinal)
		assert.Equal(t, first[i].Section, second[i].Section)
		assert.Equal(t, first[i].Vector, second[i].Vector)
	}
}

func TestProcessRejectsConcurrentIngestion(t *testing.T) {
	pipeline, _, _, embedder := newTestPipeline(t)
	ctx := context.Background()

	var once sync.Once
	started := make(chan struct{})
	unblock := make(chan struct{})
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		once.Do(func() { close(started) })
		<-unblock
		return []float32{1, 0, 0}, nil
	}

	sections := map[string]string{core.SectionAbstract: "short abstract"}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = pipeline.ProcessExtracted(ctx, "paper.pdf", "same text", sections)
	}()

	<-started
	_, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "same text", sections)
	assert.ErrorIs(t, err, ErrIngestionInFlight)

	close(unblock)
	wg.Wait()
	require.NoError(t, firstErr)

	// Once the first ingestion finished, the document is free again.
	embedder.EmbedTextFunc = nil
	_, err = pipeline.ProcessExtracted(ctx, "paper.pdf", "same text", sections)
	assert.NoError(t, err)
}

func TestFailedChunksExcludedNotFatal(t *testing.T) {
	pipeline, docRepo, chunkRepo, embedder := newTestPipeline(t)
	ctx := context.Background()

	// One section embeds fine, the other fails permanently.
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "poison") {
			return nil, backoff.Permanent(errors.New("model rejected input"))
		}
		return []float32{1, 0, 0}, nil
	}

	sections := map[string]string{
		core.SectionAbstract: "healthy abstract text",
		core.SectionResults:  "poison results text",
	}

	doc, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "full text", sections)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, doc.Status)

	stored, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, stored.Status)

	chunks, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, core.SectionAbstract, chunks[0].Section)
}

func TestCancellationPreservesIndexedState(t *testing.T) {
	pipeline, docRepo, chunkRepo, _ := newTestPipeline(t)
	ctx := context.Background()

	sections := map[string]string{core.SectionAbstract: "stable abstract"}

	doc, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "the text", sections)
	require.NoError(t, err)
	before, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, before)
	recordBefore, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.ProcessExtracted(cancelled, "paper.pdf", "the text", sections)
	require.Error(t, err)

	// The previously indexed chunk set survives untouched.
	after, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.Equal(t, before[i].Vector, after[i].Vector)
	}

	// So does the document record describing it.
	stored, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, stored.Status)
	assert.Equal(t, recordBefore.FullText, stored.FullText)
	assert.True(t, recordBefore.IndexedAt.Equal(stored.IndexedAt))
}

func TestFailedReingestKeepsIndexedRecord(t *testing.T) {
	pipeline, docRepo, chunkRepo, embedder := newTestPipeline(t)
	ctx := context.Background()

	sections := map[string]string{core.SectionAbstract: "durable abstract"}

	doc, err := pipeline.ProcessExtracted(ctx, "paper.pdf", "durable text", sections)
	require.NoError(t, err)
	before, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// Every embedding call now fails, so the re-ingest produces no chunks.
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, backoff.Permanent(errors.New("model unavailable"))
	}

	_, err = pipeline.ProcessExtracted(ctx, "paper.pdf", "durable text", sections)
	assert.ErrorIs(t, err, ErrNoChunks)

	// Chunks and the document record both still reflect the indexed state.
	after, err := chunkRepo.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))

	stored, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusIndexed, stored.Status)
	assert.Equal(t, "durable text", stored.FullText)
}

func TestProcessEmptyInput(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t)

	_, err := pipeline.Process(context.Background(), "empty.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = pipeline.ProcessExtracted(context.Background(), "none.pdf", "", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestProcessUnreadablePDFFails(t *testing.T) {
	pipeline, docRepo, _, _ := newTestPipeline(t)
	ctx := context.Background()

	_, err := pipeline.Process(ctx, "junk.pdf", []byte("this is not a pdf"))
	require.Error(t, err)

	docID := core.IDFromBytes([]byte("this is not a pdf"))
	stored, err := docRepo.GetDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, stored.Status)
}
