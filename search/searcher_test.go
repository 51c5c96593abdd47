package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/ai/mock"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
	badgerstore "github.com/papervault/papervault/storage/badger"
)

func newTestSearcher(t *testing.T) (*Searcher, storage.ChunkRepository, storage.QueryLogRepository, ai.Embedder) {
	t.Helper()

	_, chunkRepo, queryLog, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProvider()
	searcher, err := NewSearcher(chunkRepo, queryLog, provider)
	require.NoError(t, err)

	return searcher, chunkRepo, queryLog, provider.Embedder()
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, embedder ai.Embedder, docID core.ID, texts map[string]string) {
	t.Helper()
	ctx := context.Background()

	chunks := make([]core.Chunk, 0, len(texts))
	ordinal := 0
	for _, section := range core.SectionOrder {
		text, ok := texts[section]
		if !ok {
			continue
		}
		vector, err := embedder.EmbedText(ctx, text)
		require.NoError(t, err)
		chunks = append(chunks, core.Chunk{
			DocumentId: docID,
			Ordinal:    ordinal,
			Text:       text,
			Section:    section,
			Type:       core.ChunkTypeText,
			Vector:     vector,
		})
		ordinal++
	}
	require.NoError(t, repo.ReplaceChunks(ctx, docID, chunks))
}

func TestNewSearcherValidation(t *testing.T) {
	_, chunkRepo, queryLog, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	_, err = NewSearcher(nil, queryLog, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(chunkRepo, nil, provider)
	assert.ErrorIs(t, err, ErrQueryLogRepositoryRequired)

	_, err = NewSearcher(chunkRepo, queryLog, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)
	ctx := context.Background()

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract:    "dense retrieval over scientific papers",
		core.SectionResults:     "measurement of wall-clock latency",
		core.SectionMethodology: "transformer encoder architecture details",
	})

	// Query identical to one chunk's text: self-similarity is the maximum.
	response, err := searcher.Search(ctx, "measurement of wall-clock latency", 10)
	require.NoError(t, err)

	require.Equal(t, 3, response.ResultCount)
	require.Len(t, response.Hits, 3)
	assert.Equal(t, "measurement of wall-clock latency", response.Hits[0].Text)
	assert.Equal(t, core.SectionResults, response.Hits[0].Section)
	assert.InDelta(t, 1.0, float64(response.Hits[0].Score), 1e-3)
	assert.Equal(t, response.Hits[0].Score, response.TopScore)

	// Descending score order throughout.
	for i := 1; i < len(response.Hits); i++ {
		assert.GreaterOrEqual(t, response.Hits[i-1].Score, response.Hits[i].Score)
	}
	assert.GreaterOrEqual(t, response.SearchTimeMs, int64(0))
}

func TestSearchLimit(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract:    "first chunk",
		core.SectionMethodology: "second chunk",
		core.SectionResults:     "third chunk",
		core.SectionConclusion:  "fourth chunk",
	})

	response, err := searcher.Search(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, response.ResultCount)
	assert.Len(t, response.Hits, 2)
}

func TestSearchDocumentFilter(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)
	ctx := context.Background()

	docA := core.IDFromContent("doc-a")
	docB := core.IDFromContent("doc-b")
	seedChunks(t, chunkRepo, embedder, docA, map[string]string{
		core.SectionAbstract: "alpha document text",
	})
	seedChunks(t, chunkRepo, embedder, docB, map[string]string{
		core.SectionAbstract: "beta document text",
	})

	response, err := searcher.Search(ctx, "document text", 10, InDocument(docA))
	require.NoError(t, err)
	require.Len(t, response.Hits, 1)
	assert.Equal(t, docA, response.Hits[0].DocumentId)

	// Unknown document: empty response, not an error.
	response, err = searcher.Search(ctx, "document text", 10, InDocument(core.IDFromContent("missing")))
	require.NoError(t, err)
	assert.Equal(t, 0, response.ResultCount)
	assert.Empty(t, response.Hits)
}

func TestSearchSectionFilter(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)
	ctx := context.Background()

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract: "summary of the study",
		core.SectionResults:  "numbers and findings",
	})

	response, err := searcher.Search(ctx, "findings", 10, InSection(core.SectionResults))
	require.NoError(t, err)
	require.Len(t, response.Hits, 1)
	assert.Equal(t, core.SectionResults, response.Hits[0].Section)
}

func TestSearchEmptyQuery(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract: "some indexed text",
	})

	response, err := searcher.Search(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, response.ResultCount)
}

func TestSearchAppendsQueryLog(t *testing.T) {
	searcher, chunkRepo, queryLog, embedder := newTestSearcher(t)
	ctx := context.Background()

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract: "audit me",
	})

	response, err := searcher.Search(ctx, "audit me", 10)
	require.NoError(t, err)

	logged, err := queryLog.RecentQueries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "audit me", logged[0].Text)
	assert.Equal(t, response.ResultCount, logged[0].ResultCount)
	assert.Equal(t, response.TopScore, logged[0].TopScore)
	assert.False(t, logged[0].CreatedAt.IsZero())
}

type recordingMonitor struct {
	calls []string
	hits  int
}

func (r *recordingMonitor) Start(_ string)            { r.calls = append(r.calls, "start") }
func (r *recordingMonitor) AfterQueryEmbedding(_ int) { r.calls = append(r.calls, "embed") }
func (r *recordingMonitor) AfterVectorSearch(hits int) {
	r.calls = append(r.calls, "search")
	r.hits = hits
}
func (r *recordingMonitor) Finish(_ *Response) { r.calls = append(r.calls, "finish") }

func TestSearchWithMonitor(t *testing.T) {
	searcher, chunkRepo, _, embedder := newTestSearcher(t)

	docID := core.IDFromContent("doc-a")
	seedChunks(t, chunkRepo, embedder, docID, map[string]string{
		core.SectionAbstract: "observed text",
	})

	monitor := &recordingMonitor{}
	_, err := searcher.SearchWithMonitor(context.Background(), "observed text", 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "embed", "search", "finish"}, monitor.calls)
	assert.Equal(t, 1, monitor.hits)
}

func TestMatchedQueryTerms(t *testing.T) {
	chunkText := "The encoder maps tokens to dense vectors."

	matched := matchedQueryTerms(chunkText, "dense vectors for the encoder")
	assert.Equal(t, []string{"dense", "vectors", "encoder"}, matched)

	assert.Nil(t, matchedQueryTerms(chunkText, "the a of"))
	assert.Empty(t, matchedQueryTerms(chunkText, "unrelated words"))
}
