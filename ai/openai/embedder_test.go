package openai

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/papervault/ai"
)

// stubBackend stands in for the langchaingo embedder so dimension checks can
// be exercised without a live embedding service.
type stubBackend struct {
	vectors [][]float32
}

func (s *stubBackend) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.vectors, nil
}

func (s *stubBackend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if len(s.vectors) == 0 {
		return nil, nil
	}
	return s.vectors[0], nil
}

func newStubEmbedder(dimension int, vectors ...[]float32) *Embedder {
	return &Embedder{
		embedder:  &stubBackend{vectors: vectors},
		dimension: dimension,
		logger:    slog.Default(),
	}
}

func TestEmbedTextEnforcesDimension(t *testing.T) {
	ctx := context.Background()

	e := newStubEmbedder(3, []float32{0.1, 0.2, 0.3})
	vec, err := e.EmbedText(ctx, "fits")
	require.NoError(t, err)
	assert.Len(t, vec, 3)

	e = newStubEmbedder(3, []float32{0.1, 0.2})
	_, err = e.EmbedText(ctx, "too short")
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestEmbedTextsEnforcesDimension(t *testing.T) {
	ctx := context.Background()

	e := newStubEmbedder(2, []float32{1, 0}, []float32{0, 1})
	vecs, err := e.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	// A single oversized vector in the batch fails the whole call.
	e = newStubEmbedder(2, []float32{1, 0}, []float32{1, 0, 0})
	_, err = e.EmbedTexts(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestEmbedderDimensionFromConfig(t *testing.T) {
	cfg := ai.NewConfig(ai.WithDimension(768))
	e, err := newEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, 768, e.dimension)
}
