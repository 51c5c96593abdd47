package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	m := NewMockEmbedder()

	a, err := m.EmbedText(context.Background(), "same text")
	require.NoError(t, err)
	b, err := m.EmbedText(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := m.EmbedText(context.Background(), "different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	m := NewMockEmbedder()

	v, err := m.EmbedText(context.Background(), "normalize me")
	require.NoError(t, err)
	require.Len(t, v, 384)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestMockEmbedderDimension(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimension = 8

	v, err := m.EmbedText(context.Background(), "short")
	require.NoError(t, err)
	assert.Len(t, v, 8)
}

func TestMockEmbedderBatchAndCallCount(t *testing.T) {
	m := NewMockEmbedder()

	vs, err := m.EmbedTexts(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, vs[0], vs[2])
	assert.NotEqual(t, vs[0], vs[1])

	_, err = m.EmbedText(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}

func TestMockEmbedderInjectedBehavior(t *testing.T) {
	m := NewMockEmbedder()
	boom := errors.New("embedding backend down")
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedText(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.CallCount())
}
