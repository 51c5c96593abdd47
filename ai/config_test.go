package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, 384, cfg.Dimension)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embed.internal:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithDimension(1536),
	)
	assert.Equal(t, "http://embed.internal:9100", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.Dimension)
}

func TestNormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithEmbeddingHost("http://localhost:11434"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)

	// Trailing slash is stripped first.
	cfg = NewConfig(WithEmbeddingHost("http://localhost:11434/"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)

	// Already canonical hosts are untouched.
	cfg = NewConfig(WithEmbeddingHost("http://localhost:11434/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	cfg := NewConfig(WithEmbeddingHost(""))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig(WithEmbeddingModel(""))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig(WithDimension(0))
	assert.Error(t, cfg.Validate())
}
