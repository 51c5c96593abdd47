package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papervault/papervault/core"
)

func TestIDRoundTrip(t *testing.T) {
	original := core.ID(12345678901234)

	data := MarshalID(original)
	decoded, err := UnmarshalID(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDocumentRoundTrip(t *testing.T) {
	title := "A Study of Things"
	doi := "10.1234/abc"
	now := time.Now().UTC().Truncate(time.Microsecond)

	original := &core.Document{
		Id:        core.ID(7),
		Filename:  "study.pdf",
		PageCount: 12,
		Title:     &title,
		Authors:   []string{"Alice Smith"},
		DOI:       &doi,
		Keywords:  []string{"things", "studies"},
		FullText:  "Abstract\nWe study things.",
		Sections:  map[string]string{core.SectionAbstract: "We study things."},
		Tables: []core.Table{
			{Page: 3, Index: 1, Cells: [][]string{{"a", "b"}}},
		},
		Figures: []core.Figure{
			{Page: 4, Index: 1, Width: 800, Height: 600, ImagePath: "figures/study_p4_fig1.png"},
		},
		References: []core.Reference{
			{Index: 1, Text: "Someone, 2020.", Authors: []string{"Someone"}},
		},
		Stages:     core.ExtractionStages{Text: core.StageDone, Tables: core.StageDone},
		Status:     core.StatusIndexed,
		UploadedAt: now,
		IndexedAt:  now.Add(time.Minute),
	}

	data := MarshalDocument(original)
	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestChunkRoundTrip(t *testing.T) {
	original := &core.Chunk{
		DocumentId: core.ID(42),
		Ordinal:    3,
		Text:       "chunk text body",
		Section:    core.SectionResults,
		Page:       5,
		Type:       core.ChunkTypeText,
		Vector:     []float32{0.1, -0.2, 0.3},
	}

	data := MarshalChunk(original)
	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestSearchQueryRoundTrip(t *testing.T) {
	original := &core.SearchQuery{
		Id:          core.ID(9),
		Text:        "what is attention",
		Vector:      []float32{0.5, 0.5},
		ResultCount: 4,
		TopScore:    0.91,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalSearchQuery(original)
	decoded, err := UnmarshalSearchQuery(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	chunk := &core.Chunk{DocumentId: 1, Text: "some text", Vector: []float32{1, 2, 3}}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)

	_, err = UnmarshalDocument([]byte{})
	assert.Error(t, err)
}
