package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestChunkMUS_Roundtrip(t *testing.T) {
	in := Chunk{
		DocumentId: IDFromContent("paper"),
		Ordinal:    7,
		Text:       "neural architectures for sequence labeling",
		Section:    SectionMethodology,
		Page:       3,
		Type:       ChunkTypeText,
		Vector:     []float32{0.1, -0.4, 0.9},
	}

	bs := make([]byte, ChunkMUS.Size(in))
	n := ChunkMUS.Marshal(in, bs)
	require.Equal(t, len(bs), n)

	out, n, err := ChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, in, out)
}

func TestChunkMUS_Skip(t *testing.T) {
	in := Chunk{
		DocumentId: 42,
		Ordinal:    0,
		Text:       "abc",
		Section:    SectionAbstract,
		Type:       ChunkTypeReference,
	}
	bs := make([]byte, ChunkMUS.Size(in))
	ChunkMUS.Marshal(in, bs)

	n, err := ChunkMUS.Skip(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
}

func TestDocumentMUS_Roundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	in := Document{
		Id:        IDFromContent("doc"),
		Filename:  "attention.pdf",
		PageCount: 9,
		Title:     strp("Attention Is All You Need"),
		Authors:   []string{"A. Vaswani", "N. Shazeer"},
		DOI:       strp("10.5555/3295222"),
		Keywords:  []string{"transformers", "attention"},
		FullText:  "Abstract\nThe dominant sequence transduction models...",
		Sections: map[string]string{
			SectionAbstract: "The dominant sequence transduction models...",
		},
		Tables: []Table{
			{Page: 5, Index: 1, Caption: strp("Table 1: BLEU scores"), Cells: [][]string{{"Model", "BLEU"}, {"base", "27.3"}}},
		},
		Figures: []Figure{
			{Page: 2, Index: 1, Caption: strp("Figure 1: Model architecture"), Width: 320, Height: 480, ImagePath: "attention_p2_fig1.png"},
		},
		References: []Reference{
			{Index: 1, Text: "D. Bahdanau et al. Neural machine translation. 2015.", Year: intp(2015), Authors: []string{"D. Bahdanau et al"}},
		},
		Stages: ExtractionStages{
			Text:       StageDone,
			Tables:     StageDone,
			Figures:    StageFailed,
			References: StageDone,
		},
		Status:     StatusIndexed,
		UploadedAt: now,
		IndexedAt:  now.Add(time.Minute),
	}

	bs := make([]byte, DocumentMUS.Size(in))
	n := DocumentMUS.Marshal(in, bs)
	require.Equal(t, len(bs), n)

	out, n, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, in, out)
}

func TestDocumentMUS_NilOptionals(t *testing.T) {
	in := Document{
		Id:         1,
		Filename:   "scan.pdf",
		Status:     StatusFailed,
		UploadedAt: time.Now().UTC().Truncate(time.Microsecond),
		IndexedAt:  time.UnixMicro(0).UTC(),
	}

	bs := make([]byte, DocumentMUS.Size(in))
	DocumentMUS.Marshal(in, bs)

	out, _, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Nil(t, out.Title)
	assert.Nil(t, out.DOI)
	assert.Equal(t, StatusFailed, out.Status)
}

func TestSearchQueryMUS_Roundtrip(t *testing.T) {
	in := SearchQuery{
		Id:          9,
		Text:        "what is self attention",
		Vector:      []float32{0.5, 0.5},
		ResultCount: 10,
		TopScore:    0.92,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, SearchQueryMUS.Size(in))
	n := SearchQueryMUS.Marshal(in, bs)
	require.Equal(t, len(bs), n)

	out, _, err := SearchQueryMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIDMUS_Roundtrip(t *testing.T) {
	for _, id := range []ID{0, 1, 255, 1 << 40, 1<<64 - 1} {
		bs := make([]byte, IDMUS.Size(id))
		IDMUS.Marshal(id, bs)
		out, _, err := IDMUS.Unmarshal(bs)
		require.NoError(t, err)
		assert.Equal(t, id, out)
	}
}
