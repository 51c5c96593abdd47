package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Filename: "paper.pdf",
				Status:   StatusUploaded,
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty filename",
			doc: &Document{
				Status: StatusUploaded,
			},
			wantErr: ErrEmptyFilename,
		},
		{
			name: "unknown status",
			doc: &Document{
				Filename: "paper.pdf",
				Status:   DocumentStatus(42),
			},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	valid := Chunk{
		DocumentId: IDFromContent("doc"),
		Ordinal:    0,
		Text:       "some chunk text",
		Section:    SectionAbstract,
		Type:       ChunkTypeText,
	}

	tests := []struct {
		name    string
		mutate  func(c *Chunk)
		wantErr error
	}{
		{
			name:    "valid chunk",
			mutate:  func(c *Chunk) {},
			wantErr: nil,
		},
		{
			name:    "missing document id",
			mutate:  func(c *Chunk) { c.DocumentId = 0 },
			wantErr: ErrMissingDocumentId,
		},
		{
			name:    "negative ordinal",
			mutate:  func(c *Chunk) { c.Ordinal = -1 },
			wantErr: ErrNegativeOrdinal,
		},
		{
			name:    "empty text",
			mutate:  func(c *Chunk) { c.Text = "" },
			wantErr: ErrEmptyChunkText,
		},
		{
			name:    "unknown type",
			mutate:  func(c *Chunk) { c.Type = ChunkType(9) },
			wantErr: ErrInvalidChunkType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateChunk(&c)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk_Nil(t *testing.T) {
	if err := ValidateChunk(nil); !errors.Is(err, ErrInvalidChunk) {
		t.Errorf("ValidateChunk(nil) error = %v, want ErrInvalidChunk", err)
	}
}
