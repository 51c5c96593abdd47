package storage

import (
	"context"

	"github.com/papervault/papervault/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// Filter narrows a vector search by chunk metadata. Nil fields match
// everything.
type Filter struct {
	// DocumentId restricts results to one document's chunks.
	DocumentId *core.ID

	// Section restricts results to chunks from one named section.
	Section *string
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository

	// PutDocument stores a document, overwriting any previous record with
	// the same ID.
	PutDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all stored documents ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document record by ID.
	// Returns ErrNotFound if the document doesn't exist. Chunks are owned by
	// the ChunkRepository and are not touched.
	DeleteDocument(ctx context.Context, id core.ID) error
}

// ChunkRepository provides operations for managing chunks and vector search.
type ChunkRepository interface {
	Repository

	// ReplaceChunks atomically swaps a document's entire chunk set: all
	// previously stored chunks for the document are removed and the given
	// chunks written in a single transaction. Readers see either the old set
	// or the new set, never a mix.
	ReplaceChunks(ctx context.Context, docID core.ID, chunks []core.Chunk) error

	// DeleteChunks removes all chunks for a document atomically.
	// Deleting a document with no chunks is not an error.
	DeleteChunks(ctx context.Context, docID core.ID) error

	// GetChunks retrieves all chunks for a document ordered by ordinal.
	GetChunks(ctx context.Context, docID core.ID) ([]*core.Chunk, error)

	// Search finds the chunks most similar to the query vector, restricted
	// by the filter. Results are ordered by similarity descending, then
	// ordinal ascending, and capped at limit. Scores are cosine similarities
	// in [-1, 1].
	Search(ctx context.Context, vector []float32, limit int, filter Filter) ([]*core.SearchResult, error)
}

// QueryLogRepository provides the append-only search audit log.
type QueryLogRepository interface {
	Repository

	// AppendQuery appends one audit record, assigning its sequence ID and
	// CreatedAt timestamp. The log is write-once: records are never updated.
	AppendQuery(ctx context.Context, query *core.SearchQuery) (*core.SearchQuery, error)

	// RecentQueries retrieves up to limit audit records, newest first.
	RecentQueries(ctx context.Context, limit int) ([]*core.SearchQuery, error)
}
