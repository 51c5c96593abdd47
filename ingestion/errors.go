package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrIngestionInFlight is returned when a second ingestion is requested
	// for a document that is already being processed.
	ErrIngestionInFlight = errors.New("ingestion already in flight for document")

	// ErrEmptyInput is returned when there is nothing to ingest.
	ErrEmptyInput = errors.New("empty ingestion input")

	// ErrNoChunks is returned when extraction produced no chunkable text.
	ErrNoChunks = errors.New("document produced no chunks")
)
