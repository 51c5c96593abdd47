// Package ai defines the embedding interfaces and configuration used by the
// ingestion and search pipelines.
//
// The embedding model is an external capability reached through the Embedder
// interface; the rest of the system assumes nothing about the vector space
// beyond cosine similarity being a meaningful relevance signal.
//
// Subpackage openai implements the interfaces against any OpenAI-compatible
// endpoint; subpackage mock provides a deterministic embedder for tests.
package ai
