// Package search implements semantic search over indexed document chunks.
//
// A Searcher embeds the query text, runs a filtered cosine-similarity search
// against the chunk store, and returns a ranked Response. Filters narrow the
// search to a single document or section. Every executed search is appended
// to the query log for auditing; the log is never consulted at query time.
package search
