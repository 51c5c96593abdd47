// Package chunk splits extracted document text into the fixed-size
// overlapping windows that get embedded and indexed.
//
// Chunking is section-aware: windows never span a section boundary, sections
// are processed in canonical paper order, and ordinals increase monotonically
// across the whole document. Identical input always produces an identical
// chunk sequence, which is what makes re-ingestion idempotent.
package chunk
