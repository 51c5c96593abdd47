// Package ingestion provides pipeline orchestration for processing PDF
// research papers into the searchable index.
//
// The Pipeline type drives one document through extraction, chunking,
// embedding and the atomic chunk-set swap, persisting the document's status
// at every transition. Key guarantees:
//   - One ingestion per document at a time; concurrent attempts are rejected.
//   - Identical input re-ingested yields an identical chunk set.
//   - Failure or cancellation never disturbs a previously indexed chunk set.
//   - A chunk whose embedding keeps failing is excluded and logged, not fatal.
package ingestion
