// Package mock provides deterministic test doubles for the ai interfaces.
//
// The default embedder derives a unit vector from an FNV hash of the input
// text, so identical text always embeds identically — which is what the
// ingestion idempotency tests rely on.
package mock
