// Package storage defines the persistence interfaces for documents, chunks
// and the search audit log, plus the binary (de)serialization helpers shared
// by implementations.
//
// The interfaces are backend-agnostic; package storage/badger provides the
// BadgerDB implementation. Chunk replacement is the storage layer's one
// non-trivial contract: a document's chunk set is swapped atomically, so a
// concurrent search sees the pre-replacement set until the swap commits.
package storage
