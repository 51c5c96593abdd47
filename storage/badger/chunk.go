// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
//
// Vectors are stored normalized, and query vectors are normalized on entry,
// so similarity is a plain dot product. Search is a full prefix scan; at the
// corpus sizes this serves (thousands of papers, ~100 chunks each) that
// stays well under interactive latency without an ANN index.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources of its own.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceChunks atomically swaps a document's entire chunk set. The deletes
// and writes share one transaction, so a concurrent reader sees the old set
// until the commit and the new set after it, never a mix.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, docID core.ID, chunks []core.Chunk) error {
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteDocChunks(tx, docID); err != nil {
			return err
		}
		for i := range chunks {
			chunk := chunks[i]
			chunk.Vector = normalize(chunk.Vector)
			key := makeChunkKey(docID, chunk.Ordinal)
			if err := tx.Set(key, storage.MarshalChunk(&chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteChunks removes all chunks for a document atomically.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, docID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteDocChunks(tx, docID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves all chunks for a document ordered by ordinal.
func (r *ChunkRepository) GetChunks(ctx context.Context, docID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocPrefix(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// BigEndian ordinal keys make iteration order ordinal order.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				results = append(results, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Search finds the chunks most similar to the query vector. Results are
// ordered by similarity descending, then ordinal ascending, then document ID
// ascending — the tie-break is total, so identical inputs always rank
// identically.
func (r *ChunkRepository) Search(ctx context.Context, vector []float32, limit int, filter storage.Filter) ([]*core.SearchResult, error) {
	if limit < 1 {
		return nil, storage.ErrInvalidQuery
	}
	query := normalize(vector)

	// A document filter narrows the scan to that document's key range.
	prefix := []byte(chunkPrefix + ":")
	if filter.DocumentId != nil {
		prefix = makeChunkDocPrefix(*filter.DocumentId)
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}
			if filter.Section != nil && chunk.Section != *filter.Section {
				continue
			}

			results = append(results, &core.SearchResult{
				Chunk: chunk,
				Score: dotProduct(query, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Chunk.Ordinal != b.Chunk.Ordinal {
			return a.Chunk.Ordinal - b.Chunk.Ordinal
		}
		if a.Chunk.DocumentId != b.Chunk.DocumentId {
			if a.Chunk.DocumentId < b.Chunk.DocumentId {
				return -1
			}
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// deleteDocChunks removes every chunk key under a document's prefix within
// the given transaction.
func deleteDocChunks(tx *badger.Txn, docID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkDocPrefix(docID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// normalize returns a unit-length copy of the vector. Zero vectors are
// returned unchanged; their similarity to anything is 0.
func normalize(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}

	norm := float32(1.0 / math.Sqrt(sumSquares))
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = v * norm
	}
	return out
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
