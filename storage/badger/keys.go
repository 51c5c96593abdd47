package badger

import (
	"encoding/binary"

	"github.com/papervault/papervault/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "docrec"
	chunkPrefix    = "chkrec"
	queryLogPrefix = "qlogrec"
	queryLogIDSeq  = "qlogseq"
)

// makeDocumentKey generates a key for a document by ID.
// The ID is BigEndian so iteration order is numeric ID order.
func makeDocumentKey(id core.ID) []byte {
	prefix := documentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:documentID:ordinal, both BigEndian so a document's chunks
// are contiguous and ordinal-ordered under its prefix.
func makeChunkKey(docID core.ID, ordinal int) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	return buf
}

// makeChunkDocPrefix generates the key prefix covering all chunks of one
// document, for prefix scans and atomic delete-then-write replacement.
func makeChunkDocPrefix(docID core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeQueryLogKey generates a key for a search audit record.
// BigEndian sequence numbers make reverse iteration return newest first.
func makeQueryLogKey(id core.ID) []byte {
	prefix := queryLogPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
