// Package reembed regenerates the vectors of every indexed chunk with the
// currently configured embedding model.
//
// The embedding model's identity is configuration: after switching models the
// stored vectors no longer live in the query space and the whole index must
// be rebuilt. A Reembedder walks every document, re-embeds its chunks in
// batches with retry, and swaps each document's chunk set atomically, with
// progress reporting for what is typically a long-running operation.
package reembed
