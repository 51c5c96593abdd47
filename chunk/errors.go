package chunk

import "errors"

var (
	// ErrInvalidChunkSize is returned when the window size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap is returned when the overlap is negative or not
	// smaller than the window size.
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than the chunk size")
)
