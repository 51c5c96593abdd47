package ai

import "errors"

// ErrDimensionMismatch is returned when the embedding service produces a
// vector whose length differs from the configured Dimension. Mixed-length
// vectors would silently corrupt similarity scores, so the mismatch is
// surfaced instead of stored.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")
