package domain

import "errors"

var (
	// ErrEmptyQuery is returned for empty or whitespace-only input.
	ErrEmptyQuery = errors.New("query is required")
	// ErrEmptyCorpus is returned when the source table yields no records.
	ErrEmptyCorpus = errors.New("corpus has no records")
	// ErrDimensionMismatch is returned when vector lengths disagree.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider wraps failures of the embedding backend.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrNotPrepared is returned by embedders used before Prepare.
	ErrNotPrepared = errors.New("embedder not prepared")
	// ErrQueryFailed wraps any query-time failure at the assistant boundary.
	ErrQueryFailed = errors.New("query failed")
)
