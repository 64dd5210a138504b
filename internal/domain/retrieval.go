package domain

// Retrieval defaults.
const (
	DefaultThreshold = 0.5
	DefaultTopK      = 3
)

// MatchResult is one ranked corpus position with its cosine similarity.
type MatchResult struct {
	Index int
	Score float64
}

// RetrievalConfig bounds a single retrieval call.
type RetrievalConfig struct {
	Threshold float64
	TopK      int
}

// DefaultRetrievalConfig returns threshold 0.5 and top-k 3.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{Threshold: DefaultThreshold, TopK: DefaultTopK}
}

// Normalize replaces a non-positive TopK with the default.
func (c RetrievalConfig) Normalize() RetrievalConfig {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	return c
}
