package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"legalbot/internal/domain"
)

// Storage is an in-memory embedding matrix searched by brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	norms     []float64
}

// NewStorage creates an empty store; call Init before Upsert.
func NewStorage() *Storage { return &Storage{} }

// Init resets the store for vectors of the given dimension.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.norms = nil
	return nil
}

// Upsert appends rows to the matrix in record order.
func (s *Storage) Upsert(_ context.Context, records []domain.LegalRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("%d records but %d vectors", len(records), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("row %d has %d dimensions, want %d: %w",
				i, len(v), s.dimension, domain.ErrDimensionMismatch)
		}
		norms[i] = norm(v)
	}
	s.vectors = append(s.vectors, vectors...)
	s.norms = append(s.norms, norms...)
	return nil
}

// Search scores every row, keeps scores >= cfg.Threshold and returns at most
// cfg.TopK of them by descending score. Equal scores keep corpus order.
func (s *Storage) Search(_ context.Context, vector []float64, cfg domain.RetrievalConfig) ([]domain.MatchResult, error) {
	cfg = cfg.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w",
			len(vector), s.dimension, domain.ErrDimensionMismatch)
	}
	qn := norm(vector)

	matches := make([]domain.MatchResult, 0, len(s.vectors))
	for i, row := range s.vectors {
		score := cosine(row, s.norms[i], vector, qn)
		if score >= cfg.Threshold {
			matches = append(matches, domain.MatchResult{Index: i, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > cfg.TopK {
		matches = matches[:cfg.TopK]
	}
	return matches, nil
}

// Len returns the number of rows.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a []float64, an float64, b []float64, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum / (an * bn)
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
