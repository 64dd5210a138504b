// Package mock provides a test double for domain.Embedder.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// Embedder is a test double for domain.Embedder.
// Texts found in Vectors get that vector; anything else gets a
// deterministic pseudo-random unit vector derived from the text hash.
// EmbedFunc, when set, overrides both.
type Embedder struct {
	Dim       int
	Vectors   map[string][]float64
	EmbedFunc func(ctx context.Context, text string) ([]float64, error)

	mu        sync.Mutex
	calls     int
	prepared  []string
	lastInput string
}

// NewEmbedder creates a mock with the given vectors. The dimension is taken
// from the first vector, or 8 when none are given.
func NewEmbedder(vectors map[string][]float64) *Embedder {
	dim := 8
	for _, v := range vectors {
		dim = len(v)
		break
	}
	return &Embedder{Dim: dim, Vectors: vectors}
}

// Name returns "mock".
func (m *Embedder) Name() string { return "mock" }

// Prepare records the corpus it was given.
func (m *Embedder) Prepare(corpus []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepared = append([]string(nil), corpus...)
	return nil
}

// Dimension returns Dim.
func (m *Embedder) Dimension() int { return m.Dim }

// Embed returns the configured or hashed vector for text.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.lastInput = text
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	if v, ok := m.Vectors[text]; ok {
		return append([]float64(nil), v...), nil
	}
	return HashVector(text, m.Dim), nil
}

// EmbedBatch embeds texts one by one.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Calls returns the number of texts embedded so far.
func (m *Embedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastInput returns the most recently embedded text.
func (m *Embedder) LastInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInput
}

// Prepared returns the corpus passed to Prepare.
func (m *Embedder) Prepared() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prepared
}

// HashVector creates a deterministic unit vector from text using an FNV seed.
func HashVector(text string, dim int) []float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float64, dim)
	norm := 0.0
	for i := range v {
		seed = seed*1664525 + 1013904223 // LCG constants
		v[i] = float64(seed%1000)/1000.0 - 0.5
		norm += v[i] * v[i]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
