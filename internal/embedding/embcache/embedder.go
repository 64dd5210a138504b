// Package embcache persists embeddings of a remote provider so that restarts
// do not re-encode an unchanged corpus.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"legalbot/internal/domain"
	"legalbot/internal/logger"
	"legalbot/internal/metrics"
)

// ErrKeyNotFound is returned by a Store for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is the key-value backend of the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder serves embeddings from a Store and falls through to inner on a miss.
// Cache errors are logged and never fail a call.
type CachedEmbedder struct {
	domain.Embedder
	store     Store
	keyPrefix string
	logger    *zap.Logger
}

// New creates a caching decorator. scope separates vector spaces sharing one
// store; it should name everything that changes the vectors, such as the
// model, the requested dimensions and the endpoint.
func New(inner domain.Embedder, store Store, scope string, l *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		Embedder:  inner,
		store:     store,
		keyPrefix: "emb:" + inner.Name() + ":" + scope + ":",
		logger:    logger.OrNop(l),
	}
}

// Scope builds the cache scope of a remote model.
func Scope(model string, dimensions int, baseURL string) string {
	return fmt.Sprintf("%s:%d:%s", model, dimensions, baseURL)
}

// Embed returns a cached embedding or calls the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := c.cacheKey(text)
	if vec, ok := c.get(ctx, key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return vec, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, vec)
	return vec, nil
}

// EmbedBatch serves hits from the store and sends only the misses to inner,
// in one batch, preserving input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		if vec, ok := c.get(ctx, c.cacheKey(t)); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("hit").Add(float64(len(texts) - len(missIdx)))
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Add(float64(len(missIdx)))
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.Embedder.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(missTexts), len(vecs), domain.ErrEmbeddingProvider)
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.put(ctx, c.cacheKey(missTexts[j]), vecs[j])
	}
	return out, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float64, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if dim := c.Embedder.Dimension(); dim > 0 && len(vec) != dim {
		c.logger.Warn("Ignoring cached embedding of another dimension",
			zap.String("key", key), zap.Int("cached", len(vec)), zap.Int("want", dim))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float64) {
	if err := c.store.Set(ctx, key, encodeVector(vec)); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float64, error) {
	if len(data) == 0 || len(data)%8 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d", len(data))
	}
	vec := make([]float64, len(data)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return vec, nil
}
