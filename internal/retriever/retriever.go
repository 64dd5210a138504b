// Package retriever ranks the corpus against a free-text query.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"legalbot/internal/domain"
	"legalbot/internal/metrics"
	"legalbot/internal/vectorstore"
)

// Retriever embeds queries and searches the embedding matrix.
type Retriever struct {
	embedder domain.Embedder
	store    vectorstore.Storage
	logger   *zap.Logger
}

// New returns a Retriever over an already populated store.
func New(embedder domain.Embedder, store vectorstore.Storage, l *zap.Logger) *Retriever {
	if l == nil {
		l = zap.NewNop()
	}
	return &Retriever{embedder: embedder, store: store, logger: l}
}

// Retrieve lowercases the query, embeds it and returns the matches scoring at
// least cfg.Threshold, best first, at most cfg.TopK of them. An empty result
// is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, cfg domain.RetrievalConfig) ([]domain.MatchResult, error) {
	cfg = cfg.Normalize()
	vec, err := r.embedder.Embed(ctx, strings.ToLower(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := r.store.Search(ctx, vec, cfg)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	metrics.QueryMatches.Observe(float64(len(matches)))
	r.logger.Debug("retrieved",
		zap.Int("matches", len(matches)),
		zap.Float64("threshold", cfg.Threshold),
		zap.Int("top_k", cfg.TopK),
	)
	return matches, nil
}

// EmbedderName names the embedder backing the query vectors.
func (r *Retriever) EmbedderName() string { return r.embedder.Name() }
