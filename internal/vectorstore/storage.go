// Package vectorstore holds the embedding matrix of the corpus and ranks it
// against query vectors.
package vectorstore

import (
	"context"

	"legalbot/internal/domain"
)

// Storage persists the embedding matrix and supports thresholded top-k
// cosine search. Row i belongs to the i-th record passed to Upsert.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []domain.LegalRecord, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, cfg domain.RetrievalConfig) ([]domain.MatchResult, error)
	Len() int
}

