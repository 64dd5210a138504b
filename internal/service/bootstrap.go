package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"legalbot/internal/domain"
	"legalbot/internal/embedding"
	"legalbot/internal/metrics"
	"legalbot/internal/vectorstore"
)

// Bootstrap builds the embedding matrix of corpus into store. It must complete
// before the first query is served.
func Bootstrap(ctx context.Context, corpus domain.Corpus, emb domain.Embedder, store vectorstore.Storage, batchSize, workers int, l *zap.Logger) error {
	if l == nil {
		l = zap.NewNop()
	}
	if corpus.Len() == 0 {
		return domain.ErrEmptyCorpus
	}
	start := time.Now()

	texts := corpus.Texts()
	if err := emb.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := embedding.EncodeCorpus(ctx, emb, texts, batchSize, workers)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	dim := len(vectors[0])
	if err := store.Init(ctx, dim); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	if err := store.Upsert(ctx, corpus.Records, vectors); err != nil {
		return fmt.Errorf("store vectors: %w", err)
	}
	if store.Len() != corpus.Len() {
		return fmt.Errorf("store holds %d rows for %d records", store.Len(), corpus.Len())
	}

	metrics.CorpusRecords.Set(float64(corpus.Len()))
	l.Info("corpus indexed",
		zap.Int("records", corpus.Len()),
		zap.String("embedder", emb.Name()),
		zap.Int("dimension", dim),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
