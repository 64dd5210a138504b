package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"legalbot/internal/domain"
)

// Corpus encoding defaults.
const (
	DefaultBatchSize = 32
	DefaultWorkers   = 4
)

// EncodeCorpus embeds texts in batches on a bounded worker pool. Row i of the
// result is the vector of texts[i]. The first failing batch cancels the rest.
func EncodeCorpus(ctx context.Context, emb Embedder, texts []string, batchSize, workers int) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([][]float64, len(texts))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for off := 0; off < len(texts); off += batchSize {
		end := min(off+batchSize, len(texts))
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			vecs, err := emb.EmbedBatch(ctx, texts[off:end])
			if err != nil {
				fail(fmt.Errorf("embed rows %d-%d: %w", off, end-1, err))
				return
			}
			if len(vecs) != end-off {
				fail(fmt.Errorf("embed rows %d-%d: got %d vectors: %w",
					off, end-1, len(vecs), domain.ErrEmbeddingProvider))
				return
			}
			copy(out[off:end], vecs)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submit embedding batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
