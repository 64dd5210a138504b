package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalbot/internal/embedding/mock"
	"legalbot/internal/metrics"
)

func TestEncodeCorpus_PreservesOrder(t *testing.T) {
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}
	emb := mock.NewEmbedder(nil)

	vecs, err := EncodeCorpus(context.Background(), emb, texts, 7, 3)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for i, v := range vecs {
		assert.Equal(t, mock.HashVector(texts[i], emb.Dim), v, "row %d", i)
	}
	assert.Equal(t, len(texts), emb.Calls())
}

func TestEncodeCorpus_Empty(t *testing.T) {
	vecs, err := EncodeCorpus(context.Background(), mock.NewEmbedder(nil), nil, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEncodeCorpus_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	emb := mock.NewEmbedder(nil)
	emb.EmbedFunc = func(_ context.Context, text string) ([]float64, error) {
		calls.Add(1)
		if strings.HasSuffix(text, "3") {
			return nil, boom
		}
		return []float64{1}, nil
	}
	texts := []string{"t0", "t1", "t2", "t3", "t4", "t5"}

	_, err := EncodeCorpus(context.Background(), emb, texts, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestEncodeCorpus_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EncodeCorpus(ctx, mock.NewEmbedder(nil), []string{"a", "b"}, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstrumented_RecordsMetrics(t *testing.T) {
	inner := mock.NewEmbedder(nil)
	emb := NewInstrumented(inner, nil)
	assert.Equal(t, "mock", emb.Name())

	okBefore := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("mock", "single", "success"))
	_, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("mock", "single", "success")))

	inner.EmbedFunc = func(context.Context, string) ([]float64, error) { return nil, errors.New("down") }
	errBefore := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("mock", "batch", "error"))
	_, err = emb.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("mock", "batch", "error")))
}
