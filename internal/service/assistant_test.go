package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"legalbot/internal/domain"
	"legalbot/internal/embedding/mock"
	"legalbot/internal/embedding/tfidf"
	"legalbot/internal/indexer"
	"legalbot/internal/metrics"
	"legalbot/internal/retriever"
	"legalbot/internal/synthesis"
	"legalbot/internal/table"
	"legalbot/internal/vectorstore/memory"
)

const companiesText = "companies act financial laws fraud deceptive financial reporting"

func companiesCorpus() domain.Corpus {
	t := table.New(
		[]string{"short_title", "subject_matter_name", "offence_title", "offence_description", "fo_max_years", "fo_max_fine"},
		[][]string{{"Companies Act", "Financial Laws", "Fraud", "Deceptive financial reporting", "5", "1000000"}},
	)
	return indexer.Build(t)
}

func newAssistant(t *testing.T, corpus domain.Corpus, emb domain.Embedder, opts ...Option) *Assistant {
	t.Helper()
	store := memory.NewStorage()
	require.NoError(t, Bootstrap(context.Background(), corpus, emb, store, 8, 2, nil))
	return NewAssistant(corpus, retriever.New(emb, store, nil), opts...)
}

// fixedRand always picks the first variant.
type fixedRand struct{}

func (fixedRand) IntN(int) int { return 0 }

func TestAnswer_EndToEnd(t *testing.T) {
	emb := mock.NewEmbedder(map[string][]float64{
		companiesText:     {1, 0},
		"financial fraud": {0.75, math.Sqrt(1 - 0.75*0.75)},
	})
	corpus := companiesCorpus()
	require.Equal(t, companiesText, corpus.Records[0].SearchText)
	a := newAssistant(t, corpus, emb)

	got, err := a.Answer(context.Background(), "financial fraud")
	require.NoError(t, err)

	leadIn := false
	for _, l := range synthesis.DefaultPhrasebook().LeadIns["Financial Laws"] {
		leadIn = leadIn || strings.Contains(got, l)
	}
	assert.True(t, leadIn)
	assert.Contains(t, strings.ToLower(got), "companies act")
	assert.Contains(t, got, "serious offense")
	assert.Contains(t, got, "imprisonment for up to 5 years and monetary penalties reaching ₹1000000")
	assert.True(t, strings.HasSuffix(got, synthesis.DefaultPhrasebook().General))
	assert.NotContains(t, got, Separator, "single match has no separator")
}

func TestAnswer_SeparatesMatchesBestFirst(t *testing.T) {
	tbl := table.New(
		[]string{"short_title", "offence_title"},
		[][]string{{"Weak Act", "a"}, {"Strong Act", "b"}},
	)
	corpus := indexer.Build(tbl)
	emb := mock.NewEmbedder(map[string][]float64{
		"weak act a":   {0.6, 0.8},
		"strong act b": {1, 0},
		"query":        {1, 0},
	})
	a := newAssistant(t, corpus, emb, WithRand(func() synthesis.Rand { return fixedRand{} }))

	got, err := a.Answer(context.Background(), "query")
	require.NoError(t, err)
	parts := strings.Split(got, Separator)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "Strong Act")
	assert.Contains(t, parts[1], "Weak Act")
	assert.False(t, strings.HasSuffix(got, Separator))
}

func TestAnswer_NoMatchReturnsFallback(t *testing.T) {
	var rands atomic.Int32
	a := newAssistant(t, companiesCorpus(), tfidf.NewEmbedder(), WithRand(func() synthesis.Rand {
		rands.Add(1)
		return fixedRand{}
	}))

	matches, err := a.Matches(context.Background(), "weather forecast")
	require.NoError(t, err)
	assert.Empty(t, matches)

	got, err := a.Answer(context.Background(), "weather forecast")
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, got)
	assert.Zero(t, rands.Load(), "nothing is synthesized without a match")
}

func TestAnswer_LogsMatchTier(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	emb := mock.NewEmbedder(map[string][]float64{
		companiesText:     {1, 0},
		"financial fraud": {0.75, math.Sqrt(1 - 0.75*0.75)},
	})
	a := newAssistant(t, companiesCorpus(), emb, WithLogger(zap.New(core)))

	_, err := a.Answer(context.Background(), "financial fraud")
	require.NoError(t, err)

	entries := logs.FilterMessage("match").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "high", fields["tier"])
	assert.EqualValues(t, 0, fields["index"])
}

func TestReply(t *testing.T) {
	a := newAssistant(t, companiesCorpus(), tfidf.NewEmbedder())
	ctx := context.Background()

	for _, in := range []string{"hello", "  HI ", "Howdy"} {
		got, err := a.Reply(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, GreetingReply, got, in)
	}

	_, err := a.Reply(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	got, err := a.Reply(ctx, "Companies Act financial fraud")
	require.NoError(t, err)
	assert.Contains(t, got, "Companies Act")
}

func TestReply_GreetingSkipsRetrieval(t *testing.T) {
	emb := mock.NewEmbedder(map[string][]float64{companiesText: {1, 0}})
	a := newAssistant(t, companiesCorpus(), emb)
	before := emb.Calls()

	_, err := a.Reply(context.Background(), "hey")
	require.NoError(t, err)
	assert.Equal(t, before, emb.Calls())
}

func TestReply_ProviderFailure(t *testing.T) {
	metrics.QueriesTotal.Reset()
	boom := errors.New("provider down")
	emb := mock.NewEmbedder(map[string][]float64{companiesText: {1, 0}})
	a := newAssistant(t, companiesCorpus(), emb)
	emb.EmbedFunc = func(context.Context, string) ([]float64, error) { return nil, boom }

	_, err := a.Reply(context.Background(), "fraud")
	assert.ErrorIs(t, err, domain.ErrQueryFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QueriesTotal.WithLabelValues(metrics.OutcomeError)))
}

type panicRand struct{}

func (panicRand) IntN(int) int { panic("bad source") }

func TestReply_RecoversPanic(t *testing.T) {
	emb := mock.NewEmbedder(map[string][]float64{companiesText: {1, 0}, "fraud": {1, 0}})
	a := newAssistant(t, companiesCorpus(), emb, WithRand(func() synthesis.Rand { return panicRand{} }))

	got, err := a.Reply(context.Background(), "fraud")
	assert.ErrorIs(t, err, domain.ErrQueryFailed)
	assert.Empty(t, got)
}

func TestWithSeed_Reproducible(t *testing.T) {
	emb := mock.NewEmbedder(map[string][]float64{companiesText: {1, 0}, "fraud": {1, 0}})
	corpus := companiesCorpus()
	a := newAssistant(t, corpus, emb, WithSeed(99))
	b := newAssistant(t, corpus, emb, WithSeed(99))

	for range 5 {
		x, err := a.Answer(context.Background(), "fraud")
		require.NoError(t, err)
		y, err := b.Answer(context.Background(), "fraud")
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestAnswer_Concurrent(t *testing.T) {
	a := newAssistant(t, companiesCorpus(), tfidf.NewEmbedder())
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := a.Answer(context.Background(), "companies act financial fraud")
			assert.NoError(t, err)
			assert.Contains(t, got, "Companies Act")
		}()
	}
	wg.Wait()
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	err := Bootstrap(ctx, domain.Corpus{}, tfidf.NewEmbedder(), memory.NewStorage(), 0, 0, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)

	emb := mock.NewEmbedder(nil)
	store := memory.NewStorage()
	corpus := companiesCorpus()
	require.NoError(t, Bootstrap(ctx, corpus, emb, store, 0, 0, nil))
	assert.Equal(t, []string{companiesText}, emb.Prepared())
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CorpusRecords))

	a := NewAssistant(corpus, retriever.New(emb, store, nil))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, "mock", a.EmbedderName())
}
