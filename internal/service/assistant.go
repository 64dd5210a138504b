// Package service answers legal questions over an indexed corpus.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"legalbot/internal/domain"
	"legalbot/internal/logger"
	"legalbot/internal/metrics"
	"legalbot/internal/retriever"
	"legalbot/internal/synthesis"
)

// Fixed replies.
const (
	FallbackMessage = "I apologize, but I couldn't find specific legal information " +
		"matching your query. Could you rephrase or provide more details? 🤔"
	GreetingReply = "🤖 Hello! How can I assist you with legal matters today?"
)

// Separator goes between consecutive match narratives.
var Separator = "\n\n" + strings.Repeat("-", 50) + "\n\n"

// Greetings are answered without retrieval.
var Greetings = []string{"hi", "hello", "hey", "greetings", "howdy"}

// Match is a retrieval hit resolved to its record.
type Match struct {
	Index  int
	Score  float64
	Record domain.LegalRecord
}

// Assistant is the query entry point. It is read-only after construction and
// safe for concurrent use.
type Assistant struct {
	corpus    domain.Corpus
	retriever *retriever.Retriever
	synth     *synthesis.Synthesizer
	cfg       domain.RetrievalConfig
	newRand   func() synthesis.Rand
	logger    *zap.Logger
}

type Option func(*Assistant)

func WithRetrievalConfig(cfg domain.RetrievalConfig) Option {
	return func(a *Assistant) { a.cfg = cfg.Normalize() }
}

func WithSynthesizer(s *synthesis.Synthesizer) Option {
	return func(a *Assistant) { a.synth = s }
}

// WithRand sets the factory called once per answer for phrase selection.
func WithRand(newRand func() synthesis.Rand) Option {
	return func(a *Assistant) { a.newRand = newRand }
}

// WithSeed makes phrase selection reproducible: every answer draws from one
// shared generator seeded with seed. Zero keeps the per-answer random default.
func WithSeed(seed uint64) Option {
	return func(a *Assistant) {
		if seed == 0 {
			return
		}
		shared := synthesis.NewLockedRand(synthesis.NewRand(seed))
		a.newRand = func() synthesis.Rand { return shared }
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) { a.logger = logger.OrNop(l) }
}

// NewAssistant wires an assistant over a bootstrapped corpus.
func NewAssistant(corpus domain.Corpus, r *retriever.Retriever, opts ...Option) *Assistant {
	a := &Assistant{
		corpus:    corpus,
		retriever: r,
		synth:     synthesis.New(),
		cfg:       domain.DefaultRetrievalConfig(),
		newRand:   func() synthesis.Rand { return synthesis.NewRand(0) },
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Len returns the number of indexed records.
func (a *Assistant) Len() int { return a.corpus.Len() }

// EmbedderName names the embedder in use.
func (a *Assistant) EmbedderName() string { return a.retriever.EmbedderName() }

// Matches returns the ranked hits for query.
func (a *Assistant) Matches(ctx context.Context, query string) ([]Match, error) {
	results, err := a.retriever.Retrieve(ctx, query, a.cfg)
	if err != nil {
		return nil, err
	}
	out := make([]Match, len(results))
	for i, r := range results {
		rec, ok := a.corpus.Record(r.Index)
		if !ok {
			return nil, fmt.Errorf("match index %d outside corpus of %d", r.Index, a.corpus.Len())
		}
		out[i] = Match{Index: r.Index, Score: r.Score, Record: rec}
	}
	return out, nil
}

// Answer composes the narrative for every match of query, best first, or
// returns FallbackMessage when nothing clears the threshold.
func (a *Assistant) Answer(ctx context.Context, query string) (string, error) {
	text, _, err := a.answer(ctx, query)
	return text, err
}

func (a *Assistant) answer(ctx context.Context, query string) (string, int, error) {
	matches, err := a.Matches(ctx, query)
	if err != nil {
		return "", 0, err
	}
	if len(matches) == 0 {
		return FallbackMessage, 0, nil
	}
	log := logger.FromContext(ctx, a.logger)
	rng := a.newRand()
	parts := make([]string, len(matches))
	for i, m := range matches {
		log.Debug("match",
			zap.Int("index", m.Index),
			zap.Float64("score", m.Score),
			zap.Stringer("tier", synthesis.ConfidenceTier(m.Score)))
		parts[i] = a.synth.Synthesize(m.Record, m.Score, rng)
	}
	return strings.Join(parts, Separator), len(matches), nil
}

// Reply handles one user message: greetings get GreetingReply, blank input
// fails with ErrEmptyQuery, everything else is answered. Failures, panics
// included, come back wrapped in ErrQueryFailed.
func (a *Assistant) Reply(ctx context.Context, input string) (reply string, err error) {
	log := logger.FromContext(ctx, a.logger)
	query := strings.ToLower(strings.TrimSpace(input))

	defer func() {
		if r := recover(); r != nil {
			reply, err = "", fmt.Errorf("%w: panic: %v", domain.ErrQueryFailed, r)
		}
		if err != nil && !errors.Is(err, domain.ErrEmptyQuery) {
			metrics.QueriesTotal.WithLabelValues(metrics.OutcomeError).Inc()
			log.Error("query failed", zap.Int("query_len", len(query)), zap.Error(err))
		}
	}()

	if slices.Contains(Greetings, query) {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeGreeting).Inc()
		return GreetingReply, nil
	}
	if query == "" {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", domain.ErrEmptyQuery
	}

	text, n, err := a.answer(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}
	if n == 0 {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeNoMatch).Inc()
	} else {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeAnswered).Inc()
	}
	log.Debug("answered", zap.Int("query_len", len(query)), zap.Int("matches", n))
	return text, nil
}
