package embedding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"legalbot/internal/logger"
	"legalbot/internal/metrics"
)

// Instrumented wraps an Embedder with Prometheus metrics and debug logging.
type Instrumented struct {
	Embedder
	logger *zap.Logger
}

// NewInstrumented decorates inner.
func NewInstrumented(inner Embedder, l *zap.Logger) *Instrumented {
	return &Instrumented{Embedder: inner, logger: logger.OrNop(l)}
}

// Embed delegates to the inner embedder and records the outcome.
func (e *Instrumented) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	v, err := e.Embedder.Embed(ctx, text)
	e.observe("single", 1, start, err)
	return v, err
}

// EmbedBatch delegates to the inner embedder and records the outcome.
func (e *Instrumented) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	start := time.Now()
	v, err := e.Embedder.EmbedBatch(ctx, texts)
	e.observe("batch", len(texts), start, err)
	return v, err
}

func (e *Instrumented) observe(op string, n int, start time.Time, err error) {
	name := e.Name()
	d := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(name, op, status).Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(name, op).Observe(d.Seconds())

	if err != nil {
		e.logger.Error("Embedding request failed",
			zap.String("embedder", name),
			zap.String("op", op),
			zap.Int("texts", n),
			zap.Duration("duration", d),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("Embedding request completed",
		zap.String("embedder", name),
		zap.String("op", op),
		zap.Int("texts", n),
		zap.Duration("duration", d),
	)
}
