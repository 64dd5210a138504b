package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync/atomic"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"legalbot/internal/domain"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
// Calls are not retried; failures propagate to the caller.
type Client struct {
	client     *goopenai.Client
	model      goopenai.EmbeddingModel
	dimensions int
	dimension  atomic.Int64
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      goopenai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Model returns the configured embedding model.
func (c *Client) Model() string { return string(c.model) }

// Prepare is not required for remote embedding. Dimension is learned from the first response.
func (c *Client) Prepare([]string) error { return nil }

// Dimension returns the dimensionality observed so far, or the configured one.
func (c *Client) Dimension() int {
	if d := c.dimension.Load(); d > 0 {
		return int(d)
	}
	return c.dimensions
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in a single request; output order matches input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := goopenai.EmbeddingRequest{
		Input:          texts,
		Model:          c.model,
		EncodingFormat: goopenai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(resp.Data), domain.ErrEmbeddingProvider)
	}
	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float64, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at %d: %w", i, domain.ErrEmbeddingProvider)
		}
		out[i] = toFloat64(d.Embedding)
	}
	c.dimension.CompareAndSwap(0, int64(len(out[0])))
	for i, v := range out {
		if len(v) != c.Dimension() {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d: %w",
				i, len(v), c.Dimension(), domain.ErrDimensionMismatch)
		}
	}
	return out, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// wrapAPIError keeps the provider status in the message and tags the error
// with domain.ErrEmbeddingProvider.
func wrapAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProvider)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %w",
			reqErr.HTTPStatusCode, domain.ErrEmbeddingProvider)
	}
	return fmt.Errorf("embedding request failed: %v: %w", err, domain.ErrEmbeddingProvider)
}
