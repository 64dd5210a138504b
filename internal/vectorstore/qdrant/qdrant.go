package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"legalbot/internal/domain"
)

const (
	upsertBatch     = 256
	searchOverfetch = 8
)

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and recreates the collection on Init.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	logger     *zap.Logger

	mu        sync.RWMutex
	dimension int
	count     int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config, l *zap.Logger) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Storage{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		logger:     l,
	}
}

// Init drops any previous collection and creates an empty one of the given dimension.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil, http.StatusNotFound); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	index := map[string]any{"field_name": "index", "field_schema": "integer"}
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/index?wait=true"), index, nil); err != nil {
		return fmt.Errorf("create payload index: %w", err)
	}

	s.mu.Lock()
	s.dimension = dimension
	s.count = 0
	s.mu.Unlock()
	s.logger.Info("qdrant collection ready",
		zap.String("collection", s.collection), zap.Int("dimension", dimension))
	return nil
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert writes the rows after the ones already stored; the corpus position
// travels in the "index" payload field.
func (s *Storage) Upsert(ctx context.Context, records []domain.LegalRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("%d records but %d vectors", len(records), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	points := make([]point, len(records))
	for i, rec := range records {
		if len(vectors[i]) != s.dimension {
			return fmt.Errorf("row %d has %d dimensions, want %d: %w",
				i, len(vectors[i]), s.dimension, domain.ErrDimensionMismatch)
		}
		pos := s.count + i
		points[i] = point{
			ID:     pointID(rec.ID, pos),
			Vector: vectors[i],
			Payload: map[string]any{
				"index":       pos,
				"short_title": rec.ShortTitle.String(),
			},
		}
	}
	for start := 0; start < len(points); start += upsertBatch {
		end := min(start+upsertBatch, len(points))
		body := map[string]any{"points": points[start:end]}
		if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
			return fmt.Errorf("upsert points %d..%d: %w", start, end, err)
		}
	}
	s.count += len(points)
	return nil
}

// Search asks Qdrant for the TopK rows scoring at least Threshold.
func (s *Storage) Search(ctx context.Context, vector []float64, cfg domain.RetrievalConfig) ([]domain.MatchResult, error) {
	cfg = cfg.Normalize()
	s.mu.RLock()
	dim := s.dimension
	s.mu.RUnlock()
	if len(vector) != dim {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w",
			len(vector), dim, domain.ErrDimensionMismatch)
	}

	hits, err := s.searchTies(ctx, vector, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MatchResult, 0, len(hits))
	for _, r := range hits {
		if r.Payload.Index == nil || r.Score < cfg.Threshold {
			continue
		}
		results = append(results, domain.MatchResult{Index: *r.Payload.Index, Score: r.Score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
	if len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}
	return results, nil
}

type hit struct {
	Score   float64 `json:"score"`
	Payload struct {
		Index *int `json:"index"`
	} `json:"payload"`
}

// searchTies fetches past TopK until the response is shorter than the limit
// or its last score drops below the TopK-th score, so that every row tied at
// the cutoff is present for the corpus-order tie-break.
func (s *Storage) searchTies(ctx context.Context, vector []float64, cfg domain.RetrievalConfig) ([]hit, error) {
	limit := cfg.TopK + searchOverfetch
	for {
		req := map[string]any{
			"vector":          vector,
			"limit":           limit,
			"score_threshold": cfg.Threshold,
			"with_payload":    []string{"index"},
		}
		var resp struct {
			Result []hit `json:"result"`
		}
		if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		hits := resp.Result
		if len(hits) < limit || len(hits) <= cfg.TopK ||
			hits[len(hits)-1].Score < hits[cfg.TopK-1].Score {
			return hits, nil
		}
		if n := s.Len(); n > 0 && limit >= n {
			return hits, nil
		}
		limit *= 2
	}
}

// Len returns the number of rows written since the last Init.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// do sends body as JSON and decodes the response into out when non-nil.
// Statuses listed in tolerate are treated as success with nothing to decode.
func (s *Storage) do(ctx context.Context, method, url string, body, out any, tolerate ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, code := range tolerate {
		if resp.StatusCode == code {
			return nil
		}
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var pointNamespace = uuid.MustParse("8f2c1a4e-5b7d-4e0a-9c3f-1d2e3f4a5b6c")

// pointID uses the record id when it is a UUID, otherwise derives one from the position.
func pointID(id string, pos int) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(pointNamespace, []byte(strconv.Itoa(pos))).String()
}
