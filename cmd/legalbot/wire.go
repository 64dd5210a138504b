package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"legalbot/internal/config"
	"legalbot/internal/domain"
	"legalbot/internal/embedding"
	"legalbot/internal/embedding/embcache"
	"legalbot/internal/embedding/openai"
	"legalbot/internal/embedding/tfidf"
	"legalbot/internal/indexer"
	"legalbot/internal/metrics"
	"legalbot/internal/retriever"
	"legalbot/internal/service"
	"legalbot/internal/synthesis"
	"legalbot/internal/table"
	"legalbot/internal/vectorstore"
	"legalbot/internal/vectorstore/memory"
	"legalbot/internal/vectorstore/qdrant"
)

// application is the assembled assistant plus what must be closed on exit.
type application struct {
	Assistant *service.Assistant
	closers   []io.Closer
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// buildAssistant loads the corpus, embeds it once and wires the query path.
func buildAssistant(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*application, error) {
	metrics.Register()
	app := &application{}

	tbl, err := table.LoadFile(cfg.Corpus.Path, cfg.DelimiterRune())
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	corpus := indexer.Build(tbl)

	emb, err := buildEmbedder(cfg, log, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	store, err := buildStore(cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	log.Info("Components assembled",
		zap.String("corpus", cfg.Corpus.Path),
		zap.Strings("columns", tbl.Columns()),
		zap.String("embedder", emb.Name()),
		zap.String("vector_store", cfg.VectorStore.Type),
	)

	if err := service.Bootstrap(ctx, corpus, emb, store, cfg.Embedder.BatchSize, cfg.Embedder.Workers, log); err != nil {
		app.Close()
		return nil, err
	}

	app.Assistant = service.NewAssistant(corpus,
		retriever.New(emb, store, log),
		service.WithRetrievalConfig(cfg.RetrievalParams()),
		service.WithSynthesizer(synthesis.New(synthesis.WithCurrency(cfg.Synthesis.CurrencySymbol))),
		service.WithSeed(cfg.Synthesis.Seed),
		service.WithLogger(log),
	)
	return app, nil
}

func buildEmbedder(cfg *config.AppConfig, log *zap.Logger, app *application) (domain.Embedder, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf":
		emb = tfidf.NewEmbedder()
	case "openai":
		oc := cfg.Embedder.OpenAI
		client, err := openai.NewClient(openai.Config{
			BaseURL:    oc.BaseURL,
			APIKeyEnv:  oc.APIKeyEnv,
			Model:      oc.Model,
			Dimensions: oc.Dimensions,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		emb = client
		// tfidf vectors depend on the corpus vocabulary, so only remote vectors are cached
		if cfg.Embedder.Cache.Enabled {
			cache, err := embcache.OpenBadger(cfg.Embedder.Cache.Path, false, log)
			if err != nil {
				return nil, err
			}
			app.closers = append(app.closers, cache)
			emb = embcache.New(client, cache, embcache.Scope(client.Model(), oc.Dimensions, oc.BaseURL), log)
		}
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
	return embedding.NewInstrumented(emb, log), nil
}

func buildStore(cfg *config.AppConfig, log *zap.Logger) (vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
