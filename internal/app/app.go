// Package app assembles the assistant from configuration: glossary, indexes,
// ranker, cache, run log, and the orchestrating agent. Both the API server
// and the CLI build through here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/supplyhub/scm-assistant/internal/agent"
	"github.com/supplyhub/scm-assistant/internal/cache"
	"github.com/supplyhub/scm-assistant/internal/config"
	"github.com/supplyhub/scm-assistant/internal/embedding"
	"github.com/supplyhub/scm-assistant/internal/glossary"
	"github.com/supplyhub/scm-assistant/internal/indexsync"
	"github.com/supplyhub/scm-assistant/internal/observability"
	"github.com/supplyhub/scm-assistant/internal/retrieval"
	"github.com/supplyhub/scm-assistant/internal/runlog"
	"github.com/supplyhub/scm-assistant/internal/tools/websearch"
)

// App holds the assembled assistant and its closable resources.
type App struct {
	Config   *config.Config
	Logger   *observability.Logger
	Glossary *glossary.Index
	Engine   *retrieval.Engine
	Agent    *agent.Agent

	cacheClient cache.Client
	runLogger   runlog.Logger
}

// New assembles the assistant. Missing glossary data and missing index blobs
// degrade the pipeline instead of failing startup; broken cache or run log
// backends are configuration errors and do fail.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*App, error) {
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	a := &App{Config: cfg, Logger: logger}

	a.Glossary = loadGlossary(logger, cfg.Glossary.Path)

	if cfg.Sync.Bucket != "" {
		syncIndexes(ctx, logger, cfg)
	}

	engine, err := buildEngine(logger, cfg)
	if err != nil {
		return nil, err
	}
	a.Engine = engine

	switch cfg.Cache.Driver {
	case "redis":
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect answer cache: %w", err)
		}
		a.cacheClient = client
	default:
		a.cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	switch cfg.RunLog.Driver {
	case "sqlite":
		rl, err := runlog.NewSQLiteLogger(cfg.RunLog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		a.runLogger = rl
	case "jsonl":
		rl, err := runlog.NewJSONLLogger(cfg.RunLog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		a.runLogger = rl
	default:
		a.runLogger = runlog.NewNopLogger()
	}

	a.Agent = agent.New(logger, agent.Options{
		Glossary:       a.Glossary,
		GlossarySource: cfg.Glossary.Path,
		Engine:         engine,
		Web:            websearch.NewClient(logger, 8*time.Second),
		Cache:          a.cacheClient,
		CacheTTL:       cfg.Cache.TTL,
		RunLog:         a.runLogger,
		Config:         cfg.Agent,
		TopK:           cfg.Retrieval.TopK,
	})
	return a, nil
}

// Close releases the cache and run log backends.
func (a *App) Close() error {
	var firstErr error
	if a.cacheClient != nil {
		if err := a.cacheClient.Close(); err != nil {
			firstErr = err
		}
	}
	if a.runLogger != nil {
		if err := a.runLogger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// loadGlossary reads the glossary feed, degrading to an empty index when the
// file is missing or malformed.
func loadGlossary(logger *observability.Logger, path string) *glossary.Index {
	entries, err := glossary.LoadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).
			Msg("Glossary unavailable, definitions disabled")
		return glossary.NewIndex(nil)
	}
	logger.Info().Int("entries", len(entries)).Msg("Glossary loaded")
	return glossary.NewIndex(entries)
}

// syncIndexes best-effort pulls missing index blobs from S3.
func syncIndexes(ctx context.Context, logger *observability.Logger, cfg *config.Config) {
	downloader, err := indexsync.NewS3Downloader(ctx, cfg.Sync.Region)
	if err != nil {
		logger.Warn().Err(err).Msg("Index sync unavailable")
		return
	}
	result := indexsync.NewSyncer(logger, downloader).EnsureIndexes(ctx, cfg)
	for domain, status := range result.Statuses {
		logger.Info().Str("domain", domain).Str("status", status).Msg("Index sync")
	}
}

// buildEngine loads whichever collection blobs exist on disk and picks the
// configured ranker.
func buildEngine(logger *observability.Logger, cfg *config.Config) (*retrieval.Engine, error) {
	var ranker retrieval.Ranker
	if cfg.Retrieval.Ranker == "embedding" {
		client, err := embedding.NewClient(embedding.Config{
			BaseURL: cfg.Retrieval.EmbedderURL,
			Model:   cfg.Retrieval.EmbedModel,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Embedding ranker unavailable, using lexical")
		} else {
			ranker = retrieval.NewEmbeddingRanker(logger, client)
		}
	}

	engine := retrieval.NewEngine(logger, ranker)
	for _, domain := range []string{"", "supply", "demand"} {
		if !cfg.IndexExists(domain) {
			continue
		}
		path := cfg.IndexPath(domain)
		coll, err := retrieval.LoadCollection(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load index %s: %w", path, err)
		}
		engine.AddCollection(domain, coll)
		logger.Info().
			Str("domain", domain).
			Str("path", path).
			Int("chunks", len(coll.Chunks)).
			Msg("Index loaded")
	}
	return engine, nil
}
