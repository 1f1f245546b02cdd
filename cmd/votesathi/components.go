package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/assistant"
	"github.com/hyperjump/votesathi/internal/booths"
	"github.com/hyperjump/votesathi/internal/cache"
	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/extract"
	"github.com/hyperjump/votesathi/internal/generation"
	"github.com/hyperjump/votesathi/internal/indexer"
	"github.com/hyperjump/votesathi/internal/keyword"
	"github.com/hyperjump/votesathi/internal/metrics"
	"github.com/hyperjump/votesathi/internal/rag"
	"github.com/hyperjump/votesathi/internal/ranking"
	"github.com/hyperjump/votesathi/internal/safety"
	"github.com/hyperjump/votesathi/internal/search"
	"github.com/hyperjump/votesathi/internal/speech"
	"github.com/hyperjump/votesathi/internal/storage"
	"github.com/hyperjump/votesathi/internal/synthesis"
	"github.com/hyperjump/votesathi/internal/vision"
	"github.com/hyperjump/votesathi/internal/watcher"
)

// maxKnowledgeFileBytes bounds a single knowledge base file.
const maxKnowledgeFileBytes = 50 << 20

// Components holds the initialized application components.
type Components struct {
	Storage      storage.Storage
	Redis        *redis.Client
	KeywordIndex *keyword.BleveIndex
	Indexer      *indexer.Indexer
	Booths       *search.Engine
	Service      *assistant.Service
	Registry     *prometheus.Registry
}

// Close releases storage, the knowledge index, and the Redis connection.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Storage.Backend == storage.BackendRedis || cfg.Cache.Backend == "redis"
}

func newBoothEngine(cfg *config.Config, logger *zap.Logger) *search.Engine {
	rankCfg := cfg.Booths.Ranking
	return search.NewEngine(
		booths.NewDataset(cfg.Booths.DatasetPath, logger),
		ranking.NewRanker(&rankCfg),
		search.WithLogger(logger),
		search.WithDefaultLimit(cfg.Booths.DefaultLimit),
	)
}

func newGenerator(cfg *config.Config, logger *zap.Logger) generation.Generator {
	if cfg.Generation.APIKey == "" {
		logger.Warn("no generation API key configured; model calls will fail")
	}
	return generation.NewAnthropicGenerator(cfg.Generation, logger)
}

func newVisionPipeline(cfg *config.Config, logger *zap.Logger) *vision.Pipeline {
	return vision.NewPipeline(newGenerator(cfg, logger), cfg.Vision, logger)
}

func newResponseCache(cfg *config.Config, client *redis.Client, logger *zap.Logger) (cache.ResponseCache, error) {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryCache(cfg.Cache.MaxEntries, ttl), nil
	case "redis":
		return cache.NewRedisCache(client, cfg.Redis.KeyPrefix+"cache:", ttl, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newKnowledgeWatcher(cfg *config.Config, c *Components, logger *zap.Logger) *watcher.Watcher {
	return watcher.NewWatcher(cfg.Knowledge.Directories, c.Indexer, watcher.WithLogger(logger))
}

// initializeComponents wires storage, the knowledge base, the booth engine,
// and the model-backed pipelines into an assistant service.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if needsRedis(cfg) {
		c.Redis, err = storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}
	store, err := storage.New(cfg.Storage, c.Redis, cfg.Redis.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store
	respCache, err := newResponseCache(cfg, c.Redis, logger)
	if err != nil {
		return nil, err
	}

	kwIndex, err := keyword.NewBleveIndex(cfg.Knowledge.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize knowledge index: %w", err)
	}
	c.KeywordIndex = kwIndex
	idxOpts := []indexer.IndexerOption{indexer.WithLogger(logger)}
	if cfg.Knowledge.IndexPath != "" {
		idxOpts = append(idxOpts, indexer.WithManifest(c.Storage))
	}
	c.Indexer = indexer.NewIndexer(c.KeywordIndex, extract.NewExtractor(maxKnowledgeFileBytes), cfg.Knowledge, idxOpts...)

	c.Booths = newBoothEngine(cfg, logger)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gen := newGenerator(cfg, logger)
	deps := assistant.Deps{
		Answerer:    rag.NewAnswerer(c.KeywordIndex, gen, cfg.Generation, cfg.Knowledge.TopK, logger),
		Booths:      c.Booths,
		Vision:      vision.NewPipeline(gen, cfg.Vision, logger),
		Synthesizer: synthesis.NewSynthesizer(safety.NewRuleChecker(), cfg.Synthesis, logger),
		Cache:       respCache,
		Store:       c.Storage,
		Metrics:     metrics.New(c.Registry),
		Logger:      logger,
	}
	if cfg.Speech.APIKey != "" {
		deps.Transcriber = speech.NewWhisperTranscriber(cfg.Speech, nil, logger)
	} else {
		logger.Info("speech API key not set; audio requests are disabled")
	}
	c.Service = assistant.New(deps, cfg.Assistant, cfg.Booths.DefaultLimit)
	return c, nil
}
