package cli

import (
	"context"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/archive"
	appretrieval "github.com/turtacn/CaseLaw-Intelligence/internal/application/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/embedding"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/extractor"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/similarity"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// extractorConfig maps the configuration section onto the extractor's bounds.
func extractorConfig(cfg config.ExtractionConfig) extractor.Config {
	ec := extractor.DefaultConfig()
	if cfg.SummaryMinLength > 0 {
		ec.SummaryMinLength = cfg.SummaryMinLength
	}
	if cfg.SummaryMaxLength > 0 {
		ec.SummaryMaxLength = cfg.SummaryMaxLength
	}
	if cfg.HeaderRegion > 0 {
		ec.HeaderRegion = cfg.HeaderRegion
	}
	if cfg.DateRegion > 0 {
		ec.DateRegion = cfg.DateRegion
	}
	if cfg.PersonalRegion > 0 {
		ec.PersonalRegion = cfg.PersonalRegion
	}
	if cfg.VerdictRegion > 0 {
		ec.VerdictRegion = cfg.VerdictRegion
	}
	return ec
}

// buildEmbedder selects the configured embedding provider, optionally
// decorated with the Redis vector cache.
func buildEmbedder(ctx context.Context, cfg *config.Config, log logging.Logger) (appretrieval.Embedder, error) {
	var inner embedding.Embedder
	switch cfg.Embedding.Provider {
	case "", "deterministic":
		inner = embedding.NewDeterministicEmbedder(cfg.Embedding.Dimensions)
	case "http":
		client, err := embedding.NewHTTPClient(embedding.HTTPClientConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			BatchSize: cfg.Embedding.BatchSize,
			Timeout:   cfg.Embedding.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		inner = client
	default:
		return nil, errors.Newf(errors.ErrCodeBadRequest, "unknown embedding provider %q", cfg.Embedding.Provider)
	}

	if !cfg.Embedding.CacheEnabled {
		return inner, nil
	}
	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, embedding cache disabled", logging.Err(err))
		return inner, nil
	}
	cache := redis.NewCache(redisClient, log)
	return embedding.NewCachedEmbedder(inner, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL, log), nil
}

// buildDenseIndex selects the configured dense backend.
func buildDenseIndex(ctx context.Context, cfg *config.Config, log logging.Logger) (appretrieval.DenseIndex, error) {
	switch cfg.Retrieval.DenseBackend {
	case "", "memory":
		return similarity.NewMemoryDenseIndex(), nil
	case "milvus":
		client, err := milvus.NewClient(ctx, cfg.Milvus, log)
		if err != nil {
			return nil, err
		}
		return milvus.NewDenseIndex(client, cfg.Milvus, log), nil
	}
	return nil, errors.Newf(errors.ErrCodeBadRequest, "unknown dense backend %q", cfg.Retrieval.DenseBackend)
}

// buildArchiveService connects whichever archive sinks are configured.  A
// sink that fails to connect is reported and skipped so a partial archive
// setup still syncs the rest.
func buildArchiveService(ctx context.Context, cfg *config.Config, log logging.Logger) (*archive.Service, func(), error) {
	var store archive.CaseStore
	var searcher archive.CaseSearcher
	var graph archive.StatuteGraph
	var closers []func()

	pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
	if err != nil {
		log.Warn("postgres unavailable, skipping relational sink", logging.Err(err))
	} else {
		closers = append(closers, pool.Close)
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(cfg.Postgres.DSN()); err != nil {
				cleanup(closers)
				return nil, nil, err
			}
		}
		store = postgres.NewCaseRepository(pool, log)
	}

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, log)
	if err != nil {
		log.Warn("opensearch unavailable, skipping full-text sink", logging.Err(err))
	} else {
		searcher = opensearch.NewCaseIndex(osClient, cfg.OpenSearch.Index, log)
	}

	driver, err := neo4j.NewDriver(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Warn("neo4j unavailable, skipping citation graph sink", logging.Err(err))
	} else {
		closers = append(closers, func() { _ = driver.Close() })
		graph = neo4j.NewCitationGraph(driver, log)
	}

	if store == nil && searcher == nil && graph == nil {
		cleanup(closers)
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "no archive sink is reachable")
	}
	return archive.NewService(store, searcher, graph, log), func() { cleanup(closers) }, nil
}

func cleanup(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
