// Command apiserver exposes the case archive over HTTP: case lookup,
// filtered listing, full-text search, statute co-citation, health probes and
// Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/CaseLaw-Intelligence/internal/application/archive"
	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	httpapi "github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/http"
	"github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: environment variables)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      []string{cfg.Log.Output},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	defer logging.SyncLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return err
	}
	metrics := prometheus.NewMetrics(collector)

	svc, checks, closeSinks, err := buildArchive(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	router := httpapi.NewRouter(httpapi.RouterConfig{
		CaseHandler:    handlers.NewCaseHandler(svc, log),
		StatuteHandler: handlers.NewStatuteHandler(svc, log),
		HealthHandler:  handlers.NewHealthHandler(checks, log),
		MetricsHandler: collector.Handler(),
		Metrics:        metrics,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Logger:         log,
		Mode:           cfg.Server.Mode,
	})
	server := httpapi.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return server.Shutdown(context.Background())
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// buildArchive connects the configured sinks.  Unreachable sinks are logged
// and skipped so the API still serves whatever is available; their readiness
// checks are only registered for connected sinks.
func buildArchive(ctx context.Context, cfg *config.Config, metrics *prometheus.Metrics, log logging.Logger) (*archive.Service, map[string]handlers.Pinger, func(), error) {
	var store archive.CaseStore
	var searcher archive.CaseSearcher
	var graph archive.StatuteGraph
	checks := make(map[string]handlers.Pinger)
	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
	if err != nil {
		log.Warn("postgres unavailable, case store disabled", logging.Err(err))
	} else {
		closers = append(closers, pool.Close)
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(cfg.Postgres.DSN()); err != nil {
				cleanup()
				return nil, nil, nil, err
			}
		}
		store = postgres.NewCaseRepository(pool, log)
		checks["postgres"] = pool.Ping
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable", logging.Err(err))
	} else {
		closers = append(closers, func() { _ = redisClient.Close() })
		checks["redis"] = redisClient.Ping
	}

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, log)
	if err != nil {
		log.Warn("opensearch unavailable, full-text search disabled", logging.Err(err))
	} else {
		searcher = opensearch.NewCaseIndex(osClient, cfg.OpenSearch.Index, log)
	}

	driver, err := neo4j.NewDriver(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Warn("neo4j unavailable, citation graph disabled", logging.Err(err))
	} else {
		closers = append(closers, func() { _ = driver.Close() })
		graph = neo4j.NewCitationGraph(driver, log)
	}

	svc := archive.NewService(store, searcher, graph, log, archive.WithMetrics(metrics))
	return svc, checks, cleanup, nil
}
