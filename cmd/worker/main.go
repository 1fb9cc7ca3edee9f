// Command worker archives ingested cases asynchronously.  It joins the
// caselaw-archiver consumer group, consumes case.ingested events and writes
// each case to the configured archive sinks.  Sync is idempotent, so
// redelivery after a crash only repeats work.
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
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: environment variables)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
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

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{}, log)
	if err != nil {
		return err
	}
	metrics := prometheus.NewMetrics(collector)

	svc, closeSinks, err := buildArchive(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	if err := svc.EnsureSearchIndex(ctx); err != nil {
		return err
	}
	archiver := archive.NewArchiver(svc, cfg.Pipeline.CaseBasePath, log)

	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = kafka.ConsumerGroupArchiver
	}
	consumer, err := kafka.NewConsumer(cfg.Kafka, groupID, []string{kafka.TopicCaseIngested}, log)
	if err != nil {
		return err
	}
	consumer.Handle(kafka.TopicName(cfg.Kafka.TopicPrefix, kafka.TopicCaseIngested), archiver.HandleCaseIngested)

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	log.Info("archiving worker started",
		logging.Strings("brokers", cfg.Kafka.Brokers),
		logging.String("group", groupID))

	<-ctx.Done()
	return consumer.Close()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// buildArchive connects the configured sinks.  The worker requires at least
// one sink; otherwise consuming events would only burn offsets.
func buildArchive(ctx context.Context, cfg *config.Config, metrics *prometheus.Metrics, log logging.Logger) (*archive.Service, func(), error) {
	var store archive.CaseStore
	var searcher archive.CaseSearcher
	var graph archive.StatuteGraph
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
				return nil, nil, err
			}
		}
		store = postgres.NewCaseRepository(pool, log)
	}

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, log)
	if err != nil {
		log.Warn("opensearch unavailable, full-text sink disabled", logging.Err(err))
	} else {
		searcher = opensearch.NewCaseIndex(osClient, cfg.OpenSearch.Index, log)
	}

	driver, err := neo4j.NewDriver(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Warn("neo4j unavailable, citation graph sink disabled", logging.Err(err))
	} else {
		closers = append(closers, func() { _ = driver.Close() })
		graph = neo4j.NewCitationGraph(driver, log)
	}

	if store == nil && searcher == nil && graph == nil {
		cleanup()
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "no archive sink is reachable")
	}
	return archive.NewService(store, searcher, graph, log, archive.WithMetrics(metrics)), cleanup, nil
}
