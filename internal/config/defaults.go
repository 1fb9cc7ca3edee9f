package config

import (
	"path/filepath"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultAppName = "caselaw-intelligence"
	DefaultAppEnv  = "development"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultDataDir = "./data"

	DefaultSummaryMinLength = 200
	DefaultSummaryMaxLength = 1500
	DefaultHeaderRegion     = 5000
	DefaultDateRegion       = 8000
	DefaultPersonalRegion   = 20000
	DefaultVerdictRegion    = 7000

	DefaultTopK                  = 10
	DefaultMaxFeatures           = 5000
	DefaultHybridTFIDFWeight     = 0.5
	DefaultHybridEmbeddingWeight = 0.5
	DefaultDenseBackend          = "memory"

	DefaultVotePolicy    = "topn"
	DefaultVoteTopN      = 10
	DefaultVoteThreshold = 0.5

	DefaultEvaluationCutoff = 5
	DefaultMatchRatio       = 0.24

	DefaultEmbeddingProvider  = "deterministic"
	DefaultEmbeddingModel     = "paraphrase-multilingual-MiniLM-L12-v2"
	DefaultEmbeddingDims      = 384
	DefaultEmbeddingBatchSize = 32

	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresDBName   = "caselaw"
	DefaultPostgresMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultKeyPrefix = "caselaw:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaClientID    = "caselaw"
	DefaultKafkaGroupID     = "caselaw-archiver"
	DefaultKafkaTopicPrefix = "caselaw"

	DefaultMinIOEndpoint        = "localhost:9000"
	DefaultMinIORawBucket       = "caselaw-raw"
	DefaultMinIOArtifactsBucket = "caselaw-artifacts"

	DefaultMilvusAddr       = "localhost:19530"
	DefaultMilvusCollection = "caselaw_vectors"

	DefaultOpenSearchAddress = "http://localhost:9200"
	DefaultOpenSearchIndex   = "caselaw-cases"

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jDatabase = "neo4j"

	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultMetricsNamespace = "caselaw"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
//
// Booleans that default to true (metrics.enabled, kafka.auto_create_topics)
// cannot be patched here because an explicit false is indistinguishable from
// an unset field; those defaults are registered with viper in newViper.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── App ───────────────────────────────────────────────────────────────────
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	if cfg.App.Env == "" {
		cfg.App.Env = DefaultAppEnv
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.DataDir == "" {
		cfg.Pipeline.DataDir = DefaultDataDir
	}
	if cfg.Pipeline.RawDir == "" {
		cfg.Pipeline.RawDir = filepath.Join(cfg.Pipeline.DataDir, "raw")
	}
	if cfg.Pipeline.CaseBasePath == "" {
		cfg.Pipeline.CaseBasePath = filepath.Join(cfg.Pipeline.DataDir, "processed", "cases.json")
	}
	if cfg.Pipeline.QuerySetPath == "" {
		cfg.Pipeline.QuerySetPath = filepath.Join(cfg.Pipeline.DataDir, "processed", "queries.json")
	}
	if cfg.Pipeline.RetrievalResultsPath == "" {
		cfg.Pipeline.RetrievalResultsPath = filepath.Join(cfg.Pipeline.DataDir, "results", "retrieval_results.json")
	}
	if cfg.Pipeline.ResultsDir == "" {
		cfg.Pipeline.ResultsDir = filepath.Join(cfg.Pipeline.DataDir, "results")
	}

	// ── Extraction ────────────────────────────────────────────────────────────
	if cfg.Extraction.SummaryMinLength == 0 {
		cfg.Extraction.SummaryMinLength = DefaultSummaryMinLength
	}
	if cfg.Extraction.SummaryMaxLength == 0 {
		cfg.Extraction.SummaryMaxLength = DefaultSummaryMaxLength
	}
	if cfg.Extraction.HeaderRegion == 0 {
		cfg.Extraction.HeaderRegion = DefaultHeaderRegion
	}
	if cfg.Extraction.DateRegion == 0 {
		cfg.Extraction.DateRegion = DefaultDateRegion
	}
	if cfg.Extraction.PersonalRegion == 0 {
		cfg.Extraction.PersonalRegion = DefaultPersonalRegion
	}
	if cfg.Extraction.VerdictRegion == 0 {
		cfg.Extraction.VerdictRegion = DefaultVerdictRegion
	}

	// ── Retrieval ─────────────────────────────────────────────────────────────
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Retrieval.MaxFeatures == 0 {
		cfg.Retrieval.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.Retrieval.HybridTFIDFWeight == 0 && cfg.Retrieval.HybridEmbeddingWeight == 0 {
		cfg.Retrieval.HybridTFIDFWeight = DefaultHybridTFIDFWeight
		cfg.Retrieval.HybridEmbeddingWeight = DefaultHybridEmbeddingWeight
	}
	if cfg.Retrieval.DenseBackend == "" {
		cfg.Retrieval.DenseBackend = DefaultDenseBackend
	}

	// ── Prediction ────────────────────────────────────────────────────────────
	if cfg.Prediction.Policy == "" {
		cfg.Prediction.Policy = DefaultVotePolicy
	}
	if cfg.Prediction.TopN == 0 {
		cfg.Prediction.TopN = DefaultVoteTopN
	}
	if cfg.Prediction.Threshold == 0 {
		cfg.Prediction.Threshold = DefaultVoteThreshold
	}

	// ── Evaluation ────────────────────────────────────────────────────────────
	if cfg.Evaluation.Cutoff == 0 {
		cfg.Evaluation.Cutoff = DefaultEvaluationCutoff
	}
	if cfg.Evaluation.MatchRatio == 0 {
		cfg.Evaluation.MatchRatio = DefaultMatchRatio
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = DefaultEmbeddingProvider
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = DefaultEmbeddingDims
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = DefaultEmbeddingBatchSize
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = 24 * time.Hour
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPostgresHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.User == "" {
		cfg.Postgres.User = "caselaw"
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultPostgresDBName
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultPostgresMaxConns
	}
	if cfg.Postgres.MinConns == 0 {
		cfg.Postgres.MinConns = 5
	}
	if cfg.Postgres.ConnMaxLifetime == 0 {
		cfg.Postgres.ConnMaxLifetime = time.Hour
	}
	if cfg.Postgres.ConnMaxIdleTime == 0 {
		cfg.Postgres.ConnMaxIdleTime = 30 * time.Minute
	}
	if cfg.Postgres.MigrationPath == "" {
		cfg.Postgres.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.MinIdleConns == 0 {
		cfg.Redis.MinIdleConns = 2
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.RawBucket == "" {
		cfg.MinIO.RawBucket = DefaultMinIORawBucket
	}
	if cfg.MinIO.ArtifactsBucket == "" {
		cfg.MinIO.ArtifactsBucket = DefaultMinIOArtifactsBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 15 * time.Minute
	}

	// ── Milvus ────────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.Database == "" {
		cfg.Milvus.Database = "default"
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = DefaultMilvusCollection
	}
	if cfg.Milvus.IndexType == "" {
		cfg.Milvus.IndexType = "HNSW"
	}
	if cfg.Milvus.HNSWM == 0 {
		cfg.Milvus.HNSWM = 16
	}
	if cfg.Milvus.HNSWEfConstruction == 0 {
		cfg.Milvus.HNSWEfConstruction = 200
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddress}
	}
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.User == "" {
		cfg.Neo4j.User = "neo4j"
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 5 * time.Second
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
