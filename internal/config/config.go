// Package config defines all configuration structures for the
// CaseLaw-Intelligence platform.  No I/O or parsing logic lives here — only
// plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// AppConfig identifies the running process.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // "development" | "staging" | "production"
	Debug bool   `mapstructure:"debug"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stdout" | "stderr" | file path
}

// PipelineConfig holds the batch pipeline's directory layout and artifact
// paths.  Unset paths are derived from DataDir by ApplyDerivedDefaults.
type PipelineConfig struct {
	DataDir string `mapstructure:"data_dir"`

	// RawDir holds the input ruling text files (one .txt per document).
	RawDir string `mapstructure:"raw_dir"`

	// Persisted artifacts.
	CaseBasePath         string `mapstructure:"case_base_path"`
	QuerySetPath         string `mapstructure:"query_set_path"`
	RetrievalResultsPath string `mapstructure:"retrieval_results_path"`
	ResultsDir           string `mapstructure:"results_dir"`

	// Workers bounds per-document extraction concurrency; 0 means one worker
	// per available CPU.
	Workers int `mapstructure:"workers"`
}

// EffectiveWorkers resolves the worker count, treating 0 as GOMAXPROCS.
func (p PipelineConfig) EffectiveWorkers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// PredictionsPath returns the per-method prediction table path for a method
// file slug.
func (p PipelineConfig) PredictionsPath(methodSlug string) string {
	return filepath.Join(p.ResultsDir, "predictions_"+methodSlug+".csv")
}

// RetrievalMetricsPath returns the retrieval metric pivot table path.
func (p PipelineConfig) RetrievalMetricsPath() string {
	return filepath.Join(p.ResultsDir, "retrieval_metrics.csv")
}

// PredictionMetricsPath returns the prediction metric pivot table path.
func (p PipelineConfig) PredictionMetricsPath() string {
	return filepath.Join(p.ResultsDir, "prediction_metrics.csv")
}

// ExtractionConfig bounds the field-extraction pattern cascades.
type ExtractionConfig struct {
	// SummaryMinLength / SummaryMaxLength bound the extracted fact summary.
	SummaryMinLength int `mapstructure:"summary_min"`
	SummaryMaxLength int `mapstructure:"summary_max"`

	// Search windows, in characters from the start of the document (verdict:
	// from the end).  Case numbers and categories sit in the header; dates in
	// the opening recitals; personal data in the identity block; the verdict
	// near the end.
	HeaderRegion   int `mapstructure:"header_region"`
	DateRegion     int `mapstructure:"date_region"`
	PersonalRegion int `mapstructure:"personal_region"`
	VerdictRegion  int `mapstructure:"verdict_region"`
}

// RetrievalConfig holds similarity-retrieval tunables.
type RetrievalConfig struct {
	TopK                  int     `mapstructure:"top_k"`
	MaxFeatures           int     `mapstructure:"max_features"`
	HybridTFIDFWeight     float64 `mapstructure:"hybrid_tfidf_weight"`
	HybridEmbeddingWeight float64 `mapstructure:"hybrid_embedding_weight"`
	DenseBackend          string  `mapstructure:"dense_backend"` // "memory" | "milvus"
}

// PredictionConfig selects the statute-vote policy.
type PredictionConfig struct {
	Policy    string  `mapstructure:"policy"` // "topn" | "threshold"
	TopN      int     `mapstructure:"top_n"`
	Threshold float64 `mapstructure:"threshold"`
}

// EvaluationConfig holds metric parameters.
type EvaluationConfig struct {
	Cutoff     int     `mapstructure:"cutoff"`
	MatchRatio float64 `mapstructure:"match_ratio"`
}

// EmbeddingConfig selects and tunes the text-embedding provider.
type EmbeddingConfig struct {
	Provider     string        `mapstructure:"provider"` // "http" | "deterministic"
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Dimensions   int           `mapstructure:"dimensions"`
	BatchSize    int           `mapstructure:"batch_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters for the case archive.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the pgx/golang-migrate connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection parameters for the embedding cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters for pipeline events.
type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	ClientID         string   `mapstructure:"client_id"`
	GroupID          string   `mapstructure:"group_id"`
	TopicPrefix      string   `mapstructure:"topic_prefix"`
	AutoOffsetReset  string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries  int      `mapstructure:"producer_retries"`
	BatchSize        int      `mapstructure:"batch_size"`
	AutoCreateTopics bool     `mapstructure:"auto_create_topics"`
}

// MinIOConfig holds object-storage parameters for raw rulings and artifacts.
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKey       string        `mapstructure:"access_key"`
	SecretKey       string        `mapstructure:"secret_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	RawBucket       string        `mapstructure:"raw_bucket"`
	ArtifactsBucket string        `mapstructure:"artifacts_bucket"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// MilvusConfig holds vector-store parameters for the optional dense backend.
type MilvusConfig struct {
	Addr               string `mapstructure:"addr"`
	Database           string `mapstructure:"database"`
	Collection         string `mapstructure:"collection"`
	IndexType          string `mapstructure:"index_type"`
	HNSWM              int    `mapstructure:"hnsw_m"`
	HNSWEfConstruction int    `mapstructure:"hnsw_ef_construction"`
}

// OpenSearchConfig holds full-text search parameters for the case archive.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// Neo4jConfig holds graph-store parameters for the statute citation graph.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// ServerConfig holds HTTP API server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr renders the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the pipeline-core configuration.
// It returns the first error encountered; callers should treat any error as
// fatal.  Backend sections (Postgres, Redis, Kafka, MinIO, Milvus,
// OpenSearch, Neo4j) are validated by their own Validate methods, called only
// by the components that actually connect to them — the batch pipeline must
// be runnable with none of them configured.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Pipeline
	if c.Pipeline.DataDir == "" {
		return fmt.Errorf("config: pipeline.data_dir is required")
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("config: pipeline.workers must be ≥ 0, got %d", c.Pipeline.Workers)
	}

	// Extraction
	if c.Extraction.SummaryMinLength < 0 {
		return fmt.Errorf("config: extraction.summary_min must be ≥ 0, got %d", c.Extraction.SummaryMinLength)
	}
	if c.Extraction.SummaryMaxLength <= c.Extraction.SummaryMinLength {
		return fmt.Errorf("config: extraction.summary_max %d must exceed summary_min %d",
			c.Extraction.SummaryMaxLength, c.Extraction.SummaryMinLength)
	}
	for name, region := range map[string]int{
		"header_region":   c.Extraction.HeaderRegion,
		"date_region":     c.Extraction.DateRegion,
		"personal_region": c.Extraction.PersonalRegion,
		"verdict_region":  c.Extraction.VerdictRegion,
	} {
		if region < 1 {
			return fmt.Errorf("config: extraction.%s must be ≥ 1, got %d", name, region)
		}
	}

	// Retrieval
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("config: retrieval.top_k must be ≥ 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxFeatures < 1 {
		return fmt.Errorf("config: retrieval.max_features must be ≥ 1, got %d", c.Retrieval.MaxFeatures)
	}
	if c.Retrieval.HybridTFIDFWeight < 0 || c.Retrieval.HybridEmbeddingWeight < 0 {
		return fmt.Errorf("config: hybrid fusion weights must be ≥ 0")
	}
	if c.Retrieval.HybridTFIDFWeight+c.Retrieval.HybridEmbeddingWeight == 0 {
		return fmt.Errorf("config: hybrid fusion weights must not both be 0")
	}
	switch c.Retrieval.DenseBackend {
	case "memory", "milvus":
	default:
		return fmt.Errorf("config: retrieval.dense_backend %q is invalid; expected memory|milvus", c.Retrieval.DenseBackend)
	}

	// Prediction
	switch c.Prediction.Policy {
	case "topn", "threshold":
	default:
		return fmt.Errorf("config: prediction.policy %q is invalid; expected topn|threshold", c.Prediction.Policy)
	}
	if c.Prediction.Policy == "topn" && c.Prediction.TopN < 1 {
		return fmt.Errorf("config: prediction.top_n must be ≥ 1, got %d", c.Prediction.TopN)
	}
	if c.Prediction.Threshold < 0 {
		return fmt.Errorf("config: prediction.threshold must be ≥ 0, got %f", c.Prediction.Threshold)
	}

	// Evaluation
	if c.Evaluation.Cutoff < 1 {
		return fmt.Errorf("config: evaluation.cutoff must be ≥ 1, got %d", c.Evaluation.Cutoff)
	}
	if c.Evaluation.MatchRatio < 0 || c.Evaluation.MatchRatio > 1 {
		return fmt.Errorf("config: evaluation.match_ratio %f is out of range [0, 1]", c.Evaluation.MatchRatio)
	}

	// Embedding
	switch c.Embedding.Provider {
	case "http", "deterministic":
	default:
		return fmt.Errorf("config: embedding.provider %q is invalid; expected http|deterministic", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "http" && c.Embedding.BaseURL == "" {
		return fmt.Errorf("config: embedding.base_url is required for the http provider")
	}
	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("config: embedding.dimensions must be ≥ 1, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("config: embedding.batch_size must be ≥ 1, got %d", c.Embedding.BatchSize)
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	return nil
}

// Validate checks the fields required to open a PostgreSQL pool.
func (c PostgresConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config: postgres.host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Port)
	}
	if c.User == "" {
		return fmt.Errorf("config: postgres.user is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("config: postgres.db_name is required")
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("config: postgres.max_conns must be ≥ 1, got %d", c.MaxConns)
	}
	return nil
}

// Validate checks the fields required to open a Redis client.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.DB)
	}
	return nil
}

// Validate checks the fields required to produce or consume Kafka messages.
func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	return nil
}

// Validate checks the fields required to reach object storage.
func (c MinIOConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	if c.RawBucket == "" || c.ArtifactsBucket == "" {
		return fmt.Errorf("config: minio.raw_bucket and minio.artifacts_bucket are required")
	}
	return nil
}

// Validate checks the fields required to open the vector store.
func (c MilvusConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("config: milvus.collection is required")
	}
	return nil
}

// Validate checks the fields required to reach the search cluster.
func (c OpenSearchConfig) Validate() error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	if c.Index == "" {
		return fmt.Errorf("config: opensearch.index is required")
	}
	return nil
}

// Validate checks the fields required to open the graph driver.
func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}
	if c.User == "" {
		return fmt.Errorf("config: neo4j.user is required")
	}
	return nil
}
