package prometheus

import (
	"strconv"
	"time"
)

// Metrics holds every metric the pipeline, archive and API record.
type Metrics struct {
	// Pipeline
	DocumentsProcessed  CounterVec
	DuplicatesDropped   CounterVec
	ExtractionFieldFill GaugeVec
	StageDuration       HistogramVec

	// Retrieval, prediction and embedding
	RetrievalQueries      CounterVec
	PredictionsTotal      CounterVec
	EmbeddingCacheHits    CounterVec
	EmbeddingCacheMisses  CounterVec
	EmbeddingBatchSeconds HistogramVec

	// Archive
	ArchiveSync CounterVec

	// HTTP
	HTTPRequests        CounterVec
	HTTPRequestDuration HistogramVec
}

var (
	stageDurationBuckets = []float64{.1, .5, 1, 5, 15, 60, 300, 900}
	httpDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	embedBatchBuckets    = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// NewMetrics registers the full metric set on the collector.
func NewMetrics(collector MetricsCollector) *Metrics {
	return &Metrics{
		DocumentsProcessed: collector.RegisterCounter(
			"pipeline_documents_processed_total", "Documents processed per stage", "stage", "status"),
		DuplicatesDropped: collector.RegisterCounter(
			"pipeline_duplicates_dropped_total", "Duplicate case numbers dropped during ingest"),
		ExtractionFieldFill: collector.RegisterGauge(
			"pipeline_extraction_field_filled", "Fill ratio per extracted field in the last ingest run", "field"),
		StageDuration: collector.RegisterHistogram(
			"pipeline_stage_duration_seconds", "Wall time per pipeline stage run", stageDurationBuckets, "stage"),

		RetrievalQueries: collector.RegisterCounter(
			"retrieval_queries_total", "Retrieval queries served per method", "method"),
		PredictionsTotal: collector.RegisterCounter(
			"prediction_votes_total", "Statute votes cast per retrieval method", "method"),
		EmbeddingCacheHits: collector.RegisterCounter(
			"embedding_cache_hits_total", "Embedding vectors served from cache"),
		EmbeddingCacheMisses: collector.RegisterCounter(
			"embedding_cache_misses_total", "Embedding vectors computed on cache miss"),
		EmbeddingBatchSeconds: collector.RegisterHistogram(
			"embedding_batch_duration_seconds", "Embedding batch round-trip time", embedBatchBuckets),

		ArchiveSync: collector.RegisterCounter(
			"archive_sync_total", "Archive upserts per sink", "sink", "status"),

		HTTPRequests: collector.RegisterCounter(
			"http_requests_total", "HTTP requests served", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram(
			"http_request_duration_seconds", "HTTP request latency", httpDurationBuckets, "method", "path"),
	}
}

// ObserveDocument counts one processed document for a stage.
func (m *Metrics) ObserveDocument(stage string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DocumentsProcessed.WithLabelValues(stage, status).Inc()
}

// ObserveStage records a completed stage run.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveArchiveSync counts one archive upsert per sink.
func (m *Metrics) ObserveArchiveSync(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ArchiveSync.WithLabelValues(sink, status).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
