// Package retrieval runs the similarity-retrieval stage: building lexical and
// dense indices over the case base and ranking cases per query.
package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/similarity"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Embedder maps texts to equal-length vectors, order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DenseIndex is the pluggable dense backend: the in-memory matrix by
// default, Milvus when configured.
type DenseIndex interface {
	Build(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]retrieval.ScoredCase, error)
}

// Config holds the retrieval tunables.
type Config struct {
	TopK            int
	MaxFeatures     int
	TFIDFWeight     float64
	EmbeddingWeight float64
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		TopK:            10,
		MaxFeatures:     similarity.DefaultMaxFeatures,
		TFIDFWeight:     0.5,
		EmbeddingWeight: 0.5,
	}
}

// Summary is the retrieval run report.
type Summary struct {
	Cases    int           `json:"cases"`
	Queries  int           `json:"queries"`
	Methods  []string      `json:"methods"`
	Degraded []string      `json:"degraded,omitempty"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output"`
}

// Service ranks cases per query for each retrieval method.
type Service struct {
	cfg        Config
	embedder   Embedder
	denseIndex DenseIndex
	metrics    *prometheus.Metrics
	logger     logging.Logger
}

// Option adjusts optional service collaborators.
type Option func(*Service)

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the retrieval service. The embedder and dense index may
// be nil when only tfidf is requested.
func NewService(cfg Config, embedder Embedder, denseIndex DenseIndex, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = similarity.DefaultMaxFeatures
	}
	if cfg.TFIDFWeight == 0 && cfg.EmbeddingWeight == 0 {
		cfg.TFIDFWeight, cfg.EmbeddingWeight = 0.5, 0.5
	}
	s := &Service{
		cfg:        cfg,
		embedder:   embedder,
		denseIndex: denseIndex,
		logger:     log.Named("retrieval"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the case base and query set, builds the indices the requested
// methods need, ranks every query and writes the retrieval-results artifact.
// An embedder failure degrades the dense-side methods to empty results while
// tfidf proceeds.
func (s *Service) Run(ctx context.Context, casesPath, queriesPath, outputPath string, methods []retrieval.Method) (*Summary, error) {
	start := time.Now()
	if len(methods) == 0 {
		methods = retrieval.Methods()
	}
	for _, m := range methods {
		if !m.IsValid() {
			return nil, errors.Newf(errors.ErrCodeMethodUnsupported, "unknown retrieval method %q", m)
		}
	}

	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	if err != nil {
		return nil, err
	}
	queries, err := artifact.LoadJSONArray[legalcase.QueryRecord](queriesPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Cases: len(cases), Queries: len(queries), Output: outputPath}
	for _, m := range methods {
		summary.Methods = append(summary.Methods, m.String())
	}
	if len(cases) == 0 || len(queries) == 0 {
		s.logger.Warn("empty case base or query set, skipping retrieval",
			logging.Int("cases", len(cases)), logging.Int("queries", len(queries)))
		return summary, nil
	}

	// Case text selection shares the query-generation field policy; cases
	// with no usable text cannot be retrieved and stay out of the indices.
	var caseIDs []string
	var caseTexts []string
	for _, rec := range cases {
		text, _, ok := rec.CompositeText()
		if !ok {
			s.logger.Debug("case without usable text excluded from indices",
				logging.String("case_id", rec.CaseID))
			continue
		}
		caseIDs = append(caseIDs, rec.CaseID)
		caseTexts = append(caseTexts, text)
	}
	queryTexts := make([]string, len(queries))
	for i, q := range queries {
		queryTexts[i] = q.Text
	}

	needLexical := containsMethod(methods, retrieval.MethodTFIDF) || containsMethod(methods, retrieval.MethodHybrid)
	needDense := containsMethod(methods, retrieval.MethodEmbedding) || containsMethod(methods, retrieval.MethodHybrid)

	var corpus *similarity.Corpus
	if needLexical {
		// Joint corpus: shared vocabulary and IDF across cases and queries.
		docs := make([]string, 0, len(caseTexts)+len(queryTexts))
		docs = append(docs, caseTexts...)
		docs = append(docs, queryTexts...)
		corpus = similarity.NewCorpus(docs, s.cfg.MaxFeatures)
	}

	var queryVectors [][]float32
	denseReady := false
	if needDense {
		queryVectors, denseReady = s.buildDense(ctx, caseIDs, caseTexts, queryTexts)
		if !denseReady {
			for _, m := range methods {
				if m != retrieval.MethodTFIDF {
					summary.Degraded = append(summary.Degraded, m.String())
				}
			}
		}
	}

	results := make([]retrieval.QueryResult, 0, len(queries))
	for qi, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "retrieval interrupted")
		}

		qr := retrieval.QueryResult{
			QueryID: query.QueryID,
			Results: make(map[retrieval.Method]retrieval.MethodResult, len(methods)),
		}
		for _, method := range methods {
			ranked := s.rankQuery(ctx, method, corpus, caseIDs, qi, queryVectors, denseReady)
			qr.Results[method] = retrieval.NewMethodResult(ranked)
			if s.metrics != nil {
				s.metrics.RetrievalQueries.WithLabelValues(method.String()).Inc()
			}
		}
		results = append(results, qr)
	}

	if err := artifact.SaveJSON(outputPath, results); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveStage("retrieve", summary.Duration)
	}
	s.logger.Info("retrieval complete",
		logging.Int("cases", len(caseIDs)),
		logging.Int("queries", len(queries)),
		logging.Strings("methods", summary.Methods),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// buildDense embeds the corpus and builds the dense index. Any failure is
// reported once and degrades the dense side to empty results.
func (s *Service) buildDense(ctx context.Context, caseIDs, caseTexts, queryTexts []string) ([][]float32, bool) {
	if s.embedder == nil || s.denseIndex == nil {
		s.logger.Warn("no embedder configured, dense methods degrade to empty results")
		return nil, false
	}

	embedStart := time.Now()
	caseVectors, err := s.embedder.Embed(ctx, caseTexts)
	if err != nil {
		s.logger.Warn("embedding service unavailable, dense methods degrade to empty results",
			logging.Err(err))
		return nil, false
	}
	queryVectors, err := s.embedder.Embed(ctx, queryTexts)
	if err != nil {
		s.logger.Warn("embedding service unavailable, dense methods degrade to empty results",
			logging.Err(err))
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.EmbeddingBatchSeconds.WithLabelValues().Observe(time.Since(embedStart).Seconds())
	}

	if err := s.denseIndex.Build(ctx, caseIDs, caseVectors); err != nil {
		s.logger.Warn("dense index build failed, dense methods degrade to empty results",
			logging.Err(err))
		return nil, false
	}
	return queryVectors, true
}

// rankQuery produces one method's normalized top-K ranking for one query.
func (s *Service) rankQuery(ctx context.Context, method retrieval.Method, corpus *similarity.Corpus, caseIDs []string, queryIdx int, queryVectors [][]float32, denseReady bool) []retrieval.ScoredCase {
	k := s.cfg.TopK
	switch method {
	case retrieval.MethodTFIDF:
		ranked := s.rankLexical(corpus, caseIDs, queryIdx, k)
		retrieval.MinMaxNormalize(ranked)
		return ranked

	case retrieval.MethodEmbedding:
		ranked := s.rankDense(ctx, queryIdx, queryVectors, denseReady, k)
		retrieval.MinMaxNormalize(ranked)
		return ranked

	case retrieval.MethodHybrid:
		// Both sides run at top-2K so the fusion sees enough of each tail.
		lexical := s.rankLexical(corpus, caseIDs, queryIdx, 2*k)
		dense := s.rankDense(ctx, queryIdx, queryVectors, denseReady, 2*k)
		retrieval.MinMaxNormalize(lexical)
		retrieval.MinMaxNormalize(dense)
		return retrieval.FuseHybrid(lexical, dense, s.cfg.TFIDFWeight, s.cfg.EmbeddingWeight, k)
	}
	return nil
}

func (s *Service) rankLexical(corpus *similarity.Corpus, caseIDs []string, queryIdx, k int) []retrieval.ScoredCase {
	if corpus == nil {
		return nil
	}
	// Query documents follow the case documents in the joint corpus.
	queryDoc := len(caseIDs) + queryIdx
	ranked := make([]retrieval.ScoredCase, 0, len(caseIDs))
	for i, id := range caseIDs {
		ranked = append(ranked, retrieval.ScoredCase{
			CaseID: id,
			Score:  corpus.Similarity(queryDoc, i),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func (s *Service) rankDense(ctx context.Context, queryIdx int, queryVectors [][]float32, denseReady bool, k int) []retrieval.ScoredCase {
	if !denseReady || queryIdx >= len(queryVectors) {
		return nil
	}
	ranked, err := s.denseIndex.Search(ctx, queryVectors[queryIdx], k)
	if err != nil {
		s.logger.Warn("dense search failed", logging.Err(err))
		return nil
	}
	return ranked
}

func containsMethod(methods []retrieval.Method, m retrieval.Method) bool {
	for _, candidate := range methods {
		if candidate == m {
			return true
		}
	}
	return false
}
