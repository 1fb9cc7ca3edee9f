package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/evaluation"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

const stageName = "evaluate"

// Summary is the evaluation run report.
type Summary struct {
	Queries           int           `json:"queries"`
	RetrievalMethods  []string      `json:"retrieval_methods"`
	PredictionMethods []string      `json:"prediction_methods"`
	RetrievalOutput   string        `json:"retrieval_output,omitempty"`
	PredictionOutput  string        `json:"prediction_output,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// Service scores retrieval rankings and statute predictions and writes the
// two metric pivot tables.
type Service struct {
	cutoff         int
	matchThreshold float64
	metrics        *prometheus.Metrics
	logger         logging.Logger
}

// Option adjusts optional service collaborators.
type Option func(*Service)

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the evaluation service. Zero config values fall back to
// the domain defaults.
func NewService(cfg config.EvaluationConfig, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Cutoff <= 0 {
		cfg.Cutoff = evaluation.DefaultCutoff
	}
	if cfg.MatchRatio <= 0 {
		cfg.MatchRatio = evaluation.DefaultMatchThreshold
	}
	s := &Service{
		cutoff:         cfg.Cutoff,
		matchThreshold: cfg.MatchRatio,
		logger:         log.Named("evaluation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run evaluates both the retrieval rankings and the statute predictions.
// Prediction tables are optional: methods without one are skipped.
func (s *Service) Run(ctx context.Context, casesPath, queriesPath, resultsPath string, pipeline config.PipelineConfig) (*Summary, error) {
	start := time.Now()

	retrSummary, err := s.EvaluateRetrieval(ctx, queriesPath, resultsPath, pipeline.RetrievalMetricsPath())
	if err != nil {
		return nil, err
	}
	predSummary, err := s.EvaluatePredictions(ctx, casesPath, queriesPath, pipeline)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Queries:           retrSummary.Queries,
		RetrievalMethods:  retrSummary.RetrievalMethods,
		PredictionMethods: predSummary.PredictionMethods,
		RetrievalOutput:   retrSummary.RetrievalOutput,
		PredictionOutput:  predSummary.PredictionOutput,
		Duration:          time.Since(start),
	}
	if s.metrics != nil {
		s.metrics.ObserveStage(stageName, summary.Duration)
	}
	s.logger.Info("evaluation complete",
		logging.Int("queries", summary.Queries),
		logging.Strings("retrieval_methods", summary.RetrievalMethods),
		logging.Strings("prediction_methods", summary.PredictionMethods),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// EvaluateRetrieval scores every method's ranking for every query against the
// query's relevant set and writes the metric-by-method pivot table.  A query
// without an explicit relevant set is relevant to its originating case only.
func (s *Service) EvaluateRetrieval(ctx context.Context, queriesPath, resultsPath, outputPath string) (*Summary, error) {
	queries, err := artifact.LoadJSONArray[legalcase.QueryRecord](queriesPath)
	if err != nil {
		return nil, err
	}
	results, err := artifact.LoadJSONArray[retrieval.QueryResult](resultsPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Queries: len(results)}
	if len(results) == 0 {
		s.logger.Warn("no retrieval results to evaluate",
			logging.String("results_path", resultsPath))
		return summary, nil
	}

	relevantByQuery := make(map[string][]string, len(queries))
	for _, q := range queries {
		relevantByQuery[q.QueryID] = q.RelevantSet()
	}

	perMethod := make(map[retrieval.Method][]evaluation.RankingMetrics)
	for _, qr := range results {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "evaluation interrupted")
		}

		// Generated queries always carry their originating case id, so this
		// only excludes external queries that declared no ground truth; they
		// must not drag the macro averages toward zero.
		relevant, ok := relevantByQuery[qr.QueryID]
		if !ok || len(relevant) == 0 {
			s.logger.Debug("query without relevant set skipped",
				logging.String("query_id", qr.QueryID))
			continue
		}
		for method, mr := range qr.Results {
			perMethod[method] = append(perMethod[method],
				evaluation.EvaluateRanking(mr.CaseIDs, relevant, s.cutoff))
		}
	}

	var methods []retrieval.Method
	for _, m := range retrieval.Methods() {
		if len(perMethod[m]) > 0 {
			methods = append(methods, m)
		}
	}
	if len(methods) == 0 {
		s.logger.Warn("no evaluable queries, skipping retrieval metrics")
		return summary, nil
	}

	header := []string{"Metric"}
	for _, m := range methods {
		header = append(header, m.String())
		summary.RetrievalMethods = append(summary.RetrievalMethods, m.String())
	}

	names := evaluation.MetricNames(s.cutoff)
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}
	for _, m := range methods {
		mean := evaluation.MeanRankings(perMethod[m])
		for i, v := range mean.Values() {
			rows[i] = append(rows[i], fmt.Sprintf("%.4f", v))
		}
	}

	if err := artifact.SaveCSV(outputPath, header, rows); err != nil {
		return nil, err
	}
	summary.RetrievalOutput = outputPath
	return summary, nil
}

// EvaluatePredictions scores every per-method prediction table found under
// the pipeline results directory against the originating cases' statute
// fields and writes the percentage pivot table.  Methods without a table are
// skipped.
func (s *Service) EvaluatePredictions(ctx context.Context, casesPath, queriesPath string, pipeline config.PipelineConfig) (*Summary, error) {
	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	if err != nil {
		return nil, err
	}
	queries, err := artifact.LoadJSONArray[legalcase.QueryRecord](queriesPath)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]legalcase.CaseRecord, len(cases))
	for _, rec := range cases {
		byID[rec.CaseID] = rec
	}
	// Ground truth per query: the statutes its originating case cites.
	truth := make(map[string][]string, len(queries))
	for _, q := range queries {
		if rec, ok := byID[q.CaseID]; ok {
			truth[q.QueryID] = rec.Statutes()
		}
	}

	summary := &Summary{Queries: len(queries)}
	var methods []string
	tallies := make(map[string]evaluation.PredictionTally)

	for _, method := range retrieval.Methods() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "evaluation interrupted")
		}

		path := pipeline.PredictionsPath(method.FileSlug())
		_, rows, err := artifact.LoadCSV(path)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		var tally evaluation.PredictionTally
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			queryID, predicted := row[0], row[1]
			trueStatutes, ok := truth[queryID]
			if !ok {
				s.logger.Debug("prediction without ground truth skipped",
					logging.String("query_id", queryID))
				continue
			}
			tally.Observe(trueStatutes, legalcase.ParseStatuteField(predicted), s.matchThreshold)
		}

		methods = append(methods, method.String())
		tallies[method.String()] = tally
	}

	if len(methods) == 0 {
		s.logger.Warn("no prediction tables found, skipping prediction metrics",
			logging.String("results_dir", pipeline.ResultsDir))
		return summary, nil
	}

	header := append([]string{"Metric"}, methods...)
	names := evaluation.PredictionMetricNames()
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name}
	}
	for _, m := range methods {
		for i, v := range tallies[m].Values() {
			rows[i] = append(rows[i], fmt.Sprintf("%.2f%%", v))
		}
	}

	outputPath := pipeline.PredictionMetricsPath()
	if err := artifact.SaveCSV(outputPath, header, rows); err != nil {
		return nil, err
	}
	summary.PredictionMethods = methods
	summary.PredictionOutput = outputPath
	return summary, nil
}
