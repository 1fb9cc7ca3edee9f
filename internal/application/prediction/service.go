package prediction

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

const stageName = "predict"

// PredictionsHeader is the column layout of every per-method prediction
// table.
var PredictionsHeader = []string{"query_id", "predicted_solution", "top_retrieved_case_ids_for_method"}

// Summary is the prediction run report.
type Summary struct {
	Queries  int               `json:"queries"`
	Methods  []string          `json:"methods"`
	NoAnswer map[string]int    `json:"no_answer,omitempty"`
	Outputs  map[string]string `json:"outputs"`
	Duration time.Duration     `json:"duration"`
}

// Service votes applicable statutes for every query from its retrieved
// neighbors and writes one prediction table per retrieval method.
type Service struct {
	policy  retrieval.VotePolicy
	metrics *prometheus.Metrics
	logger  logging.Logger
}

// Option adjusts optional service collaborators.
type Option func(*Service)

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// PolicyFromConfig maps the configured vote policy onto the domain policy.
// Unknown policy names fall back to the default.
func PolicyFromConfig(cfg config.PredictionConfig) retrieval.VotePolicy {
	policy := retrieval.DefaultVotePolicy()
	switch strings.ToLower(strings.TrimSpace(cfg.Policy)) {
	case "threshold":
		policy.UseThreshold = true
		if cfg.Threshold > 0 {
			policy.Threshold = cfg.Threshold
		}
	case "", "topn":
		if cfg.TopN > 0 {
			policy.TopN = cfg.TopN
		}
	}
	return policy
}

// NewService builds the prediction service.
func NewService(policy retrieval.VotePolicy, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if !policy.UseThreshold && policy.TopN <= 0 {
		policy = retrieval.DefaultVotePolicy()
	}
	s := &Service{
		policy: policy,
		logger: log.Named("prediction"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the case base and retrieval results and writes, per retrieval
// method present in the results, a prediction table at
// pipeline.PredictionsPath(method slug).  Queries whose neighbors cite no
// statutes predict retrieval.NoPrediction and are counted per method in the
// summary.
func (s *Service) Run(ctx context.Context, casesPath, resultsPath string, pipeline config.PipelineConfig) (*Summary, error) {
	start := time.Now()

	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	if err != nil {
		return nil, err
	}
	results, err := artifact.LoadJSONArray[retrieval.QueryResult](resultsPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Queries:  len(results),
		NoAnswer: make(map[string]int),
		Outputs:  make(map[string]string),
	}
	if len(results) == 0 {
		s.logger.Warn("no retrieval results, skipping prediction",
			logging.String("results_path", resultsPath))
		return summary, nil
	}

	byID := make(map[string]legalcase.CaseRecord, len(cases))
	for _, rec := range cases {
		byID[rec.CaseID] = rec
	}

	for _, method := range methodsPresent(results) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "prediction interrupted")
		}

		rows := make([][]string, 0, len(results))
		for _, qr := range results {
			row := s.predictQuery(qr, method, byID)
			if row.PredictedSolution == retrieval.NoPrediction {
				summary.NoAnswer[method.String()]++
			}
			rows = append(rows, []string{
				row.QueryID,
				row.PredictedSolution,
				strings.Join(row.TopCaseIDs, ", "),
			})
			if s.metrics != nil {
				s.metrics.PredictionsTotal.WithLabelValues(method.String()).Inc()
			}
		}

		outputPath := pipeline.PredictionsPath(method.FileSlug())
		if err := artifact.SaveCSV(outputPath, PredictionsHeader, rows); err != nil {
			return nil, err
		}
		summary.Methods = append(summary.Methods, method.String())
		summary.Outputs[method.String()] = outputPath
	}

	summary.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveStage(stageName, summary.Duration)
	}
	s.logger.Info("prediction complete",
		logging.Int("queries", summary.Queries),
		logging.Strings("methods", summary.Methods),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// predictQuery votes one query's statutes for one method.  Retrieved ids
// without a case-base record still appear in the provenance column but carry
// no vote.
func (s *Service) predictQuery(qr retrieval.QueryResult, method retrieval.Method, byID map[string]legalcase.CaseRecord) retrieval.Prediction {
	mr := qr.Results[method]

	neighbors := make([]retrieval.Neighbor, 0, len(mr.CaseIDs))
	for _, hit := range mr.Ranked() {
		rec, ok := byID[hit.CaseID]
		if !ok {
			s.logger.Debug("retrieved case missing from case base",
				logging.String("query_id", qr.QueryID),
				logging.String("case_id", hit.CaseID))
			continue
		}
		neighbors = append(neighbors, retrieval.Neighbor{Case: rec, Score: hit.Score})
	}

	return retrieval.Prediction{
		QueryID:           qr.QueryID,
		PredictedSolution: retrieval.WeightedMajorityVote(neighbors, s.policy),
		TopCaseIDs:        mr.CaseIDs,
	}
}

// methodsPresent returns the canonical methods that appear in at least one
// query's results, in canonical order.
func methodsPresent(results []retrieval.QueryResult) []retrieval.Method {
	seen := make(map[retrieval.Method]bool)
	for _, qr := range results {
		for m := range qr.Results {
			seen[m] = true
		}
	}
	var methods []retrieval.Method
	for _, m := range retrieval.Methods() {
		if seen[m] {
			methods = append(methods, m)
		}
	}
	return methods
}
