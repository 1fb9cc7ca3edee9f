package archive

import (
	"context"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Sink names used in logs and metrics.
const (
	sinkPostgres   = "postgres"
	sinkOpenSearch = "opensearch"
	sinkNeo4j      = "neo4j"
)

// CaseStore is the relational mirror of the case base.
type CaseStore interface {
	Upsert(ctx context.Context, rec legalcase.CaseRecord) error
	GetByID(ctx context.Context, caseID string) (*legalcase.CaseRecord, error)
	List(ctx context.Context, filter postgres.CaseFilter) ([]legalcase.CaseRecord, int, error)
}

// CaseSearcher is the full-text index over the case base.
type CaseSearcher interface {
	EnsureIndex(ctx context.Context) error
	IndexCase(ctx context.Context, rec legalcase.CaseRecord) error
	Search(ctx context.Context, query string, limit int) ([]opensearch.CaseHit, error)
}

// StatuteGraph is the case-to-statute citation graph.
type StatuteGraph interface {
	SyncCase(ctx context.Context, rec legalcase.CaseRecord) error
	RelatedStatutes(ctx context.Context, ref string, limit int) ([]neo4j.RelatedStatute, error)
	CasesCiting(ctx context.Context, ref string, limit int) ([]string, error)
}

// Summary is a full archive sync report.
type Summary struct {
	Cases    int           `json:"cases"`
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Service fans case records out to the archive sinks and serves the archive
// read paths.  Any sink may be absent; absent sinks are skipped on the write
// path and rejected on their read path.
type Service struct {
	store    CaseStore
	searcher CaseSearcher
	graph    StatuteGraph
	metrics  *prometheus.Metrics
	logger   logging.Logger
}

// Option adjusts optional service collaborators.
type Option func(*Service)

// WithMetrics attaches archive metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the archive service over whichever sinks are configured.
func NewService(store CaseStore, searcher CaseSearcher, graph StatuteGraph, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		store:    store,
		searcher: searcher,
		graph:    graph,
		logger:   log.Named("archive"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncCase writes one case to every configured sink.  Every sink is
// attempted; the first failure is returned after the rest have run.
func (s *Service) SyncCase(ctx context.Context, rec legalcase.CaseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	var firstErr error
	record := func(sink string, err error) {
		if s.metrics != nil {
			s.metrics.ObserveArchiveSync(sink, err)
		}
		if err != nil {
			s.logger.Error("archive sink write failed",
				logging.String("sink", sink),
				logging.String("case_id", rec.CaseID),
				logging.Err(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if s.store != nil {
		record(sinkPostgres, s.store.Upsert(ctx, rec))
	}
	if s.searcher != nil {
		record(sinkOpenSearch, s.searcher.IndexCase(ctx, rec))
	}
	if s.graph != nil {
		record(sinkNeo4j, s.graph.SyncCase(ctx, rec))
	}
	return firstErr
}

// EnsureSearchIndex creates the full-text index if a searcher is configured.
// No-op otherwise.
func (s *Service) EnsureSearchIndex(ctx context.Context) error {
	if s.searcher == nil {
		return nil
	}
	return s.searcher.EnsureIndex(ctx)
}

// SyncAll loads the case-base artifact and syncs every record, isolating
// per-case failures.
func (s *Service) SyncAll(ctx context.Context, casesPath string) (*Summary, error) {
	start := time.Now()

	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	if err != nil {
		return nil, err
	}

	if s.searcher != nil {
		if err := s.searcher.EnsureIndex(ctx); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Cases: len(cases)}
	for _, rec := range cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "archive sync interrupted")
		}
		if err := s.SyncCase(ctx, rec); err != nil {
			summary.Failed++
			continue
		}
		summary.Synced++
	}

	summary.Duration = time.Since(start)
	s.logger.Info("archive sync complete",
		logging.Int("cases", summary.Cases),
		logging.Int("synced", summary.Synced),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// GetCase returns one archived case by id.
func (s *Service) GetCase(ctx context.Context, caseID string) (*legalcase.CaseRecord, error) {
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "case store not configured")
	}
	if caseID == "" {
		return nil, errors.InvalidParam("case id must not be empty")
	}
	return s.store.GetByID(ctx, caseID)
}

// ListCases returns a filtered page of archived cases and the unfiltered
// total.
func (s *Service) ListCases(ctx context.Context, filter postgres.CaseFilter) ([]legalcase.CaseRecord, int, error) {
	if s.store == nil {
		return nil, 0, errors.New(errors.ErrCodeServiceUnavailable, "case store not configured")
	}
	return s.store.List(ctx, filter)
}

// SearchCases runs a full-text query over the archived cases.
func (s *Service) SearchCases(ctx context.Context, query string, limit int) ([]opensearch.CaseHit, error) {
	if s.searcher == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "case search not configured")
	}
	return s.searcher.Search(ctx, query, limit)
}

// RelatedStatutes returns statutes co-cited with ref, strongest first.
func (s *Service) RelatedStatutes(ctx context.Context, ref string, limit int) ([]neo4j.RelatedStatute, error) {
	if s.graph == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "citation graph not configured")
	}
	return s.graph.RelatedStatutes(ctx, ref, limit)
}

// CasesCiting returns the ids of archived cases citing ref.
func (s *Service) CasesCiting(ctx context.Context, ref string, limit int) ([]string, error) {
	if s.graph == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "citation graph not configured")
	}
	return s.graph.CasesCiting(ctx, ref, limit)
}
