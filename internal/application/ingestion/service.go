// Package ingestion runs the document ingestion stage: reading raw ruling
// texts, extracting structured case records, deduplicating and persisting the
// case base.
package ingestion

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/internal/intelligence/extractor"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

const stageName = "ingest"

// TextSource lists and reads raw ruling documents.
type TextSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// EventPublisher emits pipeline events. A nil publisher disables events.
type EventPublisher interface {
	CaseIngested(ctx context.Context, payload kafka.CaseIngestedPayload) error
	StageCompleted(ctx context.Context, payload kafka.StageCompletedPayload) error
	DocumentFailed(ctx context.Context, payload kafka.DocumentFailedPayload) error
}

// Summary is the ingestion run report.
type Summary struct {
	Documents int            `json:"documents"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Dropped   int            `json:"dropped_duplicates"`
	FieldFill map[string]int `json:"field_fill"`
	Duration  time.Duration  `json:"duration"`
	Output    string         `json:"output"`
}

// Service extracts case records from raw ruling texts.
type Service struct {
	extractor *extractor.Extractor
	workers   int
	publisher EventPublisher
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// Option adjusts optional service collaborators.
type Option func(*Service)

// WithPublisher attaches a pipeline event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the ingestion service. Workers <= 0 falls back to one
// worker.
func NewService(ex *extractor.Extractor, workers int, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if workers <= 0 {
		workers = 1
	}
	s := &Service{
		extractor: ex,
		workers:   workers,
		logger:    log.Named("ingestion"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ingests every document from the source and writes the case base to
// outputPath. One failing document never aborts the batch; it is logged,
// counted and skipped. An empty source produces no output file.
func (s *Service) Run(ctx context.Context, source TextSource, outputPath string) (*Summary, error) {
	start := time.Now()

	names, err := source.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "list source documents")
	}
	sort.Strings(names)

	summary := &Summary{Documents: len(names), FieldFill: map[string]int{}, Output: outputPath}
	if len(names) == 0 {
		s.logger.Warn("no documents found, skipping case base write")
		return summary, nil
	}

	// Indexed slots keep the output in source order regardless of which
	// worker finishes first.
	slots := make([]*legalcase.CaseRecord, len(names))
	failures := make([]error, len(names))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			rec, err := s.processDocument(groupCtx, source, name)
			if err != nil {
				failures[i] = err
				return nil
			}
			slots[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "ingest worker pool")
	}

	records := make([]legalcase.CaseRecord, 0, len(names))
	for i, rec := range slots {
		if failures[i] != nil {
			summary.Failed++
			s.reportFailure(ctx, names[i], failures[i])
			continue
		}
		if rec != nil {
			records = append(records, *rec)
		}
		if s.metrics != nil {
			s.metrics.ObserveDocument(stageName, failures[i])
		}
	}

	unique, dropped := legalcase.Deduplicate(records)
	summary.Dropped = len(dropped)
	for _, dup := range dropped {
		s.logger.Warn("dropped duplicate case",
			logging.String("case_id", dup.CaseID),
			logging.String("file_name", dup.FileName))
		if s.metrics != nil {
			s.metrics.DuplicatesDropped.WithLabelValues().Inc()
		}
	}
	summary.Processed = len(unique)

	if len(unique) == 0 {
		s.logger.Warn("no cases extracted, skipping case base write")
		return summary, nil
	}

	if err := artifact.SaveJSON(outputPath, unique); err != nil {
		return nil, err
	}

	s.tallyFieldFill(summary, unique)
	s.publishIngested(ctx, unique)

	summary.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveStage(stageName, summary.Duration)
	}
	s.publishStageCompleted(ctx, summary)

	s.logger.Info("ingestion complete",
		logging.Int("documents", summary.Documents),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("dropped_duplicates", summary.Dropped),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

func (s *Service) processDocument(ctx context.Context, source TextSource, name string) (*legalcase.CaseRecord, error) {
	raw, err := source.Read(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeItemProcessing, "read %s", name)
	}

	text := extractor.Normalize(string(raw))
	fields := s.extractor.Extract(text)

	rec := legalcase.CaseRecord{
		FileName:    name,
		FileSize:    len(raw),
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}
	fields.Apply(&rec)
	rec.CaseID = legalcase.CaseIDFor(rec.NoPerkara, name)

	if err := rec.Validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeItemProcessing, "record for %s", name)
	}
	return &rec, nil
}

func (s *Service) reportFailure(ctx context.Context, name string, cause error) {
	s.logger.Warn("document failed", logging.String("file_name", name), logging.Err(cause))
	if s.publisher == nil {
		return
	}
	if err := s.publisher.DocumentFailed(ctx, kafka.DocumentFailedPayload{
		FileName: name,
		Reason:   cause.Error(),
	}); err != nil {
		s.logger.Warn("publish document.failed", logging.Err(err))
	}
}

func (s *Service) publishIngested(ctx context.Context, records []legalcase.CaseRecord) {
	if s.publisher == nil {
		return
	}
	for _, rec := range records {
		err := s.publisher.CaseIngested(ctx, kafka.CaseIngestedPayload{
			CaseID:       rec.CaseID,
			Category:     rec.JenisPerkara,
			StatuteCount: len(rec.Statutes()),
			FileName:     rec.FileName,
		})
		if err != nil {
			s.logger.Warn("publish case.ingested",
				logging.String("case_id", rec.CaseID), logging.Err(err))
		}
	}
}

func (s *Service) publishStageCompleted(ctx context.Context, summary *Summary) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.StageCompleted(ctx, kafka.StageCompletedPayload{
		Stage:      stageName,
		Processed:  summary.Processed,
		Failed:     summary.Failed,
		DurationMS: summary.Duration.Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("publish stage.completed", logging.Err(err))
	}
}

// tallyFieldFill logs per-field extraction coverage and exports it as gauges.
func (s *Service) tallyFieldFill(summary *Summary, records []legalcase.CaseRecord) {
	for _, rec := range records {
		for _, field := range rec.FilledFields() {
			summary.FieldFill[field]++
		}
	}
	total := len(records)
	for _, field := range legalcase.MetadataFields {
		filled := summary.FieldFill[field]
		ratio := float64(filled) / float64(total)
		s.logger.Info("field fill rate",
			logging.String("field", field),
			logging.String("filled", fmt.Sprintf("%d/%d (%.1f%%)", filled, total, ratio*100)))
		if s.metrics != nil {
			s.metrics.ExtractionFieldFill.WithLabelValues(field).Set(ratio)
		}
	}
}
