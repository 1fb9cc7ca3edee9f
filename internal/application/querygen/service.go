// Package querygen builds the retrieval query set from the case base using
// the prioritized field-combination policy.
package querygen

import (
	"context"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Summary is the query-generation run report.
type Summary struct {
	Cases     int           `json:"cases"`
	Generated int           `json:"generated"`
	Skipped   int           `json:"skipped"`
	Backup    string        `json:"backup,omitempty"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output"`
}

// Service turns case records into query records.
type Service struct {
	logger logging.Logger
}

// NewService builds the query generator.
func NewService(log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{logger: log.Named("querygen")}
}

// Run loads the case base, generates one query per case with usable text and
// writes the query set. An existing query set is backed up first. Cases with
// no usable text are skipped with a tally. An empty case base writes nothing.
func (s *Service) Run(ctx context.Context, casesPath, outputPath string) (*Summary, error) {
	start := time.Now()

	cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](casesPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Cases: len(cases), Output: outputPath}
	if len(cases) == 0 {
		s.logger.Warn("empty case base, skipping query set write")
		return summary, nil
	}

	queries := make([]legalcase.QueryRecord, 0, len(cases))
	for _, rec := range cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStageFailed, "query generation interrupted")
		}

		text, fieldsUsed, ok := rec.CompositeText()
		if !ok {
			summary.Skipped++
			s.logger.Debug("no usable query text", logging.String("case_id", rec.CaseID))
			continue
		}
		queries = append(queries, legalcase.QueryRecord{
			QueryID:      legalcase.QueryIDAt(len(queries)),
			Text:         text,
			CaseID:       rec.CaseID,
			NoPerkara:    rec.NoPerkara,
			JenisPerkara: rec.JenisPerkara,
			Source:       legalcase.QuerySourceCaseFields,
			FieldsUsed:   fieldsUsed,
		})
	}
	summary.Generated = len(queries)

	if len(queries) == 0 {
		s.logger.Warn("no usable query texts, skipping query set write")
		return summary, nil
	}

	backup, err := artifact.BackupIfExists(outputPath)
	if err != nil {
		return nil, err
	}
	if backup != "" {
		summary.Backup = backup
		s.logger.Info("backed up existing query set", logging.String("backup", backup))
	}

	if err := artifact.SaveJSON(outputPath, queries); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	s.logger.Info("query generation complete",
		logging.Int("cases", summary.Cases),
		logging.Int("generated", summary.Generated),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}
