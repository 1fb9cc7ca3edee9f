package archive

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/storage/artifact"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Archiver applies case.ingested events to the archive sinks.  It resolves
// each event's case id against the case base artifact, reloading the file
// when its modification time changes.  Sync is idempotent, so redelivered
// events are harmless.
type Archiver struct {
	svc       *Service
	casesPath string
	logger    logging.Logger

	mu       sync.Mutex
	byID     map[string]legalcase.CaseRecord
	loadedAt time.Time
}

// NewArchiver builds an event archiver over the sync service.
func NewArchiver(svc *Service, casesPath string, log logging.Logger) *Archiver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Archiver{
		svc:       svc,
		casesPath: casesPath,
		logger:    log.Named("archiver"),
	}
}

// HandleCaseIngested processes one case.ingested envelope.  Unknown case
// ids are skipped without error: the event may outrun the artifact write,
// and the next full sync repairs the gap.
func (a *Archiver) HandleCaseIngested(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.CaseIngestedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.CaseID == "" {
		return errors.Validation("case.ingested event without case_id")
	}

	rec, err := a.lookup(payload.CaseID)
	if err != nil {
		return err
	}
	if rec == nil {
		a.logger.Warn("case not in case base, skipping",
			logging.String("case_id", payload.CaseID),
			logging.String("file_name", payload.FileName))
		return nil
	}

	if err := a.svc.SyncCase(ctx, *rec); err != nil {
		return err
	}
	a.logger.Info("case archived",
		logging.String("case_id", rec.CaseID),
		logging.String("category", rec.JenisPerkara))
	return nil
}

// lookup resolves a case id, reloading the case base if it changed on disk.
func (a *Archiver) lookup(caseID string) (*legalcase.CaseRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	info, err := os.Stat(a.casesPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "stat case base %s", a.casesPath)
	}

	if a.byID == nil || info.ModTime().After(a.loadedAt) {
		cases, err := artifact.LoadJSONArray[legalcase.CaseRecord](a.casesPath)
		if err != nil {
			return nil, err
		}
		a.byID = make(map[string]legalcase.CaseRecord, len(cases))
		for _, rec := range cases {
			a.byID[rec.CaseID] = rec
		}
		a.loadedAt = info.ModTime()
		a.logger.Debug("case base reloaded", logging.Int("cases", len(cases)))
	}

	if rec, ok := a.byID[caseID]; ok {
		return &rec, nil
	}
	return nil, nil
}
