package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

const (
	defaultPageLimit   = 20
	maxPageLimit       = 100
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// CaseArchive is the slice of the archive service used by the case handler.
type CaseArchive interface {
	GetCase(ctx context.Context, caseID string) (*legalcase.CaseRecord, error)
	ListCases(ctx context.Context, filter postgres.CaseFilter) ([]legalcase.CaseRecord, int, error)
	SearchCases(ctx context.Context, query string, limit int) ([]opensearch.CaseHit, error)
}

// CaseHandler serves the archived case endpoints.
type CaseHandler struct {
	archive CaseArchive
	logger  logging.Logger
}

// NewCaseHandler builds a case handler over the archive service.
func NewCaseHandler(archive CaseArchive, log logging.Logger) *CaseHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CaseHandler{archive: archive, logger: log.Named("http.cases")}
}

// Get handles GET /api/v1/cases/:id.
func (h *CaseHandler) Get(c *gin.Context) {
	rec, err := h.archive.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, toAPICase(*rec), nil)
}

// List handles GET /api/v1/cases?category=&statute=&limit=&offset=.
func (h *CaseHandler) List(c *gin.Context) {
	filter := postgres.CaseFilter{
		Category: c.Query("category"),
		Statute:  c.Query("statute"),
		Limit:    intQuery(c, "limit", defaultPageLimit, maxPageLimit),
		Offset:   offsetQuery(c),
	}

	records, total, err := h.archive.ListCases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	cases := make([]types.Case, 0, len(records))
	for _, rec := range records {
		cases = append(cases, toAPICase(rec))
	}
	respondData(c, cases, &types.Page{Limit: filter.Limit, Offset: filter.Offset, Total: total})
}

// Search handles GET /api/v1/cases/search?q=&limit=.
func (h *CaseHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, h.logger, errors.InvalidParam("query parameter q must not be empty"))
		return
	}
	limit := intQuery(c, "limit", defaultSearchLimit, maxSearchLimit)

	hits, err := h.archive.SearchCases(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]types.SearchHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, types.SearchHit{
			CaseID:         hit.CaseID,
			NoPerkara:      hit.NoPerkara,
			JenisPerkara:   hit.JenisPerkara,
			RingkasanFakta: hit.RingkasanFakta,
			Score:          hit.Score,
		})
	}
	respondData(c, results, nil)
}

// toAPICase converts the domain record into the wire type.
func toAPICase(rec legalcase.CaseRecord) types.Case {
	return types.Case{
		CaseID:         rec.CaseID,
		FileName:       rec.FileName,
		FileSize:       rec.FileSize,
		TextLength:     rec.TextLength,
		NoPerkara:      rec.NoPerkara,
		Tanggal:        rec.Tanggal,
		JenisPerkara:   rec.JenisPerkara,
		Pasal:          rec.Pasal,
		Nama:           rec.Nama,
		Umur:           rec.Umur,
		JenisKelamin:   rec.JenisKelamin,
		Pekerjaan:      rec.Pekerjaan,
		Alamat:         rec.Alamat,
		StatusHukuman:  rec.StatusHukuman,
		RingkasanFakta: rec.RingkasanFakta,
		ProcessedAt:    rec.ProcessedAt,
	}
}
