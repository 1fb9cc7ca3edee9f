package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

const (
	defaultRelatedLimit = 10
	maxRelatedLimit     = 50
	defaultCitingLimit  = 100
	maxCitingLimit      = 1000
)

// StatuteGraph is the slice of the archive service used by the statute
// handler.
type StatuteGraph interface {
	RelatedStatutes(ctx context.Context, ref string, limit int) ([]neo4j.RelatedStatute, error)
	CasesCiting(ctx context.Context, ref string, limit int) ([]string, error)
}

// StatuteHandler serves the citation-graph endpoints.
type StatuteHandler struct {
	graph  StatuteGraph
	logger logging.Logger
}

// NewStatuteHandler builds a statute handler over the archive service.
func NewStatuteHandler(graph StatuteGraph, log logging.Logger) *StatuteHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StatuteHandler{graph: graph, logger: log.Named("http.statutes")}
}

// Related handles GET /api/v1/statutes/:ref/related?limit=.
func (h *StatuteHandler) Related(c *gin.Context) {
	limit := intQuery(c, "limit", defaultRelatedLimit, maxRelatedLimit)

	related, err := h.graph.RelatedStatutes(c.Request.Context(), c.Param("ref"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]types.RelatedStatute, 0, len(related))
	for _, r := range related {
		results = append(results, types.RelatedStatute{Ref: r.Ref, SharedCases: r.SharedCases})
	}
	respondData(c, results, nil)
}

// Citing handles GET /api/v1/statutes/:ref/cases?limit=.
func (h *StatuteHandler) Citing(c *gin.Context) {
	limit := intQuery(c, "limit", defaultCitingLimit, maxCitingLimit)

	caseIDs, err := h.graph.CasesCiting(c.Request.Context(), c.Param("ref"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, caseIDs, nil)
}
