package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/CaseLaw-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

type stubArchive struct {
	rec *legalcase.CaseRecord
}

func (s *stubArchive) GetCase(_ context.Context, caseID string) (*legalcase.CaseRecord, error) {
	if s.rec != nil && s.rec.CaseID == caseID {
		return s.rec, nil
	}
	return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
}

func (s *stubArchive) ListCases(context.Context, postgres.CaseFilter) ([]legalcase.CaseRecord, int, error) {
	if s.rec == nil {
		return nil, 0, nil
	}
	return []legalcase.CaseRecord{*s.rec}, 1, nil
}

func (s *stubArchive) SearchCases(context.Context, string, int) ([]opensearch.CaseHit, error) {
	return []opensearch.CaseHit{{CaseID: "case-001", Score: 1}}, nil
}

type stubGraph struct{}

func (stubGraph) RelatedStatutes(context.Context, string, int) ([]neo4j.RelatedStatute, error) {
	return []neo4j.RelatedStatute{{Ref: "Pasal 3", SharedCases: 2}}, nil
}

func (stubGraph) CasesCiting(context.Context, string, int) ([]string, error) {
	return []string{"case-001"}, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{}, logging.NewNopLogger())
	require.NoError(t, err)

	archive := &stubArchive{rec: &legalcase.CaseRecord{CaseID: "case-001", FileName: "case-001.txt"}}
	log := logging.NewNopLogger()

	return NewRouter(RouterConfig{
		CaseHandler:    handlers.NewCaseHandler(archive, log),
		StatuteHandler: handlers.NewStatuteHandler(stubGraph{}, log),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": func(context.Context) error { return nil },
		}, log),
		MetricsHandler: collector.Handler(),
		Metrics:        prometheus.NewMetrics(collector),
		CORSOrigins:    []string{"*"},
		Logger:         log,
		Mode:           gin.TestMode,
	})
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouterServesAllEndpoints(t *testing.T) {
	engine := testRouter(t)

	for _, target := range []string{
		"/healthz",
		"/readyz",
		"/api/v1/cases",
		"/api/v1/cases/case-001",
		"/api/v1/cases/search?q=sabu",
		"/api/v1/statutes/Pasal%203/related",
		"/api/v1/statutes/Pasal%203/cases",
	} {
		rec := get(engine, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestRouterRecordsHTTPMetrics(t *testing.T) {
	engine := testRouter(t)

	get(engine, "/api/v1/cases/case-001")
	rec := get(engine, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`caselaw_http_requests_total{method="GET",path="/api/v1/cases/:id",status="200"} 1`)
}

func TestRouterUnknownRoute(t *testing.T) {
	engine := testRouter(t)
	rec := get(engine, "/api/v1/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterSearchBeatsWildcard(t *testing.T) {
	engine := testRouter(t)

	rec := get(engine, "/api/v1/cases/search?q=sabu")
	require.Equal(t, http.StatusOK, rec.Code)

	var body types.Envelope[[]types.SearchHit]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "case-001", body.Data[0].CaseID)
}

func TestRouterCORSHeaders(t *testing.T) {
	engine := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterWithoutOptionalHandlers(t *testing.T) {
	engine := NewRouter(RouterConfig{Mode: gin.TestMode})

	rec := get(engine, "/healthz")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = get(engine, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterEnvelopeShape(t *testing.T) {
	engine := testRouter(t)

	rec := get(engine, "/api/v1/cases/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	var body types.Envelope[struct{}]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "case not found", body.Error.Message)
}
