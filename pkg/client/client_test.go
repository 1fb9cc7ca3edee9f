package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cl, err := New(srv.URL, WithAPIKey("secret"), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return srv, cl
}

func writeEnvelope[T any](t *testing.T, w http.ResponseWriter, status int, env types.Envelope[T]) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestGetCase(t *testing.T) {
	var gotPath, gotKey, gotAgent string
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotAgent = r.Header.Get("User-Agent")
		writeEnvelope(t, w, http.StatusOK, types.Envelope[types.Case]{
			Data: types.Case{CaseID: "case-001", JenisPerkara: "narkotika"},
		})
	})

	rec, err := cl.GetCase(context.Background(), "case-001")
	require.NoError(t, err)
	assert.Equal(t, "case-001", rec.CaseID)
	assert.Equal(t, "narkotika", rec.JenisPerkara)
	assert.Equal(t, "/api/v1/cases/case-001", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "caselaw-client/"+Version, gotAgent)
}

func TestGetCaseNotFoundKeepsCode(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusNotFound, types.Envelope[types.Case]{
			Error: &types.ErrorBody{Code: string(errors.ErrCodeCaseNotFound), Message: "case not found"},
		})
	})

	_, err := cl.GetCase(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNotFound))
	assert.True(t, errors.IsNotFound(err))
}

func TestGetCaseEmptyID(t *testing.T) {
	cl, err := New("http://localhost:8080")
	require.NoError(t, err)

	_, err = cl.GetCase(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestListCasesSendsFilterAndReadsMeta(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "narkotika", q.Get("category"))
		assert.Equal(t, "Pasal 112", q.Get("statute"))
		assert.Equal(t, "2", q.Get("limit"))
		assert.Equal(t, "4", q.Get("offset"))

		writeEnvelope(t, w, http.StatusOK, types.Envelope[[]types.Case]{
			Data: []types.Case{{CaseID: "case-a"}, {CaseID: "case-b"}},
			Meta: &types.Page{Limit: 2, Offset: 4, Total: 42},
		})
	})

	cases, page, err := cl.ListCases(context.Background(), ListCasesParams{
		Category: "narkotika",
		Statute:  "Pasal 112",
		Limit:    2,
		Offset:   4,
	})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.NotNil(t, page)
	assert.Equal(t, 42, page.Total)
}

func TestSearchCases(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cases/search", r.URL.Path)
		assert.Equal(t, "sabu", r.URL.Query().Get("q"))
		writeEnvelope(t, w, http.StatusOK, types.Envelope[[]types.SearchHit]{
			Data: []types.SearchHit{{CaseID: "case-a", Score: 3.4}},
		})
	})

	hits, err := cl.SearchCases(context.Background(), "sabu", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 3.4, hits[0].Score, 1e-9)
}

func TestRelatedStatutesEscapesRef(t *testing.T) {
	var gotPath string
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeEnvelope(t, w, http.StatusOK, types.Envelope[[]types.RelatedStatute]{
			Data: []types.RelatedStatute{{Ref: "Pasal 3", SharedCases: 5}},
		})
	})

	related, err := cl.RelatedStatutes(context.Background(), "Pasal 2 Ayat (1)", 10)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, int64(5), related[0].SharedCases)
	assert.Equal(t, "/api/v1/statutes/Pasal%202%20Ayat%20%281%29/related", gotPath)
}

func TestCasesCiting(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, types.Envelope[[]string]{
			Data: []string{"case-a", "case-b"},
		})
	})

	ids, err := cl.CasesCiting(context.Background(), "Pasal 362", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"case-a", "case-b"}, ids)
}

func TestReadyReportsDownComponents(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/readyz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		require.NoError(t, json.NewEncoder(w).Encode(types.HealthReport{
			Status:     types.HealthDown,
			Components: map[string]string{"redis": types.HealthDown},
		}))
	})

	report, err := cl.Ready(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Healthy())
	assert.Equal(t, types.HealthDown, report.Components["redis"])
}

func TestNonEnvelopeErrorResponse(t *testing.T) {
	_, cl := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := cl.GetCase(context.Background(), "case-001")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
}
