package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	pkgerrors "github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	var created bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/caselaw-cases":
			created = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	ci := NewCaseIndex(client, "", nil)
	require.NoError(t, ci.EnsureIndex(context.Background()))
	assert.True(t, created)
}

func TestEnsureIndexSkipsWhenPresent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	ci := NewCaseIndex(client, "caselaw-cases", nil)
	require.NoError(t, ci.EnsureIndex(context.Background()))
}

func TestIndexCaseUpsertsByID(t *testing.T) {
	var gotPath string
	var gotDoc map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"created"}`))
	})

	ci := NewCaseIndex(client, "caselaw-cases", nil)
	rec := legalcase.CaseRecord{
		CaseID:       "case-001",
		FileName:     "case-001.txt",
		NoPerkara:    "123/Pid.Sus/2021/PN.Jkt",
		JenisPerkara: "narkotika",
		Pasal:        "Pasal 112 UU RI No. 35 Tahun 2009",
	}
	require.NoError(t, ci.IndexCase(context.Background(), rec))

	assert.Equal(t, "/caselaw-cases/_doc/case-001", gotPath)
	assert.Equal(t, "case-001", gotDoc["case_id"])
	statutes, ok := gotDoc["statutes"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, statutes)
}

func TestSearchParsesHits(t *testing.T) {
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/_search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {"hits": [
				{"_id": "case-001", "_score": 2.5, "_source": {"case_id": "case-001", "no_perkara": "123/Pid.Sus/2021/PN.Jkt", "jenis_perkara": "narkotika", "ringkasan_fakta": "terdakwa mengedarkan narkotika"}},
				{"_id": "case-002", "_score": 1.1, "_source": {"case_id": "case-002", "jenis_perkara": "pencurian"}}
			]}
		}`))
	})

	ci := NewCaseIndex(client, "caselaw-cases", nil)
	hits, err := ci.Search(context.Background(), "narkotika", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "case-001", hits[0].CaseID)
	assert.Equal(t, 2.5, hits[0].Score)
	assert.Equal(t, "narkotika", hits[0].JenisPerkara)
	assert.Equal(t, float64(5), gotBody["size"])
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ci := NewCaseIndex(client, "caselaw-cases", nil)
	_, err := ci.Search(context.Background(), "   ", 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))
}

func TestSearchServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})
	ci := NewCaseIndex(client, "caselaw-cases", nil)
	_, err := ci.Search(context.Background(), "narkotika", 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSearchFailed))
}

func TestDeleteCaseIgnoresMissing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":"not_found"}`))
	})
	ci := NewCaseIndex(client, "caselaw-cases", nil)
	assert.NoError(t, ci.DeleteCase(context.Background(), "case-404"))
}
