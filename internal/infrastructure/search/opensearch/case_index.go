package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// DefaultIndex is the case index name when config leaves it empty.
const DefaultIndex = "caselaw-cases"

// caseMapping keeps exact-match fields as keywords and the summary
// analyzed for full-text queries.
const caseMapping = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "properties": {
      "case_id":         {"type": "keyword"},
      "no_perkara":      {"type": "keyword"},
      "jenis_perkara":   {"type": "keyword"},
      "pasal":           {"type": "text"},
      "statutes":        {"type": "keyword"},
      "nama":            {"type": "text"},
      "tanggal":         {"type": "keyword"},
      "ringkasan_fakta": {"type": "text"}
    }
  }
}`

// caseDocument is the indexed projection of a case record.
type caseDocument struct {
	CaseID         string   `json:"case_id"`
	NoPerkara      string   `json:"no_perkara"`
	JenisPerkara   string   `json:"jenis_perkara"`
	Pasal          string   `json:"pasal"`
	Statutes       []string `json:"statutes"`
	Nama           string   `json:"nama"`
	Tanggal        string   `json:"tanggal"`
	RingkasanFakta string   `json:"ringkasan_fakta"`
}

// CaseHit is one full-text search result.
type CaseHit struct {
	CaseID         string  `json:"case_id"`
	NoPerkara      string  `json:"no_perkara"`
	JenisPerkara   string  `json:"jenis_perkara"`
	RingkasanFakta string  `json:"ringkasan_fakta"`
	Score          float64 `json:"score"`
}

// CaseIndex indexes and searches archived cases.
type CaseIndex struct {
	client *Client
	index  string
	logger logging.Logger
}

// NewCaseIndex builds the adapter. An empty index name selects DefaultIndex.
func NewCaseIndex(client *Client, index string, log logging.Logger) *CaseIndex {
	if index == "" {
		index = DefaultIndex
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CaseIndex{client: client, index: index, logger: log.Named("case_index")}
}

// EnsureIndex creates the index with the case mapping if it is missing.
func (ci *CaseIndex) EnsureIndex(ctx context.Context) error {
	existsResp, err := opensearchapi.IndicesExistsRequest{Index: []string{ci.index}}.Do(ctx, ci.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "check case index")
	}
	existsResp.Body.Close()
	if existsResp.StatusCode == 200 {
		return nil
	}

	createResp, err := opensearchapi.IndicesCreateRequest{
		Index: ci.index,
		Body:  strings.NewReader(caseMapping),
	}.Do(ctx, ci.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "create case index")
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return errors.Newf(errors.ErrCodeSearchFailed, "create case index: %s", readErrorBody(createResp.Body))
	}

	ci.logger.Info("case index created", logging.String("index", ci.index))
	return nil
}

// IndexCase upserts one case document keyed by case id.
func (ci *CaseIndex) IndexCase(ctx context.Context, rec legalcase.CaseRecord) error {
	doc := caseDocument{
		CaseID:         rec.CaseID,
		NoPerkara:      rec.NoPerkara,
		JenisPerkara:   rec.JenisPerkara,
		Pasal:          rec.Pasal,
		Statutes:       legalcase.ParseStatuteField(rec.Pasal),
		Nama:           rec.Nama,
		Tanggal:        rec.Tanggal,
		RingkasanFakta: rec.RingkasanFakta,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal case document")
	}

	resp, err := opensearchapi.IndexRequest{
		Index:      ci.index,
		DocumentID: rec.CaseID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, ci.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "index case")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeSearchFailed, "index case %s: %s", rec.CaseID, readErrorBody(resp.Body))
	}
	return nil
}

// DeleteCase removes one case document. Missing documents are not an error.
func (ci *CaseIndex) DeleteCase(ctx context.Context, caseID string) error {
	resp, err := opensearchapi.DeleteRequest{Index: ci.index, DocumentID: caseID}.Do(ctx, ci.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchFailed, "delete case")
	}
	defer resp.Body.Close()
	if resp.IsError() && resp.StatusCode != 404 {
		return errors.Newf(errors.ErrCodeSearchFailed, "delete case %s: %s", caseID, readErrorBody(resp.Body))
	}
	return nil
}

// Search runs a multi-match query over the analyzed fields.
func (ci *CaseIndex) Search(ctx context.Context, query string, limit int) ([]CaseHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.InvalidParam("search query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	dsl := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"ringkasan_fakta^2", "nama", "pasal", "no_perkara"},
			},
		},
	}
	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal search query")
	}

	resp, err := opensearchapi.SearchRequest{
		Index: []string{ci.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, ci.client.client)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "search cases")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeSearchFailed, "search cases: %s", readErrorBody(resp.Body))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Score  float64         `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode search response")
	}

	hits := make([]CaseHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		var doc caseDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			continue
		}
		hits = append(hits, CaseHit{
			CaseID:         doc.CaseID,
			NoPerkara:      doc.NoPerkara,
			JenisPerkara:   doc.JenisPerkara,
			RingkasanFakta: doc.RingkasanFakta,
			Score:          h.Score,
		})
	}
	return hits, nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	return string(data)
}
