package legalcase

import (
	"fmt"
	"strings"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// QuerySourceCaseFields marks queries that were generated from a case
// record's own fields rather than supplied externally.
const QuerySourceCaseFields = "generated_from_case_fields"

// QueryRecord is one retrieval query.  Generated queries carry provenance
// back to the case they were built from; externally supplied queries may
// carry only an identifier, text, and optionally explicit ground-truth
// relevant case ids.
type QueryRecord struct {
	QueryID string `json:"query_id"`
	Text    string `json:"text"`

	// ── Provenance (populated for generated queries) ──────────────────────────
	CaseID       string `json:"case_id"`
	NoPerkara    string `json:"no_perkara"`
	JenisPerkara string `json:"jenis_perkara"`
	Source       string `json:"source"`
	FieldsUsed   string `json:"fields_used_for_query"`

	// ── Optional explicit ground truth for evaluation ─────────────────────────
	RelevantCaseIDs []string `json:"relevant_case_ids,omitempty"`
}

// QueryIDAt formats the identifier for the n-th generated query, zero-based.
func QueryIDAt(n int) string {
	return fmt.Sprintf("query_%04d", n)
}

// RelevantSet returns the ids that count as relevant when scoring this
// query's ranking: the explicit ground-truth list when present, otherwise
// the originating case alone.  Nil for external queries with neither.
func (q QueryRecord) RelevantSet() []string {
	if len(q.RelevantCaseIDs) > 0 {
		return q.RelevantCaseIDs
	}
	if q.CaseID != "" {
		return []string{q.CaseID}
	}
	return nil
}

// Validate checks the invariants every query must satisfy before retrieval.
func (q QueryRecord) Validate() error {
	if strings.TrimSpace(q.QueryID) == "" {
		return errors.InvalidParam("query record must have a query_id")
	}
	if strings.TrimSpace(q.Text) == "" {
		return errors.InvalidParam("query record must have non-empty text")
	}
	return nil
}
