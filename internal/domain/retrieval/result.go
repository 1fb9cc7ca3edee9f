package retrieval

import (
	"sort"
)

// ─────────────────────────────────────────────────────────────────────────────
// Ranked results
// ─────────────────────────────────────────────────────────────────────────────

// ScoredCase is one ranked hit: a case identifier with its similarity score.
type ScoredCase struct {
	CaseID string
	Score  float64
}

// MethodResult is one method's ranked hit list for one query, in the artifact
// schema: parallel id and score arrays, descending by score.
type MethodResult struct {
	CaseIDs []string  `json:"case_ids"`
	Scores  []float64 `json:"scores"`
}

// NewMethodResult converts a ranked hit list into the artifact shape.  The
// arrays are always non-nil so an empty result serializes as [] rather than
// null.
func NewMethodResult(ranked []ScoredCase) MethodResult {
	r := MethodResult{
		CaseIDs: make([]string, 0, len(ranked)),
		Scores:  make([]float64, 0, len(ranked)),
	}
	for _, hit := range ranked {
		r.CaseIDs = append(r.CaseIDs, hit.CaseID)
		r.Scores = append(r.Scores, hit.Score)
	}
	return r
}

// Ranked rebuilds the hit list from the parallel arrays.  A trailing length
// mismatch (hand-edited artifact) is tolerated by zipping to the shorter
// side.
func (r MethodResult) Ranked() []ScoredCase {
	n := len(r.CaseIDs)
	if len(r.Scores) < n {
		n = len(r.Scores)
	}
	ranked := make([]ScoredCase, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, ScoredCase{CaseID: r.CaseIDs[i], Score: r.Scores[i]})
	}
	return ranked
}

// QueryResult groups every method's ranked hits for one query.  It is the
// element type of the retrieval-results artifact.
type QueryResult struct {
	QueryID string                  `json:"query_id"`
	Results map[Method]MethodResult `json:"retrieval_results"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Score normalization and fusion
// ─────────────────────────────────────────────────────────────────────────────

// MinMaxNormalize rescales scores in place to [0, 1] within this result set.
// When every score is equal there is no spread to express, and all scores
// collapse to 0.
func MinMaxNormalize(ranked []ScoredCase) {
	if len(ranked) == 0 {
		return
	}

	lo, hi := ranked[0].Score, ranked[0].Score
	for _, hit := range ranked[1:] {
		if hit.Score < lo {
			lo = hit.Score
		}
		if hit.Score > hi {
			hi = hit.Score
		}
	}

	if hi == lo {
		for i := range ranked {
			ranked[i].Score = 0.0
		}
		return
	}
	for i := range ranked {
		ranked[i].Score = (ranked[i].Score - lo) / (hi - lo)
	}
}

// FuseHybrid merges a lexical and a dense ranking into one hybrid ranking.
// Every case id accumulates lexicalWeight×score from the lexical side and
// denseWeight×score from the dense side; a case missing from one side simply
// contributes nothing there.  The fused list is sorted by combined score
// descending with stable ties (lexical-side order first, then dense-only
// newcomers) and truncated to k.  Fused scores are already combinations of
// normalized scores and are not re-normalized.
func FuseHybrid(lexical, dense []ScoredCase, lexicalWeight, denseWeight float64, k int) []ScoredCase {
	combined := make(map[string]float64, len(lexical)+len(dense))
	order := make([]string, 0, len(lexical)+len(dense))

	accumulate := func(ranked []ScoredCase, weight float64) {
		for _, hit := range ranked {
			if _, seen := combined[hit.CaseID]; !seen {
				order = append(order, hit.CaseID)
			}
			combined[hit.CaseID] += hit.Score * weight
		}
	}
	accumulate(lexical, lexicalWeight)
	accumulate(dense, denseWeight)

	fused := make([]ScoredCase, 0, len(order))
	for _, id := range order {
		fused = append(fused, ScoredCase{CaseID: id, Score: combined[id]})
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	if k >= 0 && len(fused) > k {
		fused = fused[:k]
	}
	return fused
}
