package retrieval

import (
	"math"
	"reflect"
	"testing"
)

func TestMinMaxNormalize(t *testing.T) {
	ranked := []ScoredCase{
		{CaseID: "a", Score: 0.9},
		{CaseID: "b", Score: 0.5},
		{CaseID: "c", Score: 0.1},
	}

	MinMaxNormalize(ranked)

	if ranked[0].Score != 1.0 || ranked[2].Score != 0.0 {
		t.Errorf("expected endpoints 1.0 and 0.0, got %v", ranked)
	}
	if math.Abs(ranked[1].Score-0.5) > 1e-9 {
		t.Errorf("expected midpoint 0.5, got %f", ranked[1].Score)
	}
}

func TestMinMaxNormalize_AllEqualCollapsesToZero(t *testing.T) {
	ranked := []ScoredCase{
		{CaseID: "a", Score: 0.7},
		{CaseID: "b", Score: 0.7},
	}

	MinMaxNormalize(ranked)

	for _, hit := range ranked {
		if hit.Score != 0.0 {
			t.Errorf("expected all-equal scores to collapse to 0, got %v", ranked)
		}
	}
}

func TestMinMaxNormalize_Empty(t *testing.T) {
	MinMaxNormalize(nil) // must not panic
}

func TestFuseHybrid_CombinesWeightedScores(t *testing.T) {
	lexical := []ScoredCase{
		{CaseID: "a", Score: 1.0},
		{CaseID: "b", Score: 0.5},
	}
	dense := []ScoredCase{
		{CaseID: "b", Score: 1.0},
		{CaseID: "c", Score: 0.8},
	}

	fused := FuseHybrid(lexical, dense, 0.5, 0.5, 10)

	want := []ScoredCase{
		{CaseID: "b", Score: 0.75},
		{CaseID: "a", Score: 0.5},
		{CaseID: "c", Score: 0.4},
	}
	if !reflect.DeepEqual(fused, want) {
		t.Errorf("expected %v, got %v", want, fused)
	}
}

func TestFuseHybrid_MissingSideContributesNothing(t *testing.T) {
	lexical := []ScoredCase{{CaseID: "a", Score: 0.6}}

	fused := FuseHybrid(lexical, nil, 0.5, 0.5, 10)

	if len(fused) != 1 || fused[0].CaseID != "a" || fused[0].Score != 0.3 {
		t.Errorf("expected lexical-only fusion, got %v", fused)
	}
}

func TestFuseHybrid_StableTiesAndTruncation(t *testing.T) {
	lexical := []ScoredCase{
		{CaseID: "a", Score: 0.4},
		{CaseID: "b", Score: 0.4},
		{CaseID: "c", Score: 0.4},
	}

	fused := FuseHybrid(lexical, nil, 1.0, 1.0, 2)

	want := []ScoredCase{
		{CaseID: "a", Score: 0.4},
		{CaseID: "b", Score: 0.4},
	}
	if !reflect.DeepEqual(fused, want) {
		t.Errorf("ties must keep first-seen order, got %v", fused)
	}
}

func TestMethodResultRoundTrip(t *testing.T) {
	ranked := []ScoredCase{
		{CaseID: "x", Score: 1.0},
		{CaseID: "y", Score: 0.25},
	}

	r := NewMethodResult(ranked)
	if len(r.CaseIDs) != 2 || len(r.Scores) != 2 {
		t.Fatalf("unexpected artifact shape: %+v", r)
	}
	if !reflect.DeepEqual(r.Ranked(), ranked) {
		t.Errorf("round trip mismatch: %v", r.Ranked())
	}
}

func TestMethodResult_EmptySerializesAsArrays(t *testing.T) {
	r := NewMethodResult(nil)
	if r.CaseIDs == nil || r.Scores == nil {
		t.Error("empty result must keep non-nil arrays")
	}
}

func TestMethodResult_LengthMismatchZipsShortSide(t *testing.T) {
	r := MethodResult{CaseIDs: []string{"a", "b"}, Scores: []float64{0.9}}
	ranked := r.Ranked()
	if len(ranked) != 1 || ranked[0].CaseID != "a" {
		t.Errorf("expected single zipped hit, got %v", ranked)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" TFIDF ")
	if err != nil || m != MethodTFIDF {
		t.Errorf("expected tfidf, got %v (%v)", m, err)
	}

	if _, err := ParseMethod("bm25"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestMethodFileSlug(t *testing.T) {
	if got := Method("TF-IDF variant").FileSlug(); got != "TF_IDF_variant" {
		t.Errorf("expected sanitized slug, got %q", got)
	}
	if got := MethodEmbedding.FileSlug(); got != "embedding" {
		t.Errorf("expected identity slug, got %q", got)
	}
}
