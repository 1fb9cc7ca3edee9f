package similarity

import (
	"context"
	"math"
	"sort"

	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/retrieval"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// MemoryDenseIndex holds case embedding vectors in memory and ranks them by
// cosine similarity.  It is the default dense backend; the Milvus adapter
// implements the same build/search contract for corpora that outgrow memory.
type MemoryDenseIndex struct {
	ids     []string
	vectors [][]float32
	norms   []float64
}

// NewMemoryDenseIndex returns an empty index; Build loads the vectors.
func NewMemoryDenseIndex() *MemoryDenseIndex {
	return &MemoryDenseIndex{}
}

// Build replaces the index contents with the given id/vector pairs.  Vector
// norms are precomputed once so search is a plain dot product per case.
func (m *MemoryDenseIndex) Build(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return errors.InvalidParam("dense index requires one vector per case id")
	}

	m.ids = ids
	m.vectors = vectors
	m.norms = make([]float64, len(vectors))
	for i, v := range vectors {
		m.norms[i] = denseNorm(v)
	}
	return nil
}

// Search returns the k cases most cosine-similar to the query vector,
// descending, with ties keeping corpus order.  Raw cosine scores are
// returned; per-query normalization is the caller's concern.
func (m *MemoryDenseIndex) Search(_ context.Context, vector []float32, k int) ([]retrieval.ScoredCase, error) {
	if len(m.ids) == 0 {
		return nil, nil
	}

	queryNorm := denseNorm(vector)
	ranked := make([]retrieval.ScoredCase, 0, len(m.ids))
	for i, caseVec := range m.vectors {
		score := 0.0
		if queryNorm > 0 && m.norms[i] > 0 {
			score = denseDot(vector, caseVec) / (queryNorm * m.norms[i])
		}
		ranked = append(ranked, retrieval.ScoredCase{CaseID: m.ids[i], Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func denseDot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func denseNorm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
