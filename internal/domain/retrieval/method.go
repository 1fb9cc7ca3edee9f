// Package retrieval defines the vocabulary of the similarity-retrieval and
// statute-prediction stages: retrieval methods, ranked results and their
// artifact schema, score normalization, hybrid fusion, and the weighted
// majority vote.  Everything here is pure; index construction and scoring
// live in the intelligence layer.
package retrieval

import (
	"strings"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Method identifies one retrieval strategy.  The value is the wire name: it
// keys the retrieval-results artifact and names the per-method prediction and
// metric outputs.
type Method string

const (
	// MethodTFIDF ranks by cosine similarity of sparse TF-IDF vectors.
	MethodTFIDF Method = "tfidf"

	// MethodEmbedding ranks by cosine similarity of dense embedding vectors.
	MethodEmbedding Method = "embedding"

	// MethodHybrid fuses the lexical and dense rankings with configurable
	// weights.
	MethodHybrid Method = "hybrid"
)

// Methods returns every supported method in canonical execution order.
func Methods() []Method {
	return []Method{MethodTFIDF, MethodEmbedding, MethodHybrid}
}

// ParseMethod maps a wire name onto a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", errors.InvalidParam("unknown retrieval method: " + s)
	}
	return m, nil
}

func (m Method) String() string {
	return string(m)
}

// IsValid reports whether m is one of the supported methods.
func (m Method) IsValid() bool {
	switch m {
	case MethodTFIDF, MethodEmbedding, MethodHybrid:
		return true
	}
	return false
}

var fileSlugSanitizer = strings.NewReplacer(" ", "_", "-", "_")

// FileSlug renders the method name safe for use inside output file names.
// Spaces and hyphens become underscores, so an externally produced artifact
// with a method key like "TF-IDF" still maps onto a stable file name.
func (m Method) FileSlug() string {
	return fileSlugSanitizer.Replace(string(m))
}
