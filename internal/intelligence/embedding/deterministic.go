package embedding

import (
	"context"
	"math"
	"math/rand"
)

// DeterministicEmbedder derives a unit-length vector from a hash of the text
// itself.  Identical texts always map to identical vectors, which makes it
// the offline and test provider: retrieval runs are reproducible without any
// embedding service, at the cost of vectors that carry only lexical identity,
// not meaning.
type DeterministicEmbedder struct {
	dimensions int
}

// DefaultDimensions matches the dimensionality of the default sentence
// transformer model, so deterministic and http providers are drop-in
// interchangeable.
const DefaultDimensions = 384

// NewDeterministicEmbedder builds the provider.  Non-positive dimensions
// fall back to DefaultDimensions.
func NewDeterministicEmbedder(dimensions int) *DeterministicEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &DeterministicEmbedder{dimensions: dimensions}
}

// Dimensions returns the vector length this provider produces.
func (e *DeterministicEmbedder) Dimensions() int { return e.dimensions }

// Embed maps every text onto its hash-seeded unit vector.
func (e *DeterministicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *DeterministicEmbedder) vector(text string) []float32 {
	hash := int64(0)
	for _, r := range text {
		hash = hash*31 + int64(r)
	}
	seeded := rand.New(rand.NewSource(hash))

	vec := make([]float32, e.dimensions)
	for i := range vec {
		vec[i] = float32(seeded.Float64()*2 - 1)
	}
	return unitNormalize(vec)
}

// unitNormalize scales v to unit length; an all-zero vector is returned
// unchanged.
func unitNormalize(v []float32) []float32 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
