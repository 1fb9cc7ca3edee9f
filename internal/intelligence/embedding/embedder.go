// Package embedding provides the text-embedding providers behind dense
// retrieval.  The Embedder contract is deliberately small: a batch of texts
// in, one equal-length vector per text out, order preserved.  The index build
// receives an Embedder as an explicit dependency; nothing in this package
// holds process-wide model state.
package embedding

import (
	"context"
)

// Embedder maps a batch of texts onto fixed-dimension vectors.  Output is
// order-preserving: vector i belongs to texts[i].  Implementations must
// either return one vector per input text or an error; partial results are
// not part of the contract.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
