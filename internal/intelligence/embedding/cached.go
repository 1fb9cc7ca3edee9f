package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
)

// VectorCache is the slice of the cache contract the embedding decorator
// needs.  The Redis cache satisfies it; Get must return an error on miss.
type VectorCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheStats counts decorator cache traffic for metrics export.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// CachedEmbedder decorates any Embedder with a vector cache keyed by a hash
// of (model, text).  Only the texts missing from the cache reach the inner
// provider, and a failed inner call fails the whole batch without poisoning
// the cache.
type CachedEmbedder struct {
	inner Embedder
	cache VectorCache
	model string
	ttl   time.Duration
	log   logging.Logger

	stats CacheStats
}

// NewCachedEmbedder wraps inner with a cache.  The model name participates in
// the key so switching models never reuses stale vectors.
func NewCachedEmbedder(inner Embedder, cache VectorCache, model string, ttl time.Duration, log logging.Logger) *CachedEmbedder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache,
		model: model,
		ttl:   ttl,
		log:   log.Named("embedding.cache"),
	}
}

// Stats returns the hit/miss counters accumulated so far.
func (c *CachedEmbedder) Stats() CacheStats { return c.stats }

// Embed serves vectors from the cache where possible and embeds the misses
// through the inner provider, preserving input order.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	for i, text := range texts {
		var cached []float32
		if err := c.cache.Get(ctx, c.key(text), &cached); err == nil && len(cached) > 0 {
			vectors[i] = cached
			c.stats.Hits++
			continue
		}
		c.stats.Misses++
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for pos, i := range missIdx {
		vectors[i] = embedded[pos]
		if err := c.cache.Set(ctx, c.key(texts[i]), embedded[pos], c.ttl); err != nil {
			// The vector is already in hand; a write failure only costs a
			// future recomputation.
			c.log.Warn("failed to cache embedding", logging.Err(err))
		}
	}
	return vectors, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
