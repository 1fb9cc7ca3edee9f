package embedding

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// mapCache is an in-memory VectorCache for decorator tests.
type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return errors.NotFound("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

// countingEmbedder records how many texts reached the inner provider.
type countingEmbedder struct {
	inner Embedder
	seen  []string
	fail  error
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	c.seen = append(c.seen, texts...)
	return c.inner.Embed(ctx, texts)
}

func TestCachedEmbedder_SecondCallHitsCache(t *testing.T) {
	inner := &countingEmbedder{inner: NewDeterministicEmbedder(8)}
	cached := NewCachedEmbedder(inner, newMapCache(), "m", time.Hour, nil)

	first, err := cached.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b"}, inner.seen, "second call must not reach the inner provider")
	assert.Equal(t, int64(2), cached.Stats().Hits)
	assert.Equal(t, int64(2), cached.Stats().Misses)
}

func TestCachedEmbedder_PartialHitEmbedsOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{inner: NewDeterministicEmbedder(8)}
	cache := newMapCache()
	cached := NewCachedEmbedder(inner, cache, "m", time.Hour, nil)

	_, err := cached.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)

	vectors, err := cached.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Len(t, vectors, 3)
	assert.Equal(t, []string{"a", "b", "c"}, inner.seen, "only b and c should reach the inner provider on the second call")
	for i, v := range vectors {
		assert.NotEmpty(t, v, "vector %d must be filled", i)
	}
}

func TestCachedEmbedder_ModelNameSeparatesKeys(t *testing.T) {
	cache := newMapCache()
	innerA := &countingEmbedder{inner: NewDeterministicEmbedder(8)}
	innerB := &countingEmbedder{inner: NewDeterministicEmbedder(8)}

	a := NewCachedEmbedder(innerA, cache, "model-a", time.Hour, nil)
	b := NewCachedEmbedder(innerB, cache, "model-b", time.Hour, nil)

	_, err := a.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	_, err = b.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, innerB.seen, "a different model must not reuse cached vectors")
}

func TestCachedEmbedder_InnerFailurePropagates(t *testing.T) {
	innerErr := errors.ServiceUnavailable("embedding service down")
	inner := &countingEmbedder{inner: NewDeterministicEmbedder(8), fail: innerErr}
	cached := NewCachedEmbedder(inner, newMapCache(), "m", time.Hour, nil)

	_, err := cached.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailable(err))
}
