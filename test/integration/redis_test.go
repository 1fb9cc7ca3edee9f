package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/domain/legalcase"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

func startRedis(t *testing.T, ctx context.Context) config.RedisConfig {
	t.Helper()

	container, err := tcredis.RunContainer(ctx,
		testcontainers.WithImage("docker.io/redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	return config.RedisConfig{
		Addr:        strings.TrimPrefix(uri, "redis://"),
		DialTimeout: 5 * time.Second,
	}
}

// TestRedisCache exercises the read-through cache against a real server.
func TestRedisCache(t *testing.T) {
	skipUnlessIntegration(t)

	ctx := context.Background()
	log := logging.NewNopLogger()
	cfg := startRedis(t, ctx)

	client, err := redis.NewClient(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	cache := redis.NewCache(client, log, redis.WithPrefix("caselaw-test"))
	require.NoError(t, cache.Ping(ctx))

	rec := legalcase.CaseRecord{
		CaseID:       "case-0042",
		FileName:     "putusan_42.txt",
		NoPerkara:    "42/Pid.B/2022/PN Bdg",
		JenisPerkara: "pencurian",
		Pasal:        "Pasal 362",
	}

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "case:case-0042", rec, time.Minute))

		var got legalcase.CaseRecord
		require.NoError(t, cache.Get(ctx, "case:case-0042", &got))
		assert.Equal(t, rec, got)
	})

	t.Run("miss on absent key", func(t *testing.T) {
		var got legalcase.CaseRecord
		err := cache.Get(ctx, "case:absent", &got)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("get or set runs loader once", func(t *testing.T) {
		calls := 0
		loader := func(ctx context.Context) (interface{}, error) {
			calls++
			return rec, nil
		}

		var first legalcase.CaseRecord
		require.NoError(t, cache.GetOrSet(ctx, "case:loaded", &first, time.Minute, loader))
		var second legalcase.CaseRecord
		require.NoError(t, cache.GetOrSet(ctx, "case:loaded", &second, time.Minute, loader))

		assert.Equal(t, 1, calls)
		assert.Equal(t, rec, first)
		assert.Equal(t, rec, second)
	})

	t.Run("delete removes key", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "case:gone", rec, time.Minute))
		require.NoError(t, cache.Delete(ctx, "case:gone"))

		exists, err := cache.Exists(ctx, "case:gone")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
