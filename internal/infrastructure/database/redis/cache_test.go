package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

type CacheSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientFromRedis(db, logging.NewNopLogger())
	// Zero default TTL keeps Set expirations deterministic under the mock.
	s.cache = NewCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithDefaultTTL(0))
}

func (s *CacheSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedVector struct {
	ID     string    `json:"id"`
	Values []float32 `json:"values"`
}

func (s *CacheSuite) TestGetHit() {
	want := cachedVector{ID: "c1", Values: []float32{0.1, 0.2}}
	data, _ := json.Marshal(want)
	s.mock.ExpectGet("test:embedding:c1").SetVal(string(data))

	var got cachedVector
	err := s.cache.Get(context.Background(), "embedding:c1", &got)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), want, got)
}

func (s *CacheSuite) TestGetMiss() {
	s.mock.ExpectGet("test:missing").RedisNil()

	var got cachedVector
	err := s.cache.Get(context.Background(), "missing", &got)

	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *CacheSuite) TestGetNullMarkerTreatedAsMiss() {
	s.mock.ExpectGet("test:absent").SetVal(nullMarker)

	var got cachedVector
	err := s.cache.Get(context.Background(), "absent", &got)

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheSuite) TestSetWithoutExpiry() {
	want := cachedVector{ID: "c2", Values: []float32{1}}
	data, _ := json.Marshal(want)
	s.mock.ExpectSet("test:embedding:c2", data, 0).SetVal("OK")

	err := s.cache.Set(context.Background(), "embedding:c2", want, 0)
	assert.NoError(s.T(), err)
}

func (s *CacheSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	err := s.cache.Delete(context.Background(), "k1", "k2")
	assert.NoError(s.T(), err)
}

func (s *CacheSuite) TestDeleteNoKeys() {
	err := s.cache.Delete(context.Background())
	assert.NoError(s.T(), err)
}

func (s *CacheSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	ok, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *CacheSuite) TestGetOrSetHitSkipsLoader() {
	want := cachedVector{ID: "c3", Values: []float32{0.5}}
	data, _ := json.Marshal(want)
	s.mock.ExpectGet("test:k3").SetVal(string(data))

	loaderCalled := false
	var got cachedVector
	err := s.cache.GetOrSet(context.Background(), "k3", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		loaderCalled = true
		return nil, nil
	})

	assert.NoError(s.T(), err)
	assert.False(s.T(), loaderCalled)
	assert.Equal(s.T(), want, got)
}

func (s *CacheSuite) TestGetOrSetMissRunsLoader() {
	want := cachedVector{ID: "c4", Values: []float32{0.7}}
	data, _ := json.Marshal(want)
	s.mock.ExpectGet("test:k4").RedisNil()
	s.mock.ExpectSet("test:k4", data, 0).SetVal("OK")

	var got cachedVector
	err := s.cache.GetOrSet(context.Background(), "k4", &got, 0, func(ctx context.Context) (interface{}, error) {
		return want, nil
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), want, got)
}

func (s *CacheSuite) TestGetOrSetNegativeCachesLoaderMiss() {
	s.mock.ExpectGet("test:k5").RedisNil()
	s.mock.ExpectSet("test:k5", nullMarker, time.Minute).SetVal("OK")

	var got cachedVector
	err := s.cache.GetOrSet(context.Background(), "k5", &got, 0, func(ctx context.Context) (interface{}, error) {
		return nil, pkgerrors.NotFound("no such vector")
	})

	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}
