package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = NewClientWithRedis(db, logging.NewNopLogger())
	s.cache = NewCache(s.client, logging.NewNopLogger(), WithPrefix("test:"))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

// ignoreTTL matches SET commands on command, key and value only, since the
// cache jitters expirations.
func ignoreTTL(expected, actual []interface{}) error {
	if len(actual) < 3 || len(expected) < 3 {
		return fmt.Errorf("set command too short: %v", actual)
	}
	for i := 0; i < 3; i++ {
		if fmt.Sprint(expected[i]) != fmt.Sprint(actual[i]) {
			return fmt.Errorf("arg %d mismatch: want %v, got %v", i, expected[i], actual[i])
		}
	}
	return nil
}

type cachedProduct struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := cachedProduct{SKU: "SKU-1", Name: "Widget"}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:products:1").SetVal(string(data))

	var dest cachedProduct
	err := s.cache.Get(context.Background(), "products:1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:products:1").RedisNil()

	var dest cachedProduct
	err := s.cache.Get(context.Background(), "products:1", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_NullSentinelIsMiss() {
	s.mock.ExpectGet("test:products:1").SetVal(nullSentinel)

	var dest cachedProduct
	err := s.cache.Get(context.Background(), "products:1", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGet_RedisErrorWrapped() {
	s.mock.ExpectGet("test:products:1").SetErr(errors.New("connection reset"))

	var dest cachedProduct
	err := s.cache.Get(context.Background(), "products:1", &dest)

	assert.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsCode(err, apperrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_Success() {
	val := cachedProduct{SKU: "SKU-1", Name: "Widget"}
	data, _ := json.Marshal(val)

	s.mock.CustomMatch(ignoreTTL).
		ExpectSet("test:products:1", data, time.Minute).SetVal("OK")

	err := s.cache.Set(context.Background(), "products:1", val, time.Minute)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestSet_ZeroTTLUsesDefault() {
	val := cachedProduct{SKU: "SKU-1", Name: "Widget"}
	data, _ := json.Marshal(val)

	s.mock.CustomMatch(ignoreTTL).
		ExpectSet("test:products:1", data, 15*time.Minute).SetVal("OK")

	err := s.cache.Set(context.Background(), "products:1", val, 0)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	err := s.cache.Delete(context.Background(), "k1", "k2")
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestDelete_NoKeysIsNoop() {
	err := s.cache.Delete(context.Background())
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	val := cachedProduct{SKU: "SKU-1", Name: "Widget"}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:products:1").SetVal(string(data))

	var dest cachedProduct
	err := s.cache.GetOrSet(context.Background(), "products:1", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			s.T().Fatal("loader should not run on cache hit")
			return nil, nil
		})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndCaches() {
	val := cachedProduct{SKU: "SKU-1", Name: "Widget"}
	data, _ := json.Marshal(&val)

	s.mock.ExpectGet("test:products:1").RedisNil()
	s.mock.CustomMatch(ignoreTTL).
		ExpectSet("test:products:1", data, time.Minute).SetVal("OK")

	var dest cachedProduct
	err := s.cache.GetOrSet(context.Background(), "products:1", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			return &val, nil
		})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:products:1").RedisNil()

	var dest cachedProduct
	err := s.cache.GetOrSet(context.Background(), "products:1", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("db down")
		})

	assert.EqualError(s.T(), err, "db down")
}

func (s *CacheTestSuite) TestGetOrSet_NilValueNegativeCached() {
	s.mock.ExpectGet("test:products:1").RedisNil()
	s.mock.ExpectSet("test:products:1", nullSentinel, 30*time.Second).SetVal("OK")

	var dest cachedProduct
	err := s.cache.GetOrSet(context.Background(), "products:1", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			return nil, nil
		})

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:products:*", 100).
		SetVal([]string{"test:products:1", "test:products:2"}, 0)
	s.mock.ExpectDel("test:products:1", "test:products:2").SetVal(2)

	deleted, err := s.cache.DeleteByPrefix(context.Background(), "products:")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), deleted)
}

func (s *CacheTestSuite) TestDeleteByPrefix_Empty() {
	s.mock.ExpectScan(0, "test:products:*", 100).SetVal([]string{}, 0)

	deleted, err := s.cache.DeleteByPrefix(context.Background(), "products:")
	assert.NoError(s.T(), err)
	assert.Zero(s.T(), deleted)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
