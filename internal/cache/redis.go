// Package cache provides the Redis-backed query cache. Keys are namespaced
// per owner and per query-shape partition so mutations can invalidate exactly
// the shapes they reshape.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/usecase"
)

const keyPrefix = "qc"

type redisCache struct {
	client *redislib.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisQueryCache builds a usecase.QueryCache on top of Redis.
func NewRedisQueryCache(client *redislib.Client, ttl time.Duration, logger *zap.Logger) usecase.QueryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisCache) Get(ctx context.Context, userID string, partition usecase.CachePartition, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, Key(userID, partition, key)).Result()
	if err != nil {
		if err == redislib.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A payload that no longer unmarshals is treated as a miss.
		c.logger.Warn("discarding undecodable cache entry",
			zap.String("partition", string(partition)), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, userID string, partition usecase.CachePartition, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(userID, partition, key), payload, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, userID string, partitions ...usecase.CachePartition) error {
	for _, partition := range partitions {
		iter := c.client.Scan(ctx, 0, PartitionPattern(userID, partition), 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Key builds the cache key for one cached query result.
func Key(userID string, partition usecase.CachePartition, key string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, userID, partition, key)
}

// PartitionPattern is the SCAN glob matching every key of a partition.
func PartitionPattern(userID string, partition usecase.CachePartition) string {
	return fmt.Sprintf("%s:%s:%s:*", keyPrefix, userID, partition)
}
