package usecase

import "context"

// CachePartition names one cached query shape. Mutations invalidate whole
// partitions, never individual keys, so a stale entry can only survive until
// the next write touching its shape.
type CachePartition string

const (
	CacheToday  CachePartition = "today"
	CacheDate   CachePartition = "date"
	CacheSearch CachePartition = "search"
	CacheMonth  CachePartition = "month"
	CacheAll    CachePartition = "all"
)

// TaskCachePartitions is every partition a task mutation can touch. Schedule,
// status and order changes all reshape the day views, search results and the
// monthly rollup, so task writes drop all of them for the owner.
var TaskCachePartitions = []CachePartition{CacheToday, CacheDate, CacheSearch, CacheMonth, CacheAll}

// QueryCache is the explicit read-cache for task query results, scoped per
// owner and partitioned per query shape. A nil-safe no-op implementation is
// acceptable; use cases treat cache errors as misses.
type QueryCache interface {
	// Get unmarshals the cached value for (userID, partition, key) into dest,
	// reporting whether a value was present.
	Get(ctx context.Context, userID string, partition CachePartition, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, userID string, partition CachePartition, key string, value interface{}) error
	// Invalidate drops every key of the named partitions for the user.
	Invalidate(ctx context.Context, userID string, partitions ...CachePartition) error
}
