package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/redis/go-redis/v9"

	"github.com/chungjuroad/tripkit/filter"
)

// RedisBloomFilterChecker 是基于 Redis 和 bits-and-blooms/bloom 的布隆过滤器检查器。
// 实现了 filter.BloomFilterChecker 接口，用于曝光过滤器的快速预检：
// 布隆过滤器答"一定没看过"或"可能看过"，可能看过再去查明细。
//
// 使用方式：
//
//	checker := store.NewRedisBloomFilterChecker(redisStore, 100000, 0.01)
//	adapter := filter.NewStoreAdapterWithBloomFilter(redisStore, checker)
//	visited := &filter.Visited{Store: adapter, BloomDayWindow: 30}
var _ filter.BloomFilterChecker = (*RedisBloomFilterChecker)(nil)

type RedisBloomFilterChecker struct {
	client *redis.Client

	// capacity 是预期容量（元素数量）
	capacity uint
	// falsePositiveRate 是期望的误判率（例如 0.01 表示 1%）
	falsePositiveRate float64

	// 本地缓存，避免频繁从 Redis 读取和反序列化
	cache map[string]*bloom.BloomFilter
	mu    sync.RWMutex
}

// NewRedisBloomFilterChecker 创建布隆过滤器检查器。
//
// 参数：
//   - store: RedisStore 实例
//   - capacity: 预期容量，例如 100000 表示预期存储 10 万个目的地曝光
//   - falsePositiveRate: 期望误判率，例如 0.01 表示 1%
func NewRedisBloomFilterChecker(store *RedisStore, capacity uint, falsePositiveRate float64) *RedisBloomFilterChecker {
	return &RedisBloomFilterChecker{
		client:            store.client,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
		cache:             make(map[string]*bloom.BloomFilter),
	}
}

// NewRedisBloomFilterCheckerWithClient 使用已有的 *redis.Client 创建检查器（高级用法）。
func NewRedisBloomFilterCheckerWithClient(client *redis.Client, capacity uint, falsePositiveRate float64) *RedisBloomFilterChecker {
	return &RedisBloomFilterChecker{
		client:            client,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
		cache:             make(map[string]*bloom.BloomFilter),
	}
}

// CheckInBloomFilter 检查 itemID 是否在指定 key 的布隆过滤器中。
// 返回 true 表示可能存在（有误判可能），false 表示一定不存在。
// key 格式为 {keyPrefix}:bloom:{userID}:{date}，由 filter.StoreAdapter 拼接。
func (r *RedisBloomFilterChecker) CheckInBloomFilter(ctx context.Context, key string, itemID string) (bool, error) {
	bf, err := r.load(ctx, key)
	if err != nil {
		return false, err
	}
	if bf == nil {
		// 布隆过滤器不存在，一定不在
		return false, nil
	}
	return bf.Test([]byte(itemID)), nil
}

// AddToBloomFilter 将 itemID 添加到指定 key 的布隆过滤器中。
// 用于曝光数据收集侧（例如 Kafka 消费者把当日曝光写进当日的布隆过滤器）。
// ttl 单位为秒，0 表示不过期。
func (r *RedisBloomFilterChecker) AddToBloomFilter(ctx context.Context, key string, itemID string, ttl int) error {
	return r.BatchAddToBloomFilter(ctx, key, []string{itemID}, ttl)
}

// BatchAddToBloomFilter 批量将 itemIDs 添加到指定 key 的布隆过滤器中。
func (r *RedisBloomFilterChecker) BatchAddToBloomFilter(ctx context.Context, key string, itemIDs []string, ttl int) error {
	bf, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	if bf == nil {
		bf = bloom.NewWithEstimates(r.capacity, r.falsePositiveRate)
	}

	for _, itemID := range itemIDs {
		bf.Add([]byte(itemID))
	}

	var buf bytes.Buffer
	if _, err := bf.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize bloom filter: %w", err)
	}

	var expiration time.Duration
	if ttl > 0 {
		expiration = time.Duration(ttl) * time.Second
	}
	if err := r.client.Set(ctx, key, buf.Bytes(), expiration).Err(); err != nil {
		return fmt.Errorf("failed to save bloom filter to redis: %w", err)
	}

	r.mu.Lock()
	r.cache[key] = bf
	r.mu.Unlock()
	return nil
}

// load 返回 key 对应的布隆过滤器；不存在时返回 (nil, nil)。
// 优先走本地缓存，未命中再从 Redis 读取并反序列化。
func (r *RedisBloomFilterChecker) load(ctx context.Context, key string) (*bloom.BloomFilter, error) {
	r.mu.RLock()
	cached, exists := r.cache[key]
	r.mu.RUnlock()
	if exists && cached != nil {
		return cached, nil
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bloom filter from redis: %w", err)
	}

	bf := bloom.NewWithEstimates(r.capacity, r.falsePositiveRate)
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to deserialize bloom filter: %w", err)
	}

	r.mu.Lock()
	r.cache[key] = bf
	r.mu.Unlock()
	return bf, nil
}

// ClearCache 清除本地缓存，强制下次从 Redis 重新加载。
func (r *RedisBloomFilterChecker) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*bloom.BloomFilter)
}
