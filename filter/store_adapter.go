package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chungjuroad/tripkit/core"
)

// BloomFilterChecker 是布隆过滤器检查器接口。
// 具体实现见 ext/store/redis 扩展包（基于 Redis 的布隆过滤器）。
type BloomFilterChecker interface {
	// CheckInBloomFilter 检查 itemID 是否在指定 key 的布隆过滤器中
	// key 格式为 {keyPrefix}:bloom:{userID}:{date}
	// 返回 true 表示可能在布隆过滤器中（存在误判可能），false 表示一定不在
	CheckInBloomFilter(ctx context.Context, key string, itemID string) (bool, error)
}

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口，
// 同时实现 BlacklistStore 与 VisitedStore。
type StoreAdapter struct {
	store core.Store

	// BloomFilterChecker 是可选的布隆过滤器检查器
	// 如果为 nil，CheckVisitedInBloomFilter 恒返回 false
	BloomFilterChecker BloomFilterChecker
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// NewStoreAdapterWithBloomFilter 创建一个带布隆过滤器检查器的适配器。
func NewStoreAdapterWithBloomFilter(s core.Store, checker BloomFilterChecker) *StoreAdapter {
	return &StoreAdapter{
		store:              s,
		BloomFilterChecker: checker,
	}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetVisitedItems 从 Store 读取用户展示历史。
// 值既可以是简单的 ID 数组，也可以是带时间戳的记录数组（按窗口截断）。
func (a *StoreAdapter) GetVisitedItems(ctx context.Context, userID string, keyPrefix string, timeWindow int64) ([]string, error) {
	key := keyPrefix + ":" + userID
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		return ids, nil
	}

	var entries []struct {
		ItemID    string `json:"item_id"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	cutoff := time.Now().Unix() - timeWindow
	ids = make([]string, 0, len(entries))
	for _, e := range entries {
		if timeWindow > 0 && e.Timestamp < cutoff {
			continue
		}
		ids = append(ids, e.ItemID)
	}
	return ids, nil
}

// CheckVisitedInBloomFilter 检查目的地是否在近 dayWindow 天的布隆过滤器中。
// 布隆过滤器的 key 格式：{keyPrefix}:bloom:{userID}:{date}，date 为 YYYYMMDD。
func (a *StoreAdapter) CheckVisitedInBloomFilter(ctx context.Context, userID string, itemID string, keyPrefix string, dayWindow int) (bool, error) {
	if a.BloomFilterChecker == nil || dayWindow <= 0 {
		return false, nil
	}

	now := time.Now()
	for i := 0; i < dayWindow; i++ {
		date := now.AddDate(0, 0, -i).Format("20060102")
		key := fmt.Sprintf("%s:bloom:%s:%s", keyPrefix, userID, date)

		exists, err := a.BloomFilterChecker.CheckInBloomFilter(ctx, key, itemID)
		if err != nil {
			// 某天的检查失败时继续检查其他日期
			continue
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

var (
	_ BlacklistStore = (*StoreAdapter)(nil)
	_ VisitedStore   = (*StoreAdapter)(nil)
)
