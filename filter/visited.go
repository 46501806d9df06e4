package filter

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
)

// Visited 是已展示过滤器，过滤掉近期已经展示给用户的目的地，
// 避免推荐栏目反复出现同一批地方。
//
// 支持两种数据源：
//  1. IDs 列表集合（近期数据）- 通过 GetVisitedItems 获取
//  2. 布隆过滤器（较长周期数据，按天维度实现时间窗口）- 通过 CheckVisitedInBloomFilter 检查
type Visited struct {
	// Store 用于从存储中读取用户展示历史
	Store VisitedStore

	// KeyPrefix 是 Store 中的 key 前缀
	// 对于 IDs 列表：实际 key 为 {KeyPrefix}:{UserID}
	// 对于布隆过滤器：实际 key 为 {KeyPrefix}:bloom:{UserID}:{date}
	KeyPrefix string

	// TimeWindow 是展示历史时间窗口（秒），用于 IDs 列表集合（近期数据）
	TimeWindow int64

	// BloomDayWindow 是布隆过滤器的时间窗口（天数），用于较长周期数据
	// 如果为 0，则不使用布隆过滤器
	BloomDayWindow int
}

// VisitedStore 是展示历史存储接口。
type VisitedStore interface {
	// GetVisitedItems 获取用户在指定时间窗口内已展示的目的地 ID 列表（近期数据）
	GetVisitedItems(ctx context.Context, userID string, keyPrefix string, timeWindow int64) ([]string, error)

	// CheckVisitedInBloomFilter 检查目的地是否在布隆过滤器中（较长周期数据，按天维度）
	// 返回 true 表示可能在布隆过滤器中（存在误判可能），false 表示一定不在
	CheckVisitedInBloomFilter(ctx context.Context, userID string, itemID string, keyPrefix string, dayWindow int) (bool, error)
}

func (f *Visited) Name() string {
	return "filter.visited"
}

func (f *Visited) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	if f.Store == nil {
		return false, nil
	}

	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:visited"
	}

	// 1. 检查 IDs 列表集合（近期数据）
	if f.TimeWindow > 0 {
		visited, err := f.Store.GetVisitedItems(ctx, rctx.UserID, keyPrefix, f.TimeWindow)
		if err == nil {
			for _, id := range visited {
				if item.ID == id {
					return true, nil
				}
			}
		}
		// 列表检查失败时继续检查布隆过滤器
	}

	// 2. 检查布隆过滤器（较长周期数据，按天维度）
	if f.BloomDayWindow > 0 {
		exists, err := f.Store.CheckVisitedInBloomFilter(ctx, rctx.UserID, item.ID, keyPrefix, f.BloomDayWindow)
		if err == nil && exists {
			// 布隆过滤器可能误判，为安全起见视为已展示
			return true, nil
		}
	}

	return false, nil
}
