package filter

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
)

// Blacklist 是黑名单过滤器，过滤掉运营下线的目的地（歇业、封闭施工等）。
type Blacklist struct {
	// ItemIDs 是内存中的黑名单目的地 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单目的地 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklist 创建一个黑名单过滤器。
func NewBlacklist(itemIDs []string, store BlacklistStore, key string) *Blacklist {
	return &Blacklist{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *Blacklist) Name() string {
	return "filter.blacklist"
}

func (f *Blacklist) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err == nil {
			for _, id := range blacklist {
				if item.ID == id {
					return true, nil
				}
			}
		}
	}

	return false, nil
}
