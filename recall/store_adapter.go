package recall

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/dataset"
)

// StoreRatingAdapter 把 core.Store（Redis/内存）适配成 core.RatingStore，
// 让相似度构建和个性化召回可以直接读线上评分数据，而不只限于 CSV 快照。
//
// 存储布局（JSON 值）：
//   用户评分：{KeyPrefix}:user:{userID} -> map[itemID]rating
//   目的地评分：{KeyPrefix}:item:{itemID} -> map[userID]rating
//   全部用户：{KeyPrefix}:users -> []userID
//   全部目的地：{KeyPrefix}:items -> []itemID
type StoreRatingAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewStoreRatingAdapter 创建一个基于 core.Store 的评分数据适配器。
func NewStoreRatingAdapter(s core.Store, keyPrefix string) *StoreRatingAdapter {
	if keyPrefix == "" {
		keyPrefix = "rating"
	}
	return &StoreRatingAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreRatingAdapter) Name() string { return "store_rating_adapter" }

func (a *StoreRatingAdapter) UserRatings(ctx context.Context, userID string) (map[string]float64, error) {
	return a.getRatings(ctx, a.KeyPrefix+":user:"+userID)
}

func (a *StoreRatingAdapter) ItemRatings(ctx context.Context, itemID string) (map[string]float64, error) {
	return a.getRatings(ctx, a.KeyPrefix+":item:"+itemID)
}

func (a *StoreRatingAdapter) getRatings(ctx context.Context, key string) (map[string]float64, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			// 未知用户/目的地是稳态输入，返回空而不是错误
			return make(map[string]float64), nil
		}
		return nil, err
	}

	var result map[string]float64
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *StoreRatingAdapter) AllUsers(ctx context.Context) ([]string, error) {
	return a.getIDs(ctx, a.KeyPrefix+":users")
}

func (a *StoreRatingAdapter) AllItems(ctx context.Context) ([]string, error) {
	return a.getIDs(ctx, a.KeyPrefix+":items")
}

func (a *StoreRatingAdapter) getIDs(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	// RatingStore 约定升序（矩阵轴的稳定顺序依赖它）
	sort.Strings(result)
	return result, nil
}

var _ core.RatingStore = (*StoreRatingAdapter)(nil)

// SeedRatings 把一批评分记录写入 Store（按适配器的存储布局）。
// 用于测试、开发环境灌数据，以及离线任务把 CSV 快照同步到线上存储。
func SeedRatings(ctx context.Context, adapter *StoreRatingAdapter, records []dataset.Record) error {
	userItems := make(map[string]map[string]float64)
	itemUsers := make(map[string]map[string]float64)

	for _, rec := range records {
		if userItems[rec.UserID] == nil {
			userItems[rec.UserID] = make(map[string]float64)
		}
		userItems[rec.UserID][rec.ItemID] = rec.Rating

		if itemUsers[rec.ItemID] == nil {
			itemUsers[rec.ItemID] = make(map[string]float64)
		}
		itemUsers[rec.ItemID][rec.UserID] = rec.Rating
	}

	for userID, ratings := range userItems {
		if err := putJSON(ctx, adapter.store, adapter.KeyPrefix+":user:"+userID, ratings); err != nil {
			return err
		}
	}
	for itemID, ratings := range itemUsers {
		if err := putJSON(ctx, adapter.store, adapter.KeyPrefix+":item:"+itemID, ratings); err != nil {
			return err
		}
	}

	users := make([]string, 0, len(userItems))
	for userID := range userItems {
		users = append(users, userID)
	}
	sort.Strings(users)
	if err := putJSON(ctx, adapter.store, adapter.KeyPrefix+":users", users); err != nil {
		return err
	}

	items := make([]string, 0, len(itemUsers))
	for itemID := range itemUsers {
		items = append(items, itemID)
	}
	sort.Strings(items)
	return putJSON(ctx, adapter.store, adapter.KeyPrefix+":items", items)
}

func putJSON(ctx context.Context, s core.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
