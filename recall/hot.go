package recall

import (
	"context"
	"encoding/json"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/pkg/utils"
)

// Hot 是热门目的地召回源，用于冷启动用户（没有评分历史、也没有喜爱
// 目的地的用户个性化查询返回空，由外层决定是否回退到热门榜）。
//
// 数据来源优先级：
//   - Store 实现了 KeyValueStore 时用 ZRange 读热度榜（按分数降序）
//   - 否则从普通 key 读 JSON 数组
//   - Store 为空或读取失败时回退到内存中的 IDs
type Hot struct {
	Store core.Store
	Key   string   // 存储 key，例如 "hot:destinations"
	IDs   []string // fallback 内存列表
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var ids []string

	if r.Store != nil && r.Key != "" {
		if kvStore, ok := r.Store.(core.KeyValueStore); ok {
			// 有序集合：ZRange 取榜单前 100
			members, err := kvStore.ZRange(ctx, r.Key, 0, 99)
			if err == nil && len(members) > 0 {
				ids = members
			}
		} else {
			// 普通 key：读取 JSON 数组
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []string
				if json.Unmarshal(data, &parsed) == nil {
					ids = parsed
				}
			}
		}
	}

	if len(ids) == 0 {
		ids = r.IDs
	}
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
