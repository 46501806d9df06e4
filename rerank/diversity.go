package rerank

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
)

// Diversity 是多样性重排节点：限制每个类别最多出现 MaxPerCategory 个目的地，
// 避免一页推荐全是同一个类别（比如全是展览）。
// 类别来源优先级：
//   - label["category"].Value（feature.Enrich 写入）
//   - meta["category"] (string)
//
// 没有类别的候选不受限制，原位保留。
type Diversity struct {
	// LabelKey 类别标签名，默认 "category"
	LabelKey string
	// MaxPerCategory 每个类别保留的最大数量，<= 0 时默认为 1（类别去重）
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	max := n.MaxPerCategory
	if max <= 0 {
		max = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				cate = lbl.Value
			}
		}
		if cate == "" && it.Meta != nil {
			if v, ok := it.Meta[key]; ok {
				if s, ok := v.(string); ok {
					cate = s
				}
			}
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= max {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}

	return out, nil
}
