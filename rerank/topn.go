package rerank

import (
	"context"
	"sort"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
)

// TopN 是结果截断节点：先按分数降序（分数相同按 ID 升序）排序，
// 再截取前 N 个候选。排序规则保证同样的输入永远产生同样的输出顺序。
//
// 使用场景：
//   - 召回合并后只返回 Top 5/10/20 个目的地
//   - 配合 Diversity 多样性重排使用
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Fanout{...},
//	        &filter.Node{...},
//	        &rerank.TopN{N: 10},
//	    },
//	}
type TopN struct {
	// N 要保留的候选数量
	// 如果 N <= 0，只排序不截断
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	SortItems(items)

	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

// SortItems 按分数降序排序，分数相同时按 ID 升序。
// 这是全库统一的排序规则，保证结果可复现。
func SortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}
