package recall

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/pkg/utils"
	"github.com/chungjuroad/tripkit/similarity"
)

// ParamItemID 是 rctx.Params 中物品相似查询目标目的地的 key。
const ParamItemID = "item_id"

// SimilarItems 是物品相似召回源（i2i）："看了这个目的地，还可能喜欢哪里"。
//
// 语义：
//  1. 取目标目的地在相似度矩阵中的整行（排除自身）
//  2. 按相似度降序排列，分数相同按 ID 升序（确定性排序约定）
//  3. 截取 TopK
//
// 目标不在矩阵中时返回空结果而不是错误——目录持续演进，
// 未知 ID 是正常的稳态输入。
type SimilarItems struct {
	Matrix *similarity.Matrix

	// ItemID 目标目的地；为空时从 rctx.Params["item_id"] 获取
	ItemID string

	// TopK 最终返回的目的地数量；<= 0 表示不截断（交给 rerank.TopN）
	TopK int
}

func (r *SimilarItems) Name() string        { return "recall.similar" }
func (r *SimilarItems) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *SimilarItems) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *SimilarItems) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Matrix == nil {
		return nil, nil
	}

	target := r.ItemID
	if target == "" {
		target = rctx.ParamString(ParamItemID)
	}
	if target == "" {
		return nil, nil
	}

	// Neighbors 已排除目标自身并完成确定性排序；未知目标返回 nil
	neighbors := r.Matrix.Neighbors(target)
	if len(neighbors) == 0 {
		return nil, nil
	}

	if r.TopK > 0 && len(neighbors) > r.TopK {
		neighbors = neighbors[:r.TopK]
	}

	out := make([]*core.Item, 0, len(neighbors))
	for _, nb := range neighbors {
		it := core.NewItem(nb.ItemID)
		it.Score = nb.Score
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		it.PutLabel("similar_to", utils.Label{Value: target, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
