package filter

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pkg/dsl"
)

// Rule 是规则过滤器：对每个候选执行一条 CEL 表达式，
// 表达式为 true 时过滤掉该候选。
//
// 例如：
//   - `label.category == "전시"` → 过滤掉展览类目的地
//   - `item.score < 0.1` → 过滤掉相似度过低的候选
//   - `label.recall_source == "hot" && rctx.scene == "chat"` → 聊天场景不出热门
type Rule struct {
	// Expr 是 CEL 表达式；为空时不过滤任何候选
	Expr string
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}

	matched, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		// 表达式错误时保留候选，由 Node 层记录
		return false, err
	}
	return matched, nil
}
