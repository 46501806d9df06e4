package pipeline

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
)

// Pipeline 是 tripkit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 每次 Run 都是纯计算：输入 (rctx, items)，输出新的 items，不修改共享状态。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
