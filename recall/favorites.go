package recall

import (
	"context"
	"sort"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/pkg/utils"
	"github.com/chungjuroad/tripkit/similarity"
)

// FavoriteThreshold 是"喜爱"的固定评分阈值：评分 ≥ 4.0 的目的地视为该
// 用户的喜爱目的地。设计常量，不随请求配置；没有达到阈值的评分时引擎
// 不会降级到更低阈值。
const FavoriteThreshold = 4.0

// Favorites 是基于用户评分历史的个性化召回源（u2i）。
//
// 算法流程：
//  1. 取用户全部评分；没有任何评分 → 空结果
//  2. 筛出评分 ≥ FavoriteThreshold 的喜爱目的地；一个都没有 → 空结果
//  3. 对每个在矩阵中的喜爱目的地，取其相似度整行（排除自身），把每个
//     候选的相似度累加进总分——与多个喜爱目的地相似的候选会累积多份
//     贡献，求和而不取平均是刻意的，奖励"广泛相关"
//  4. 剔除用户已评分过的全部目的地（无论分数高低），绝不重复推荐
//  5. 按累计分降序、ID 升序排列，截取 TopK；候选不足时有多少返回多少
type Favorites struct {
	Ratings core.RatingStore
	Matrix  *similarity.Matrix

	// TopK 最终返回的目的地数量；<= 0 表示不截断（交给 rerank.TopN）
	TopK int
}

func (r *Favorites) Name() string        { return "recall.favorites" }
func (r *Favorites) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Favorites) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Favorites) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Ratings == nil || r.Matrix == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	userRatings, err := r.Ratings.UserRatings(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(userRatings) == 0 {
		return nil, nil
	}

	favorites := make([]string, 0, len(userRatings))
	for itemID, rating := range userRatings {
		if rating >= FavoriteThreshold {
			favorites = append(favorites, itemID)
		}
	}
	if len(favorites) == 0 {
		return nil, nil
	}
	// 固定累加顺序，浮点求和结果跨运行可复现
	sort.Strings(favorites)

	// 累计每个候选与各喜爱目的地的相似度
	scores := make(map[string]float64)
	for _, fav := range favorites {
		for _, nb := range r.Matrix.Neighbors(fav) {
			scores[nb.ItemID] += nb.Score
		}
	}

	// 已评分过的目的地一律剔除
	for rated := range userRatings {
		delete(scores, rated)
	}
	if len(scores) == 0 {
		return nil, nil
	}

	candidates := make([]similarity.Scored, 0, len(scores))
	for itemID, score := range scores {
		candidates = append(candidates, similarity.Scored{ItemID: itemID, Score: score})
	}
	similarity.SortScored(candidates)

	if r.TopK > 0 && len(candidates) > r.TopK {
		candidates = candidates[:r.TopK]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := core.NewItem(c.ItemID)
		it.Score = c.Score
		it.PutLabel("recall_source", utils.Label{Value: "favorites", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
