package filter

import (
	"context"

	"github.com/chungjuroad/tripkit/core"
)

// Rated 过滤掉目标用户已经评分过的目的地——无论评分高低。
// 引擎绝不重复推荐用户已经看过/去过的地方；召回层虽然也做了同样的
// 剔除，这里再兜底一次，保证任意 Node 组合下约束都成立。
type Rated struct {
	Ratings core.RatingStore
}

func (f *Rated) Name() string {
	return "filter.rated"
}

func (f *Rated) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Ratings == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	ratings, err := f.Ratings.UserRatings(ctx, rctx.UserID)
	if err != nil {
		return false, err
	}
	_, rated := ratings[item.ID]
	return rated, nil
}
