// Package engine 把评分数据、目的地目录和相似度矩阵组装成一个可查询的
// 推荐引擎。矩阵在构造时一次性建好，之后所有查询都是只读的；评分数据
// 更新时通过 Swap 整体重建并原子替换。
package engine

import (
	"context"
	"sync"

	"github.com/chungjuroad/tripkit/catalog"
	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/feature"
	"github.com/chungjuroad/tripkit/filter"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/recall"
	"github.com/chungjuroad/tripkit/rerank"
	"github.com/chungjuroad/tripkit/similarity"
)

// DefaultTopK 是查询未指定 topK 时的默认返回数量。
const DefaultTopK = 5

// Engine 是推荐引擎门面，提供两种查询：
//   - SimilarPlaces：物品相似（"喜欢 A 的人还喜欢哪里"）
//   - RecommendForUser：个性化推荐（基于用户的喜爱目的地）
//
// 并发安全：查询可以并发进行，Swap 重建矩阵时用写锁隔离。
type Engine struct {
	mu      sync.RWMutex
	ratings core.RatingStore
	matrix  *similarity.Matrix

	// Catalog 目的地元数据目录（可选）；存在时查询结果自动补元数据
	Catalog *catalog.Catalog

	// Provider 在线特征服务（可选）
	Provider feature.Provider
}

// Option 配置 Engine 的可选项。
type Option func(*Engine)

// WithCatalog 设置目的地目录，查询结果会带上 title/description/category。
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.Catalog = c }
}

// WithProvider 设置在线特征服务。
func WithProvider(p feature.Provider) Option {
	return func(e *Engine) { e.Provider = p }
}

// New 创建引擎并立刻构建相似度矩阵。
// 矩阵构建是整个引擎的主要开销，放在启动期一次完成。
func New(ctx context.Context, ratings core.RatingStore, opts ...Option) (*Engine, error) {
	m, err := similarity.Build(ctx, ratings)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		ratings: ratings,
		matrix:  m,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Matrix 返回当前相似度矩阵（只读）。
func (e *Engine) Matrix() *similarity.Matrix {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matrix
}

// Swap 用新的评分数据整体重建矩阵并原子替换。
// 构建在锁外进行，替换瞬间才加写锁，查询几乎不受影响。
func (e *Engine) Swap(ctx context.Context, ratings core.RatingStore) error {
	m, err := similarity.Build(ctx, ratings)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.ratings = ratings
	e.matrix = m
	e.mu.Unlock()
	return nil
}

// SimilarPlaces 返回与目标目的地最相似的 topK 个目的地。
// 目标不在矩阵中时返回空结果而不是错误。topK <= 0 时使用 DefaultTopK。
func (e *Engine) SimilarPlaces(ctx context.Context, itemID string, topK int) ([]*core.Item, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	e.mu.RLock()
	m := e.matrix
	e.mu.RUnlock()

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.SimilarItems{Matrix: m, ItemID: itemID},
			e.enrichNode(),
			&rerank.TopN{N: topK},
		},
	}
	rctx := &core.RecommendContext{
		Scene:  "similar",
		Params: map[string]any{recall.ParamItemID: itemID},
	}
	return p.Run(ctx, rctx, nil)
}

// RecommendForUser 基于用户的喜爱目的地（评分 ≥ recall.FavoriteThreshold）
// 做个性化推荐。用户没有评分或没有喜爱目的地时返回空结果。
// 已评分过的目的地绝不会出现在结果里。
func (e *Engine) RecommendForUser(ctx context.Context, userID string, topK int) ([]*core.Item, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	e.mu.RLock()
	m := e.matrix
	ratings := e.ratings
	e.mu.RUnlock()

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Favorites{Ratings: ratings, Matrix: m},
			// Favorites 自身已剔除已评分目的地；这里再挂一道过滤，
			// 让多路召回（后续接入 hot 等）时约束仍然成立
			&filter.Node{Filters: []filter.Filter{
				&filter.Rated{Ratings: ratings},
			}},
			e.enrichNode(),
			&rerank.TopN{N: topK},
		},
	}
	rctx := &core.RecommendContext{
		UserID: userID,
		Scene:  "recommend",
	}
	return p.Run(ctx, rctx, nil)
}

// Run 用引擎的数据执行一条自定义 Pipeline，供需要精细控制节点链的调用方使用。
func (e *Engine) Run(ctx context.Context, rctx *core.RecommendContext, p *pipeline.Pipeline) ([]*core.Item, error) {
	return p.Run(ctx, rctx, nil)
}

// Lookup 把一组目的地 ID 解析成目录元数据，保持输入顺序，未知 ID 跳过。
func (e *Engine) Lookup(ids []string) []catalog.Place {
	if e.Catalog == nil {
		return nil
	}
	return e.Catalog.ResolveAll(ids)
}

func (e *Engine) enrichNode() pipeline.Node {
	return &feature.Enrich{
		Catalog:  e.Catalog,
		Provider: e.Provider,
	}
}
