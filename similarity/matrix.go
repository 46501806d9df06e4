// Package similarity 构建目的地之间的余弦相似度矩阵。
//
// 做法与离线 item-CF 一致：先把评分表 pivot 成 目的地×用户 的稠密矩阵
// （缺失评分填 0.0），再对每一对目的地行向量计算余弦相似度。
//
// "缺失评分 = 0.0" 是刻意保留的建模选择：它与显式的 0 分在数值上无法
// 区分，会把相似度推向共同评分稀疏重叠的一侧。换成均值填充或稀疏点积
// 都会确定性地改变推荐输出，属于行为变更而不是修复。
package similarity

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/chungjuroad/tripkit/core"
)

// Scored 是一个带相似度分数的目的地。
type Scored struct {
	ItemID string
	Score  float64
}

// Matrix 是目的地相似度矩阵：对称方阵，行列都按 ID 升序。
// 构建完成后不可变；评分表变化时整体重建并替换，不存在增量更新。
type Matrix struct {
	items []string       // 升序
	index map[string]int // itemID -> 行号
	sims  [][]float64
}

// Build 从评分数据构建相似度矩阵，O(items² × users)。
// 每个会话只构建一次，之后所有查询复用，这是整个引擎的主要开销所在。
//
// 行向量全为 0（目的地没有任何评分）时，按约定一律相似度 0.0，
// 包括它与自己的对角线，不会触发除零。
func Build(ctx context.Context, ratings core.RatingStore) (*Matrix, error) {
	items, err := ratings.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	users, err := ratings.AllUsers(ctx)
	if err != nil {
		return nil, err
	}

	// RatingStore 约定返回升序，这里仍显式排序以保证矩阵轴的稳定
	items = append([]string(nil), items...)
	users = append([]string(nil), users...)
	sort.Strings(items)
	sort.Strings(users)

	userIndex := make(map[string]int, len(users))
	for i, u := range users {
		userIndex[u] = i
	}

	// pivot：目的地 × 用户 稠密矩阵，缺失评分填 0.0
	vectors := make([][]float64, len(items))
	norms := make([]float64, len(items))
	for i, item := range items {
		row, err := ratings.ItemRatings(ctx, item)
		if err != nil {
			return nil, err
		}
		vec := make([]float64, len(users))
		for user, rating := range row {
			if j, ok := userIndex[user]; ok {
				vec[j] = rating
			}
		}
		vectors[i] = vec

		var sq float64
		for _, v := range vec {
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}

	m := &Matrix{
		items: items,
		index: make(map[string]int, len(items)),
		sims:  make([][]float64, len(items)),
	}
	for i, item := range items {
		m.index[item] = i
		m.sims[i] = make([]float64, len(items))
	}

	// 按行并发计算上三角；每个 goroutine 只写自己的行，避免竞争
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range items {
		i := i
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if norms[i] == 0 {
				return nil // 全零行：整行保持 0.0
			}
			m.sims[i][i] = 1.0
			for j := i + 1; j < len(items); j++ {
				if norms[j] == 0 {
					continue
				}
				var dot float64
				vi, vj := vectors[i], vectors[j]
				for k := range vi {
					dot += vi[k] * vj[k]
				}
				m.sims[i][j] = dot / (norms[i] * norms[j])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 镜像下三角，保证对称
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			m.sims[j][i] = m.sims[i][j]
		}
	}

	return m, nil
}

// Items 返回矩阵覆盖的全部目的地 ID（升序）。
func (m *Matrix) Items() []string {
	return append([]string(nil), m.items...)
}

// Len 返回矩阵维度。
func (m *Matrix) Len() int { return len(m.items) }

// Contains 判断目的地是否在矩阵中。
func (m *Matrix) Contains(itemID string) bool {
	_, ok := m.index[itemID]
	return ok
}

// Sim 返回两个目的地的相似度；任一 ID 未知时返回 (0, false)。
func (m *Matrix) Sim(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.sims[i][j], true
}

// Neighbors 返回目标以外全部目的地及其相似度，按分数降序排列；
// 分数相同时按 ID 升序，保证结果可复现（排序规则是本实现的确定性约定）。
// 未知目的地返回 nil——目录漂移是稳态输入，不是错误。
func (m *Matrix) Neighbors(itemID string) []Scored {
	i, ok := m.index[itemID]
	if !ok {
		return nil
	}

	out := make([]Scored, 0, len(m.items)-1)
	for j, other := range m.items {
		if j == i {
			continue // 自相似（对角线）永不出现在结果里
		}
		out = append(out, Scored{ItemID: other, Score: m.sims[i][j]})
	}
	SortScored(out)
	return out
}

// SortScored 按分数降序、ID 升序排序（全链路统一的确定性排序规则）。
func SortScored(s []Scored) {
	sort.Slice(s, func(a, b int) bool {
		if s[a].Score != s[b].Score {
			return s[a].Score > s[b].Score
		}
		return s[a].ItemID < s[b].ItemID
	})
}
