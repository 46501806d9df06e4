package core

import "context"

// RatingStore 是评分数据（user → item → rating）的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由数据集层/存储层实现
//   - 相似度构建与两种查询模式都只依赖这个接口，数据来源可替换
//
// 实现：
//   - dataset.Table：一次性从 CSV 加载的内存评分表（进程生命周期内只读）
//   - recall.StoreRatingAdapter：基于 core.Store（Redis 等）的评分读取
//
// 约定：
//   - 同一 (user, item) 至多一条评分；重复写入属于未定义行为，实现按"后写覆盖"处理
//   - 未知 user / item 返回空 map / 空 slice，不返回 error
type RatingStore interface {
	// Name 返回数据源名称（用于日志/监控）
	Name() string

	// UserRatings 返回某用户的全部评分，map[itemID]rating
	UserRatings(ctx context.Context, userID string) (map[string]float64, error)

	// ItemRatings 返回某目的地收到的全部评分，map[userID]rating
	ItemRatings(ctx context.Context, itemID string) (map[string]float64, error)

	// AllUsers 返回去重后的全部用户 ID，升序（矩阵列轴的稳定顺序依赖它）
	AllUsers(ctx context.Context) ([]string, error)

	// AllItems 返回去重后的全部目的地 ID，升序（矩阵行轴的稳定顺序依赖它）
	AllItems(ctx context.Context) ([]string, error)
}
