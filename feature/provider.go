// Package feature 提供候选目的地的特征注入。
//
// 两个来源：
//   - catalog：目的地元数据（标题/描述/类别），离线 JSON 文件
//   - Provider：在线特征服务（如 Feast），实时热度/CTR 等
package feature

import (
	"context"
)

// Provider 是在线特征服务的领域接口。
// 批量获取一组目的地的数值特征，返回 itemID -> 特征名 -> 特征值。
// 未返回的 itemID 表示该目的地没有在线特征（不是错误）。
type Provider interface {
	// Name 返回特征服务名称（用于日志/监控）
	Name() string

	// BatchItemFeatures 批量获取目的地特征
	BatchItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error)

	// Close 关闭连接/释放资源
	Close() error
}
