package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// FeastProvider 是基于官方 Feast Go SDK 的在线特征服务实现。
//
// 设计原则（DDD）：
//   - 领域层：Provider 接口（provider.go）
//   - 基础设施层：FeastProvider 实现 Provider 接口
//
// 使用场景：
//   - 实时热度/点击率等在线特征，喂给 feature.Enrich 注入候选
//
// 示例：
//
//	provider, err := feature.NewFeastProvider("localhost", 6565, "tripkit",
//	    "place_id", []string{"place_stats:ctr", "place_stats:heat"})
type FeastProvider struct {
	client *feastsdk.GrpcClient

	// Project Feast 项目名称
	Project string

	// EntityName 实体名，例如 "place_id"
	EntityName string

	// Features 要获取的特征列表，格式 "feature_table:feature"
	Features []string
}

// NewFeastProvider 创建 Feast 在线特征服务客户端。
// port 为 0 时使用默认 gRPC 端口 6565。
func NewFeastProvider(host string, port int, project, entityName string, features []string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565
	}
	if project == "" {
		return nil, fmt.Errorf("feast: project is required")
	}
	if entityName == "" {
		return nil, fmt.Errorf("feast: entity name is required")
	}

	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast: create grpc client: %w", err)
	}

	return &FeastProvider{
		client:     client,
		Project:    project,
		EntityName: entityName,
		Features:   features,
	}, nil
}

func (p *FeastProvider) Name() string {
	return "feature.feast"
}

// BatchItemFeatures 批量获取目的地的在线特征。
// 空 itemIDs 或空特征列表直接返回空结果，不发请求。
func (p *FeastProvider) BatchItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	if len(itemIDs) == 0 || len(p.Features) == 0 {
		return map[string]map[string]float64{}, nil
	}

	entityRows := make([]feastsdk.Row, len(itemIDs))
	for i, id := range itemIDs {
		entityRows[i] = feastsdk.Row{
			p.EntityName: feastsdk.StrVal(id),
		}
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: p.Features,
		Entities: entityRows,
		Project:  p.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(itemIDs) {
		return nil, fmt.Errorf("feast: response row count mismatch: expected %d, got %d", len(itemIDs), len(rows))
	}

	result := make(map[string]map[string]float64, len(itemIDs))
	for i, row := range rows {
		features := make(map[string]float64, len(p.Features))
		for _, name := range p.Features {
			val, ok := row[name]
			if !ok {
				continue
			}
			if f, ok := valueToFloat64(val); ok {
				features[name] = f
			}
		}
		if len(features) > 0 {
			result[itemIDs[i]] = features
		}
	}
	return result, nil
}

func (p *FeastProvider) Close() error {
	// 官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理
	p.client = nil
	return nil
}

// valueToFloat64 把 Feast 的 protobuf Value 转成数值特征。
// 字符串/字节等非数值类型丢弃（特征注入只处理数值）。
func valueToFloat64(v *feasttypes.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.GetVal().(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if val.BoolVal {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// 确保 FeastProvider 实现了 Provider 接口
var _ Provider = (*FeastProvider)(nil)
