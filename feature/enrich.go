package feature

import (
	"context"

	"github.com/chungjuroad/tripkit/catalog"
	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/pkg/utils"
)

// Enrich 是特征注入节点（PostProcess）：给每个候选目的地补齐展示和排序所需的信息。
//
// 注入内容：
//   - Catalog：title/description 写进 Meta，category 同时写 Meta 和 Label
//     （Label 供 filter.Rule / rerank.Diversity 使用）
//   - Provider：在线数值特征写进 Meta（带 FeaturePrefix 前缀）
//
// 候选不在 Catalog 中时只跳过元数据注入，不报错、不丢弃候选。
// Provider 出错时降级为纯元数据注入（在线特征是锦上添花，不能让它拖垮推荐）。
type Enrich struct {
	// Catalog 目的地元数据目录（可选）
	Catalog *catalog.Catalog

	// Provider 在线特征服务（可选）
	Provider Provider

	// FeaturePrefix 在线特征写入 Meta 时的前缀，默认 "feature_"
	FeaturePrefix string
}

func (n *Enrich) Name() string {
	return "feature.enrich"
}

func (n *Enrich) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *Enrich) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	// 批量获取在线特征（一次网络往返）
	var online map[string]map[string]float64
	if n.Provider != nil {
		itemIDs := make([]string, 0, len(items))
		for _, it := range items {
			if it != nil {
				itemIDs = append(itemIDs, it.ID)
			}
		}
		if len(itemIDs) > 0 {
			online, _ = n.Provider.BatchItemFeatures(ctx, itemIDs)
		}
	}

	prefix := n.FeaturePrefix
	if prefix == "" {
		prefix = "feature_"
	}

	for _, it := range items {
		if it == nil {
			continue
		}

		if n.Catalog != nil {
			if place, ok := n.Catalog.Resolve(it.ID); ok {
				it.PutMeta("title", place.Title)
				it.PutMeta("description", place.Description)
			}
			if cate, ok := n.Catalog.CategoryOf(it.ID); ok {
				it.PutMeta("category", cate)
				it.PutLabel("category", utils.Label{Value: cate, Source: "catalog"})
			}
		}

		if features, ok := online[it.ID]; ok {
			for k, v := range features {
				it.PutMeta(prefix+k, v)
			}
		}
	}

	return items, nil
}
