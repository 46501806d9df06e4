// Package builders 注册内置 Node 的配置构建器。
// 在入口处 import _ "github.com/chungjuroad/tripkit/config/builders" 触发注册。
package builders

import (
	"fmt"
	"time"

	"github.com/chungjuroad/tripkit/config"
	"github.com/chungjuroad/tripkit/feature"
	"github.com/chungjuroad/tripkit/filter"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/pkg/conv"
	"github.com/chungjuroad/tripkit/recall"
	"github.com/chungjuroad/tripkit/rerank"
)

func init() {
	config.Register("recall.similar", BuildSimilarItemsNode)
	config.Register("recall.favorites", BuildFavoritesNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("feature.enrich", BuildFeatureEnrichNode)
}

func BuildSimilarItemsNode(cfg map[string]any) (pipeline.Node, error) {
	rt := config.GetRuntime()
	if rt.Matrix == nil {
		return nil, fmt.Errorf("recall.similar requires runtime matrix (config.SetRuntime)")
	}
	return &recall.SimilarItems{
		Matrix: rt.Matrix,
		ItemID: conv.ConfigGet(cfg, "item_id", ""),
		TopK:   conv.ConfigGetInt(cfg, "top_k", 0),
	}, nil
}

func BuildFavoritesNode(cfg map[string]any) (pipeline.Node, error) {
	rt := config.GetRuntime()
	if rt.Matrix == nil || rt.Ratings == nil {
		return nil, fmt.Errorf("recall.favorites requires runtime matrix and ratings (config.SetRuntime)")
	}
	return &recall.Favorites{
		Ratings: rt.Ratings,
		Matrix:  rt.Matrix,
		TopK:    conv.ConfigGetInt(cfg, "top_k", 0),
	}, nil
}

func BuildHotNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if ids == nil {
		ids = []string{}
	}
	return &recall.Hot{
		Store: config.GetRuntime().Store,
		Key:   conv.ConfigGet(cfg, "key", ""),
		IDs:   ids,
	}, nil
}

func BuildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		node, err := buildSource(sourceType, sourceMap)
		if err != nil {
			return nil, err
		}
		sources = append(sources, node)
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	switch conv.ConfigGet(cfg, "merge_strategy", "") {
	case "priority":
		fanout.MergeStrategy = recall.MergePriority
	case "union":
		fanout.MergeStrategy = recall.MergeUnion
	default:
		fanout.MergeStrategy = recall.MergeFirst
	}
	return fanout, nil
}

func buildSource(sourceType string, cfg map[string]any) (recall.Source, error) {
	switch sourceType {
	case "similar":
		node, err := BuildSimilarItemsNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*recall.SimilarItems), nil
	case "favorites":
		node, err := BuildFavoritesNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*recall.Favorites), nil
	case "hot":
		node, err := BuildHotNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*recall.Hot), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	rt := config.GetRuntime()
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "rated":
			if rt.Ratings == nil {
				return nil, fmt.Errorf("filter rated requires runtime ratings (config.SetRuntime)")
			}
			filters = append(filters, &filter.Rated{Ratings: rt.Ratings})

		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("filter rule requires expr")
			}
			filters = append(filters, &filter.Rule{Expr: expr})

		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet(filterMap, "key", "")
			var bs filter.BlacklistStore
			if rt.Store != nil && key != "" {
				bs = filter.NewStoreAdapter(rt.Store)
			}
			filters = append(filters, filter.NewBlacklist(ids, bs, key))

		case "visited":
			if rt.Store == nil {
				return nil, fmt.Errorf("filter visited requires runtime store (config.SetRuntime)")
			}
			filters = append(filters, &filter.Visited{
				Store:          filter.NewStoreAdapter(rt.Store),
				KeyPrefix:      conv.ConfigGet(filterMap, "key_prefix", ""),
				TimeWindow:     int64(conv.ConfigGetInt(filterMap, "time_window", 0)),
				BloomDayWindow: conv.ConfigGetInt(filterMap, "bloom_day_window", 0),
			})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.Node{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:       conv.ConfigGet(cfg, "label_key", "category"),
		MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 0),
	}, nil
}

func BuildFeatureEnrichNode(cfg map[string]any) (pipeline.Node, error) {
	rt := config.GetRuntime()
	return &feature.Enrich{
		Catalog:       rt.Catalog,
		Provider:      rt.Provider,
		FeaturePrefix: conv.ConfigGet(cfg, "feature_prefix", ""),
	}, nil
}
