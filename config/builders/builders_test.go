package builders

import (
	"context"
	"strings"
	"testing"

	"github.com/chungjuroad/tripkit/config"
	"github.com/chungjuroad/tripkit/dataset"
	"github.com/chungjuroad/tripkit/recall"
	"github.com/chungjuroad/tripkit/rerank"
	"github.com/chungjuroad/tripkit/similarity"
	"github.com/chungjuroad/tripkit/store"
)

func setupRuntime(t *testing.T) *dataset.Table {
	t.Helper()

	table := dataset.New([]dataset.Record{
		{UserID: "U1", ItemID: "CJU001", Rating: 5.0},
		{UserID: "U1", ItemID: "CJU002", Rating: 2.0},
		{UserID: "U2", ItemID: "CJU001", Rating: 4.0},
		{UserID: "U2", ItemID: "CJU003", Rating: 5.0},
	})
	matrix, err := similarity.Build(context.Background(), table)
	if err != nil {
		t.Fatalf("构建相似度矩阵失败: %v", err)
	}

	ms := store.NewMemoryStore()
	t.Cleanup(func() { ms.Close() })

	config.SetRuntime(&config.Runtime{
		Matrix:  matrix,
		Ratings: table,
		Store:   ms,
	})
	t.Cleanup(func() { config.SetRuntime(nil) })
	return table
}

func TestBuildRecallNodes(t *testing.T) {
	setupRuntime(t)
	factory := config.DefaultFactory()

	node, err := factory.Build("recall.similar", map[string]any{
		"item_id": "CJU001",
		"top_k":   5,
	})
	if err != nil {
		t.Fatalf("构建 recall.similar 失败: %v", err)
	}
	sim, ok := node.(*recall.SimilarItems)
	if !ok {
		t.Fatalf("期望 *recall.SimilarItems，实际 %T", node)
	}
	if sim.ItemID != "CJU001" || sim.TopK != 5 {
		t.Errorf("配置未生效: item_id=%s top_k=%d", sim.ItemID, sim.TopK)
	}

	node, err = factory.Build("recall.favorites", map[string]any{"top_k": 10})
	if err != nil {
		t.Fatalf("构建 recall.favorites 失败: %v", err)
	}
	if _, ok := node.(*recall.Favorites); !ok {
		t.Fatalf("期望 *recall.Favorites，实际 %T", node)
	}

	node, err = factory.Build("recall.hot", map[string]any{
		"key": "hot:places",
		"ids": []any{"CJU001", "CJU002"},
	})
	if err != nil {
		t.Fatalf("构建 recall.hot 失败: %v", err)
	}
	hot, ok := node.(*recall.Hot)
	if !ok {
		t.Fatalf("期望 *recall.Hot，实际 %T", node)
	}
	if hot.Key != "hot:places" || len(hot.IDs) != 2 {
		t.Errorf("配置未生效: key=%s ids=%v", hot.Key, hot.IDs)
	}
}

func TestBuildFanout(t *testing.T) {
	setupRuntime(t)
	factory := config.DefaultFactory()

	node, err := factory.Build("recall.fanout", map[string]any{
		"merge_strategy": "priority",
		"sources": []any{
			map[string]any{"type": "favorites", "top_k": 5},
			map[string]any{"type": "hot", "ids": []any{"CJU001"}},
		},
	})
	if err != nil {
		t.Fatalf("构建 recall.fanout 失败: %v", err)
	}
	fanout, ok := node.(*recall.Fanout)
	if !ok {
		t.Fatalf("期望 *recall.Fanout，实际 %T", node)
	}
	if len(fanout.Sources) != 2 {
		t.Errorf("期望 2 个召回源，实际 %d 个", len(fanout.Sources))
	}
	if fanout.MergeStrategy != recall.MergePriority {
		t.Errorf("合并策略期望 priority，实际 %v", fanout.MergeStrategy)
	}

	// 未知召回源类型
	if _, err := factory.Build("recall.fanout", map[string]any{
		"sources": []any{map[string]any{"type": "bogus"}},
	}); err == nil {
		t.Error("未知召回源类型应报错")
	}
}

func TestBuildFilterNode(t *testing.T) {
	setupRuntime(t)
	factory := config.DefaultFactory()

	node, err := factory.Build("filter", map[string]any{
		"filters": []any{
			map[string]any{"type": "rated"},
			map[string]any{"type": "rule", "expr": `label.category == "전시/체험"`},
			map[string]any{"type": "blacklist", "item_ids": []any{"CJU005"}},
			map[string]any{"type": "visited", "time_window": 3600},
		},
	})
	if err != nil {
		t.Fatalf("构建 filter 失败: %v", err)
	}
	if node.Name() != "filter.node" {
		t.Errorf("期望节点名 filter.node，实际 %s", node.Name())
	}

	// rule 缺少表达式
	if _, err := factory.Build("filter", map[string]any{
		"filters": []any{map[string]any{"type": "rule"}},
	}); err == nil {
		t.Error("rule 缺少 expr 应报错")
	}
}

func TestBuildReRankNodes(t *testing.T) {
	setupRuntime(t)
	factory := config.DefaultFactory()

	node, err := factory.Build("rerank.topn", map[string]any{"n": 5})
	if err != nil {
		t.Fatalf("构建 rerank.topn 失败: %v", err)
	}
	topn, ok := node.(*rerank.TopN)
	if !ok || topn.N != 5 {
		t.Errorf("期望 *rerank.TopN{N:5}，实际 %T %+v", node, node)
	}

	node, err = factory.Build("rerank.diversity", map[string]any{"max_per_category": 2})
	if err != nil {
		t.Fatalf("构建 rerank.diversity 失败: %v", err)
	}
	div, ok := node.(*rerank.Diversity)
	if !ok || div.MaxPerCategory != 2 {
		t.Errorf("期望 *rerank.Diversity{MaxPerCategory:2}，实际 %T %+v", node, node)
	}
}

func TestBuildRequiresRuntime(t *testing.T) {
	config.SetRuntime(nil)
	factory := config.DefaultFactory()

	_, err := factory.Build("recall.similar", map[string]any{"item_id": "CJU001"})
	if err == nil {
		t.Fatal("缺少运行时依赖应报错")
	}
	if !strings.Contains(err.Error(), "SetRuntime") {
		t.Errorf("错误信息应提示 SetRuntime，实际 %v", err)
	}
}

func TestSupportedTypes(t *testing.T) {
	types := config.SupportedTypes()
	want := []string{
		"feature.enrich", "filter",
		"recall.fanout", "recall.favorites", "recall.hot", "recall.similar",
		"rerank.diversity", "rerank.topn",
	}
	if len(types) < len(want) {
		t.Fatalf("期望至少 %d 种节点类型，实际 %v", len(want), types)
	}
	have := make(map[string]bool, len(types))
	for _, tp := range types {
		have[tp] = true
	}
	for _, tp := range want {
		if !have[tp] {
			t.Errorf("缺少节点类型 %s", tp)
		}
	}
}
