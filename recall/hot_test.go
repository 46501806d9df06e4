package recall

import (
	"context"
	"testing"

	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/store"
)

func TestHotFromZSet(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	ms.ZAdd(ctx, "hot:destinations", 10, "CJU003")
	ms.ZAdd(ctx, "hot:destinations", 99, "CJU001")
	ms.ZAdd(ctx, "hot:destinations", 50, "CJU006")

	node := &Hot{Store: ms, Key: "hot:destinations"}
	items, err := node.Recall(ctx, &core.RecommendContext{})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("期望 3 个候选，实际 %d", len(items))
	}
	// 榜单按热度降序
	want := []string{"CJU001", "CJU006", "CJU003"}
	for i := range want {
		if items[i].ID != want[i] {
			t.Errorf("榜单顺序不符: got %s want %s", items[i].ID, want[i])
		}
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "hot" {
		t.Errorf("缺少 recall_source label: %v", items[0].Labels)
	}
}

// Store 里没有数据时回退到内存 IDs
func TestHotFallbackIDs(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	node := &Hot{Store: ms, Key: "hot:empty", IDs: []string{"CJU001", "CJU002"}}
	items, err := node.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 2 || items[0].ID != "CJU001" || items[1].ID != "CJU002" {
		t.Errorf("fallback 结果不符: %v", items)
	}
}

func TestHotEmpty(t *testing.T) {
	node := &Hot{}
	items, err := node.Recall(context.Background(), &core.RecommendContext{})
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("无数据来源应返回空结果，实际 %v", items)
	}
}
