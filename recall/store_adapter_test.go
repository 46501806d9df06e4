package recall

import (
	"context"
	"testing"

	"github.com/chungjuroad/tripkit/dataset"
	"github.com/chungjuroad/tripkit/similarity"
	"github.com/chungjuroad/tripkit/store"
)

func TestStoreRatingAdapter(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	adapter := NewStoreRatingAdapter(ms, "rating")
	records := []dataset.Record{
		{UserID: "U1", ItemID: "CJU001", Rating: 5.0},
		{UserID: "U1", ItemID: "CJU002", Rating: 2.0},
		{UserID: "U2", ItemID: "CJU001", Rating: 4.0},
		{UserID: "U2", ItemID: "CJU003", Rating: 5.0},
	}
	if err := SeedRatings(ctx, adapter, records); err != nil {
		t.Fatalf("灌入评分失败: %v", err)
	}

	ratings, err := adapter.UserRatings(ctx, "U1")
	if err != nil {
		t.Fatalf("UserRatings: %v", err)
	}
	if ratings["CJU001"] != 5.0 || ratings["CJU002"] != 2.0 {
		t.Errorf("U1 评分不符: %v", ratings)
	}

	users, err := adapter.AllUsers(ctx)
	if err != nil {
		t.Fatalf("AllUsers: %v", err)
	}
	if len(users) != 2 || users[0] != "U1" || users[1] != "U2" {
		t.Errorf("用户列表不符（应升序）: %v", users)
	}

	items, err := adapter.AllItems(ctx)
	if err != nil {
		t.Fatalf("AllItems: %v", err)
	}
	if len(items) != 3 || items[0] != "CJU001" {
		t.Errorf("目的地列表不符（应升序）: %v", items)
	}

	// 未知用户返回空，不报错
	empty, err := adapter.UserRatings(ctx, "NOBODY")
	if err != nil {
		t.Fatalf("未知用户不应报错: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("期望空结果，实际 %v", empty)
	}
}

// 同样的评分数据，从 Store 适配器构建的矩阵与 CSV 快照一致
func TestStoreRatingAdapterBuildsSameMatrix(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	records := []dataset.Record{
		{UserID: "U1", ItemID: "CJU001", Rating: 5.0},
		{UserID: "U1", ItemID: "CJU002", Rating: 2.0},
		{UserID: "U2", ItemID: "CJU001", Rating: 4.0},
		{UserID: "U2", ItemID: "CJU003", Rating: 5.0},
	}
	adapter := NewStoreRatingAdapter(ms, "rating")
	if err := SeedRatings(ctx, adapter, records); err != nil {
		t.Fatalf("灌入评分失败: %v", err)
	}

	fromStore, err := similarity.Build(ctx, adapter)
	if err != nil {
		t.Fatalf("从 Store 构建失败: %v", err)
	}
	fromTable, err := similarity.Build(ctx, dataset.New(records))
	if err != nil {
		t.Fatalf("从评分表构建失败: %v", err)
	}

	for _, a := range fromTable.Items() {
		for _, b := range fromTable.Items() {
			x, _ := fromTable.Sim(a, b)
			y, _ := fromStore.Sim(a, b)
			if x != y {
				t.Errorf("sim(%s,%s) 不一致: table=%v store=%v", a, b, x, y)
			}
		}
	}
}
