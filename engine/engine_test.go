package engine

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/chungjuroad/tripkit/catalog"
	"github.com/chungjuroad/tripkit/core"
	"github.com/chungjuroad/tripkit/dataset"
	"github.com/chungjuroad/tripkit/pipeline"
	"github.com/chungjuroad/tripkit/recall"
	"github.com/chungjuroad/tripkit/rerank"
)

const eps = 1e-9

const catalogJSON = `{
  "자연/힐링": [
    {"id": "CJU001", "title": "충주호", "description": "유람선과 호수 풍경"}
  ],
  "역사/문화": [
    {"id": "CJU002", "title": "탄금대", "description": "우륵이 가야금을 타던 곳"}
  ],
  "전시/체험": [
    {"id": "CJU003", "title": "충주 세계무술박물관", "description": "세계 무술 전시"}
  ]
}`

func testTable() *dataset.Table {
	return dataset.New([]dataset.Record{
		{UserID: "U1", ItemID: "CJU001", Rating: 5.0},
		{UserID: "U1", ItemID: "CJU002", Rating: 2.0},
		{UserID: "U2", ItemID: "CJU001", Rating: 4.0},
		{UserID: "U2", ItemID: "CJU003", Rating: 5.0},
	})
}

func testEngine(t *testing.T) *Engine {
	t.Helper()

	cat, err := catalog.Read(strings.NewReader(catalogJSON))
	if err != nil {
		t.Fatalf("解析目录失败: %v", err)
	}
	eng, err := New(context.Background(), testTable(), WithCatalog(cat))
	if err != nil {
		t.Fatalf("构建引擎失败: %v", err)
	}
	return eng
}

func TestSimilarPlaces(t *testing.T) {
	eng := testEngine(t)

	got, err := eng.SimilarPlaces(context.Background(), "CJU001", 2)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个结果，实际 %d 个", len(got))
	}

	// CJU002 与 CJU001 被同一批用户评分，相似度高于 CJU003
	if got[0].ID != "CJU002" || got[1].ID != "CJU003" {
		t.Errorf("期望顺序 [CJU002 CJU003]，实际 [%s %s]", got[0].ID, got[1].ID)
	}
	if want := 5.0 / math.Sqrt(41.0); math.Abs(got[0].Score-want) > eps {
		t.Errorf("CJU002 相似度期望 %v，实际 %v", want, got[0].Score)
	}
	if want := 4.0 / math.Sqrt(41.0); math.Abs(got[1].Score-want) > eps {
		t.Errorf("CJU003 相似度期望 %v，实际 %v", want, got[1].Score)
	}
}

// 查询结果自动补目录元数据
func TestSimilarPlacesEnriched(t *testing.T) {
	eng := testEngine(t)

	got, err := eng.SimilarPlaces(context.Background(), "CJU001", 1)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个结果，实际 %d 个", len(got))
	}

	it := got[0]
	if title, _ := it.Meta["title"].(string); title != "탄금대" {
		t.Errorf("title 期望 탄금대，实际 %v", it.Meta["title"])
	}
	if cate, _ := it.Meta["category"].(string); cate != "역사/문화" {
		t.Errorf("category 期望 역사/문화，实际 %v", it.Meta["category"])
	}
	if lbl, ok := it.Labels["category"]; !ok || lbl.Value != "역사/문화" {
		t.Errorf("category 标签期望 역사/문화，实际 %+v", it.Labels["category"])
	}
}

func TestSimilarPlacesUnknownItem(t *testing.T) {
	eng := testEngine(t)

	got, err := eng.SimilarPlaces(context.Background(), "CJU999", 5)
	if err != nil {
		t.Fatalf("未知目的地不应报错: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("未知目的地应返回空结果，实际 %d 个", len(got))
	}
}

func TestRecommendForUser(t *testing.T) {
	eng := testEngine(t)

	got, err := eng.RecommendForUser(context.Background(), "U1", 5)
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}

	// U1 的喜爱目的地只有 CJU001（CJU002 评分 2.0 低于阈值），
	// 唯一未评分的候选是 CJU003
	if len(got) != 1 || got[0].ID != "CJU003" {
		t.Fatalf("期望 [CJU003]，实际 %d 个结果", len(got))
	}
	if want := 4.0 / math.Sqrt(41.0); math.Abs(got[0].Score-want) > eps {
		t.Errorf("CJU003 分数期望 %v，实际 %v", want, got[0].Score)
	}

	// 已评分的目的地绝不出现
	for _, it := range got {
		if it.ID == "CJU001" || it.ID == "CJU002" {
			t.Errorf("已评分目的地 %s 不应出现在推荐结果中", it.ID)
		}
	}
}

func TestRecommendForUnknownUser(t *testing.T) {
	eng := testEngine(t)

	got, err := eng.RecommendForUser(context.Background(), "U999", 5)
	if err != nil {
		t.Fatalf("未知用户不应报错: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("未知用户应返回空结果，实际 %d 个", len(got))
	}
}

func TestDefaultTopK(t *testing.T) {
	eng := testEngine(t)

	// topK <= 0 时使用默认值而不是报错
	got, err := eng.SimilarPlaces(context.Background(), "CJU001", 0)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) == 0 {
		t.Error("默认 topK 下应有结果")
	}
	if len(got) > DefaultTopK {
		t.Errorf("结果数不应超过默认值 %d，实际 %d", DefaultTopK, len(got))
	}
}

// 新评分进来后整体重建矩阵并原子替换
func TestSwap(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()

	// U1 给 CJU003 打了 5 分
	records := append(testTable().Records(), dataset.Record{
		UserID: "U1", ItemID: "CJU003", Rating: 5.0,
	})
	if err := eng.Swap(ctx, dataset.New(records)); err != nil {
		t.Fatalf("重建失败: %v", err)
	}

	// 矩阵已用新评分重建：CJU001 与 CJU003 的相似度上升
	sim, ok := eng.Matrix().Sim("CJU001", "CJU003")
	if !ok {
		t.Fatal("矩阵中应包含 CJU001/CJU003")
	}
	if want := 45.0 / math.Sqrt(41.0*50.0); math.Abs(sim-want) > eps {
		t.Errorf("重建后相似度期望 %v，实际 %v", want, sim)
	}

	// U1 现在评过全部目的地，推荐结果为空
	got, err := eng.RecommendForUser(ctx, "U1", 5)
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("全部已评分的用户应得到空结果，实际 %d 个", len(got))
	}

	// U2 仍有未评分的 CJU002 可推
	got, err = eng.RecommendForUser(ctx, "U2", 5)
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != "CJU002" {
		t.Fatalf("期望 [CJU002]，实际 %d 个结果", len(got))
	}
}

func TestLookup(t *testing.T) {
	eng := testEngine(t)

	places := eng.Lookup([]string{"CJU003", "CJU999", "CJU001"})
	if len(places) != 2 {
		t.Fatalf("期望 2 个结果（未知 ID 跳过），实际 %d 个", len(places))
	}
	if places[0].ID != "CJU003" || places[1].ID != "CJU001" {
		t.Errorf("应保持输入顺序，实际 [%s %s]", places[0].ID, places[1].ID)
	}
	if places[1].Title != "충주호" {
		t.Errorf("Title 期望 충주호，实际 %s", places[1].Title)
	}
}

func TestRunCustomPipeline(t *testing.T) {
	eng := testEngine(t)

	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.SimilarItems{Matrix: eng.Matrix(), ItemID: "CJU001"},
		&rerank.TopN{N: 1},
	}}
	rctx := &core.RecommendContext{Scene: "similar"}

	got, err := eng.Run(context.Background(), rctx, p)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != "CJU002" {
		t.Fatalf("期望 [CJU002]，实际 %d 个结果", len(got))
	}
}
