package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/chungjuroad/tripkit/dataset"
)

const eps = 1e-9

// 四条评分，两个用户：
//
//	         U1   U2
//	CJU001  5.0  4.0
//	CJU002  2.0  0.0
//	CJU003  0.0  5.0
//
// 余弦相似度解析解：
//
//	sim(001,002) = (5*2)/(√41 * 2)  = 5/√41 ≈ 0.7809
//	sim(001,003) = (4*5)/(√41 * 5)  = 4/√41 ≈ 0.6247
//	sim(002,003) = 0（无共同评分用户）
func scenarioTable() *dataset.Table {
	return dataset.New([]dataset.Record{
		{UserID: "U1", ItemID: "CJU001", Rating: 5.0},
		{UserID: "U1", ItemID: "CJU002", Rating: 2.0},
		{UserID: "U2", ItemID: "CJU001", Rating: 4.0},
		{UserID: "U2", ItemID: "CJU003", Rating: 5.0},
	})
}

func TestBuildCosineValues(t *testing.T) {
	m, err := Build(context.Background(), scenarioTable())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	sqrt41 := math.Sqrt(41.0)
	tests := []struct {
		a, b string
		want float64
	}{
		{"CJU001", "CJU002", 5.0 / sqrt41},
		{"CJU001", "CJU003", 4.0 / sqrt41},
		{"CJU002", "CJU003", 0.0},
	}
	for _, tt := range tests {
		got, ok := m.Sim(tt.a, tt.b)
		if !ok {
			t.Fatalf("sim(%s,%s) 应该存在", tt.a, tt.b)
		}
		if math.Abs(got-tt.want) > eps {
			t.Errorf("sim(%s,%s) = %v，期望 %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSymmetryAndDiagonal(t *testing.T) {
	m, err := Build(context.Background(), scenarioTable())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	items := m.Items()
	for _, a := range items {
		// 对角线：有评分的目的地自相似为 1.0
		self, _ := m.Sim(a, a)
		if math.Abs(self-1.0) > eps {
			t.Errorf("sim(%s,%s) = %v，期望 1.0", a, a, self)
		}
		for _, b := range items {
			ab, _ := m.Sim(a, b)
			ba, _ := m.Sim(b, a)
			if ab != ba {
				t.Errorf("对称性被破坏: sim(%s,%s)=%v != sim(%s,%s)=%v", a, b, ab, b, a, ba)
			}
			if ab < -1.0-eps || ab > 1.0+eps {
				t.Errorf("sim(%s,%s)=%v 超出 [-1,1]", a, b, ab)
			}
		}
	}
}

// 零范数行：通过 RatingStore 假实现构造一个"在物品轴上但没有任何评分"的目的地
type zeroNormStore struct {
	*dataset.Table
}

func (s *zeroNormStore) AllItems(ctx context.Context) ([]string, error) {
	items, err := s.Table.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	return append(items, "CJU999"), nil
}

func TestZeroNormRow(t *testing.T) {
	m, err := Build(context.Background(), &zeroNormStore{Table: scenarioTable()})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	// 零评分目的地：整行为 0.0，包括对角线，不触发除零
	self, ok := m.Sim("CJU999", "CJU999")
	if !ok {
		t.Fatal("CJU999 应该在矩阵中")
	}
	if self != 0.0 {
		t.Errorf("零评分目的地对角线应为 0.0，实际 %v", self)
	}
	for _, other := range m.Items() {
		got, _ := m.Sim("CJU999", other)
		if got != 0.0 {
			t.Errorf("sim(CJU999,%s) 应为 0.0，实际 %v", other, got)
		}
	}
}

func TestNeighbors(t *testing.T) {
	m, err := Build(context.Background(), scenarioTable())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	neighbors := m.Neighbors("CJU001")
	if len(neighbors) != 2 {
		t.Fatalf("期望 2 个邻居，实际 %d", len(neighbors))
	}
	// 自身永不出现
	for _, nb := range neighbors {
		if nb.ItemID == "CJU001" {
			t.Error("Neighbors 不应包含目标自身")
		}
	}
	// 按分数降序：CJU002 (5/√41) > CJU003 (4/√41)
	if neighbors[0].ItemID != "CJU002" || neighbors[1].ItemID != "CJU003" {
		t.Errorf("邻居排序不符: %v", neighbors)
	}

	// 未知目的地返回 nil，不是错误
	if got := m.Neighbors("UNKNOWN_ID"); got != nil {
		t.Errorf("未知目的地应返回 nil，实际 %v", got)
	}
}

// 同样的输入多次构建，输出完全一致（幂等/确定性）
func TestBuildDeterministic(t *testing.T) {
	ctx := context.Background()
	first, err := Build(ctx, scenarioTable())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := Build(ctx, scenarioTable())
		if err != nil {
			t.Fatalf("构建失败: %v", err)
		}
		for _, a := range first.Items() {
			for _, b := range first.Items() {
				x, _ := first.Sim(a, b)
				y, _ := again.Sim(a, b)
				if x != y {
					t.Fatalf("第 %d 次构建 sim(%s,%s) 不一致: %v != %v", run, a, b, x, y)
				}
			}
		}
		n1 := first.Neighbors("CJU001")
		n2 := again.Neighbors("CJU001")
		for i := range n1 {
			if n1[i] != n2[i] {
				t.Fatalf("邻居顺序不一致: %v != %v", n1, n2)
			}
		}
	}
}

func TestSortScoredTieBreak(t *testing.T) {
	s := []Scored{
		{ItemID: "CJU003", Score: 0.5},
		{ItemID: "CJU001", Score: 0.5},
		{ItemID: "CJU002", Score: 0.9},
	}
	SortScored(s)
	// 分数降序；同分按 ID 升序
	want := []string{"CJU002", "CJU001", "CJU003"}
	for i := range want {
		if s[i].ItemID != want[i] {
			t.Fatalf("排序结果不符: %v", s)
		}
	}
}
