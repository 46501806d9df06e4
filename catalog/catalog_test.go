package catalog

import (
	"strings"
	"testing"

	"github.com/chungjuroad/tripkit/core"
)

const sampleJSON = `{
  "자연/힐링": [
    {"id": "CJU001", "title": "탄금호 무지개길", "description": "호수 산책로"},
    {"id": "CJU004", "title": "수주팔봉", "description": "바위 봉우리"}
  ],
  "역사/문화": [
    {"id": "CJU002", "title": "중앙탑 사적공원", "description": "칠층석탑"}
  ]
}`

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("期望 3 个目的地，实际 %d", c.Len())
	}

	categories := c.Categories()
	want := []string{"자연/힐링", "역사/문화"}
	if len(categories) != len(want) {
		t.Fatalf("分类数量不符: %v", categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("分类顺序未保持文档顺序: got %v want %v", categories, want)
		}
	}

	places := c.Places("자연/힐링")
	if len(places) != 2 || places[0].ID != "CJU001" || places[1].ID != "CJU004" {
		t.Errorf("分类内目的地顺序不符: %v", places)
	}
}

func TestResolve(t *testing.T) {
	c, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	p, ok := c.Resolve("CJU002")
	if !ok {
		t.Fatal("CJU002 应该存在")
	}
	if p.Title != "중앙탑 사적공원" {
		t.Errorf("title 不符: %v", p)
	}

	if _, ok := c.Resolve("UNKNOWN"); ok {
		t.Error("未知 ID 应该返回 false")
	}

	cate, ok := c.CategoryOf("CJU004")
	if !ok || cate != "자연/힐링" {
		t.Errorf("CategoryOf 不符: %v %v", cate, ok)
	}
}

// 同一 ID 出现在多个分类时，按文档顺序先出现者胜出
func TestResolveDuplicateIDFirstWins(t *testing.T) {
	dup := `{
  "first": [{"id": "CJU009", "title": "첫 번째", "description": "a"}],
  "second": [{"id": "CJU009", "title": "두 번째", "description": "b"}]
}`
	c, err := Read(strings.NewReader(dup))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	// 多次查询结果一致（确定性）
	for i := 0; i < 5; i++ {
		p, ok := c.Resolve("CJU009")
		if !ok || p.Title != "첫 번째" {
			t.Fatalf("第 %d 次查询期望首个出现的记录，实际 %v", i, p)
		}
		cate, _ := c.CategoryOf("CJU009")
		if cate != "first" {
			t.Fatalf("期望分类 first，实际 %v", cate)
		}
	}
}

// ResolveAll 保持输入顺序，未知 ID 静默跳过
func TestResolveAll(t *testing.T) {
	c, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	places := c.ResolveAll([]string{"CJU002", "UNKNOWN", "CJU001"})
	if len(places) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(places))
	}
	if places[0].ID != "CJU002" || places[1].ID != "CJU001" {
		t.Errorf("未保持输入顺序: %v", places)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"顶层不是对象", `[{"id": "CJU001"}]`},
		{"分类值不是数组", `{"category": {"id": "CJU001"}}`},
		{"目的地缺少 id", `{"category": [{"title": "이름 없음"}]}`},
		{"JSON 截断", `{"category": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.json))
			if err == nil {
				t.Fatal("期望报错，实际成功")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("期望 INVALID_INPUT，实际 %v", err)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("testdata/definitely_missing.json")
	if err == nil {
		t.Fatal("期望报错，实际成功")
	}
	if !core.IsNotFound(err) {
		t.Errorf("期望 NOT_FOUND，实际 %v", err)
	}
}
