// Package dataset 负责加载评分数据集：user_id, item_id, rating 三列的 CSV。
// 加载一次后 Table 作为只读评分表在进程生命周期内共享。
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/chungjuroad/tripkit/core"
)

// Record 是一条评分记录：某用户对某目的地打出的分数。
type Record struct {
	UserID string
	ItemID string
	Rating float64
}

// Table 是加载完成的评分表，实现 core.RatingStore。
// 构建完成后只读；并发查询无需加锁。
type Table struct {
	records []Record
	byUser  map[string]map[string]float64 // userID -> itemID -> rating
	byItem  map[string]map[string]float64 // itemID -> userID -> rating
	users   []string                      // 去重 + 升序
	items   []string                      // 去重 + 升序
}

// Load 从 CSV 文件加载评分表。
//
// 要求表头至少包含 user_id / item_id / rating 三列（列顺序不限，允许多余列）。
// 文件缺失返回 NOT_FOUND；缺列或字段解析失败返回 INVALID_INPUT。
// 加载失败是启动期致命错误，调用方应中止启动，而不是带着空表继续运行。
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeNotFound,
				fmt.Sprintf("dataset: rating file not found: %s", path))
		}
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: open rating file %s: %v", path, err))
	}
	defer f.Close()

	return Read(f)
}

// Read 从 reader 读取 CSV 评分数据（便于测试与非文件来源）。
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // 行宽在下面按表头校验，给出更可读的错误

	header, err := cr.Read()
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: read csv header: %v", err))
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"user_id", "item_id", "rating"} {
		if _, ok := col[required]; !ok {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: missing required column %q", required))
		}
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: read csv line %d: %v", line, err))
		}
		if len(row) < len(header) {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: line %d has %d fields, header has %d", line, len(row), len(header)))
		}

		rating, err := strconv.ParseFloat(row[col["rating"]], 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: line %d: invalid rating %q", line, row[col["rating"]]))
		}

		records = append(records, Record{
			UserID: row[col["user_id"]],
			ItemID: row[col["item_id"]],
			Rating: rating,
		})
	}

	return New(records), nil
}

// New 由已有记录构建评分表。
// 同一 (user, item) 出现多条记录时按后写覆盖处理（重复记录属于未定义输入）。
func New(records []Record) *Table {
	t := &Table{
		records: records,
		byUser:  make(map[string]map[string]float64),
		byItem:  make(map[string]map[string]float64),
	}
	for _, r := range records {
		if t.byUser[r.UserID] == nil {
			t.byUser[r.UserID] = make(map[string]float64)
		}
		t.byUser[r.UserID][r.ItemID] = r.Rating

		if t.byItem[r.ItemID] == nil {
			t.byItem[r.ItemID] = make(map[string]float64)
		}
		t.byItem[r.ItemID][r.UserID] = r.Rating
	}

	t.users = sortedKeys(t.byUser)
	t.items = sortedKeys(t.byItem)
	return t
}

func sortedKeys(m map[string]map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len 返回评分记录条数。
func (t *Table) Len() int { return len(t.records) }

// Records 返回原始评分记录（行内容未做任何修改）。
func (t *Table) Records() []Record { return t.records }

func (t *Table) Name() string { return "dataset.table" }

// UserRatings 实现 core.RatingStore。返回 map 是内部数据的拷贝，调用方可安全修改。
func (t *Table) UserRatings(_ context.Context, userID string) (map[string]float64, error) {
	return copyRatings(t.byUser[userID]), nil
}

// ItemRatings 实现 core.RatingStore。
func (t *Table) ItemRatings(_ context.Context, itemID string) (map[string]float64, error) {
	return copyRatings(t.byItem[itemID]), nil
}

// AllUsers 实现 core.RatingStore，升序。
func (t *Table) AllUsers(_ context.Context) ([]string, error) {
	return append([]string(nil), t.users...), nil
}

// AllItems 实现 core.RatingStore，升序。
func (t *Table) AllItems(_ context.Context) ([]string, error) {
	return append([]string(nil), t.items...), nil
}

func copyRatings(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ core.RatingStore = (*Table)(nil)
