// Package catalog 负责目的地元数据目录：category -> 目的地列表 的 JSON 文档。
//
// 解析时保留文档中 category 的出现顺序。Go 的 map 不保证迭代顺序，而
// "同一 ID 出现在多个分类时取先出现者" 的语义要求确定性的遍历顺序，
// 所以这里用 token 流手工解码顶层对象。
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chungjuroad/tripkit/core"
)

// Place 是一个目的地的元数据记录。
type Place struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog 是按分类组织的目的地目录，加载一次后只读。
type Catalog struct {
	categories []string           // 文档顺序
	byCategory map[string][]Place // category -> 有序目的地列表
}

// Load 从 JSON 文件加载目录。
// 文件缺失返回 NOT_FOUND；JSON 结构不符或目的地缺少 id 字段返回 INVALID_INPUT。
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
				fmt.Sprintf("catalog: metadata file not found: %s", path))
		}
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			fmt.Sprintf("catalog: open metadata file %s: %v", path, err))
	}
	defer f.Close()

	return Read(f)
}

// Read 从 reader 解析目录 JSON（便于测试与非文件来源）。
func Read(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid("read metadata json: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalid("metadata json must be an object keyed by category")
	}

	c := &Catalog{byCategory: make(map[string][]Place)}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, invalid("read category name: %v", err)
		}
		category, ok := keyTok.(string)
		if !ok {
			return nil, invalid("category name must be a string, got %v", keyTok)
		}

		var places []Place
		if err := dec.Decode(&places); err != nil {
			return nil, invalid("category %q: decode place list: %v", category, err)
		}
		for i, p := range places {
			if p.ID == "" {
				return nil, invalid("category %q: place #%d has empty id", category, i)
			}
		}

		// 同名分类重复出现时合并追加，保留首次出现的位置
		if _, seen := c.byCategory[category]; !seen {
			c.categories = append(c.categories, category)
		}
		c.byCategory[category] = append(c.byCategory[category], places...)
	}

	if _, err := dec.Token(); err != nil {
		return nil, invalid("read metadata json: %v", err)
	}

	return c, nil
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
		"catalog: "+fmt.Sprintf(format, args...))
}

// Categories 按文档顺序返回分类名。
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Places 返回某分类下的目的地列表（文档顺序）。
func (c *Catalog) Places(category string) []Place {
	return append([]Place(nil), c.byCategory[category]...)
}

// Len 返回目录中目的地总数（跨分类，含重复 ID）。
func (c *Catalog) Len() int {
	n := 0
	for _, places := range c.byCategory {
		n += len(places)
	}
	return n
}

// Resolve 按 ID 查找目的地：按分类的文档顺序线性扫描，命中即返回。
// ID 在多个分类重复出现时（理论上不应发生），先出现者胜出。
// 未知 ID 返回 (Place{}, false)，不是错误。
func (c *Catalog) Resolve(id string) (Place, bool) {
	for _, category := range c.categories {
		for _, p := range c.byCategory[category] {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Place{}, false
}

// CategoryOf 返回目的地所属分类（按 Resolve 相同的先到先得规则）。
func (c *Catalog) CategoryOf(id string) (string, bool) {
	for _, category := range c.categories {
		for _, p := range c.byCategory[category] {
			if p.ID == id {
				return category, true
			}
		}
	}
	return "", false
}

// ResolveAll 批量解析 ID 列表，保持输入顺序；未知 ID 被静默跳过，
// 因此输出长度可能小于输入长度，调用方不应假设两者相等。
func (c *Catalog) ResolveAll(ids []string) []Place {
	out := make([]Place, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Resolve(id); ok {
			out = append(out, p)
		}
	}
	return out
}
