package core

import "github.com/chungjuroad/tripkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：一个候选旅行目的地。
// ID 使用目的地编号（例如 "CJU001"）；Score 是当前阶段的排序分；
// Meta 存放 catalog 解析出的元信息（title / description / category）；
// Labels 用于解释与策略驱动。
type Item struct {
	ID     string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// PutMeta 写入元信息。
func (it *Item) PutMeta(key string, val any) {
	if it.Meta == nil {
		it.Meta = make(map[string]any)
	}
	it.Meta[key] = val
}
