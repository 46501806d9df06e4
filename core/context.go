package core

import "github.com/chungjuroad/tripkit/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 目标用户 ID，例如 "U010"；物品相似查询可以为空
	Scene  string // 场景标识：chat / home / ad 等

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：新用户、本地居民、亲子出行等
	Labels map[string]utils.Label

	// Params 请求级上下文参数，例如：
	// - "item_id": 物品相似查询的目标目的地
	// - "season" / "query" 等外层透传的信息
	Params map[string]any
}

// ParamString 按 key 取字符串参数，取不到时返回空串。
func (rctx *RecommendContext) ParamString(key string) string {
	if rctx == nil || rctx.Params == nil {
		return ""
	}
	if s, ok := rctx.Params[key].(string); ok {
		return s
	}
	return ""
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
