// Package tripkit 是一个旅行目的地推荐工具包（Trip Recommender Kit）。
//
// 设计要点：
// - Pipeline-first: 所有推荐逻辑通过 Node 串联（Recall → Filter → ReRank → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 确定性: 同样的评分数据与请求，永远产生同样的推荐顺序（分数降序、ID 升序）
// - Node 可扩展: 自定义 Node 即可插拔扩展
//
// 快速上手见 engine 包：加载 CSV 评分 + JSON 目录，构建相似度矩阵后即可查询。
package tripkit

import "github.com/chungjuroad/tripkit/pipeline"

// 轻量 facade：便于用户直接 import "tripkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
