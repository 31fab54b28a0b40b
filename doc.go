// Package feedkit 是一个个性化信息流排序工具包（Feed Kit）。
//
// 设计要点：
// - Pipeline-first: 排序逻辑通过 Node 串联（Source → Hydrate → Filter → Score → ReRank → Explain）
// - 可解释: 每条结果的分数构成（逐 action 贡献、新鲜度/主题加成、多样性罚分）可完整返回
// - 确定性: 固定请求时钟 + 统一 tie-break，同输入必得同输出
// - Node 可扩展: 自定义 Node 即可插拔扩展（候选源、过滤器、打分器均可替换）
package feedkit

import "github.com/rushteam/feedkit/pipeline"

// 轻量 facade：便于用户直接 import "feedkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindSource  = pipeline.KindSource
	KindHydrate = pipeline.KindHydrate
	KindFilter  = pipeline.KindFilter
	KindScore   = pipeline.KindScore
	KindReRank  = pipeline.KindReRank
	KindExplain = pipeline.KindExplain
)
