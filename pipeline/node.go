package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindSource  Kind = "source"  // 候选源阶段：生成候选集
	KindHydrate Kind = "hydrate" // 水合阶段：补齐作者/原帖元数据
	KindFilter  Kind = "filter"  // 过滤阶段：剔除不符合约束的候选
	KindScore   Kind = "score"   // 打分阶段：对候选打分并排序
	KindReRank  Kind = "rerank"  // 重排阶段：作者多样性调权与截断
	KindExplain Kind = "explain" // 解释阶段：组装分数构成说明
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 candidates -> 输出 candidates”的形态，方便候选源生成、
// Filter 剔除、ReRank 重排等操作。
//
// 约定：除打分/重排对候选自身分数字段的写入外，Node 不得修改
// 自身输出之外的任何状态；FeedContext 对 Node 只读。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		fctx *core.FeedContext,
		cands []*core.Candidate,
	) ([]*core.Candidate, error)
}

// NodeBuilder 根据配置构建 Node，供配置驱动的组装使用（见 config 包）。
type NodeBuilder func(config map[string]interface{}) (Node, error)
