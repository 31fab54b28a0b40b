package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/dsl"
)

// Rule 是配置驱动的策略过滤器：CEL 表达式命中（返回 true）的候选被剔除。
// 用于无需改代码即可下发的资格/政策规则，例如：
//
//	post.text.contains("giveaway") && post.like_count == 0
//	post.topics.exists(t, t == "politics") && author.followers_count < 10
//
// 表达式非法或求值出错时按保留处理（FilterNode 对过滤器错误 fail-soft）。
type Rule struct {
	// Expr 是 CEL 表达式；为空时过滤器为 no-op。
	Expr string
}

func (f *Rule) Name() string { return "filter.rule" }

func (f *Rule) ShouldDrop(
	_ context.Context,
	fctx *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(c, fctx).Evaluate(f.Expr)
}
