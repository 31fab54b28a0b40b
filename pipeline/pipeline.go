package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Pipeline 是 Feedkit 的核心抽象：把信息流排序逻辑拆成可组合的 Node 链。
// 每次请求走一条独立的同步链路，数据只向前流动。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	fctx *core.FeedContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := cands
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, fctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
