package filter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// FilterNode 是过滤 Node，组合多个过滤器按序执行。
// 任何一个过滤器返回 true，候选即被剔除；过滤器应按“便宜的在前”排列。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Filters) == 0 || len(cands) == 0 {
		return cands, nil
	}

	out := make([]*core.Candidate, 0, len(cands))
	for _, c := range cands {
		if c == nil || c.Post == nil {
			continue
		}

		dropped := false
		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldDrop(ctx, fctx, c)
			if err != nil {
				// fail-soft：过滤器出错按保留处理，不中断流程
				log.Warn().
					Str("filter", f.Name()).
					Str("post_id", c.Post.ID).
					Err(err).
					Msg("filter failed, candidate kept")
				continue
			}
			if ok {
				dropped = true
				reason = f.Name()
				break
			}
		}

		if dropped {
			// 记录过滤原因（用于调试/观测）
			c.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
