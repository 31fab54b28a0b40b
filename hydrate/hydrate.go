// Package hydrate 给候选补齐作者与被引用帖子（reply 原帖 / quote 原帖）。
package hydrate

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Hydrator 是水合 Node：从存储解析 Author / ParentPost / QuotedPost。
//
// 失败语义：作者无法解析的候选直接丢弃（fail-soft，不向下游传 nil）；
// 被引用帖子解析失败只留空，由 filter 阶段的 Reference 过滤器决定去留。
// 本阶段对存储只有读穿透，不做跨请求缓存。
type Hydrator struct {
	Store core.FeedStore
}

func (n *Hydrator) Name() string        { return "hydrate" }
func (n *Hydrator) Kind() pipeline.Kind { return pipeline.KindHydrate }

func (n *Hydrator) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	cands []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Store == nil || len(cands) == 0 {
		return cands, nil
	}

	out := make([]*core.Candidate, 0, len(cands))
	for _, c := range cands {
		if c == nil || c.Post == nil {
			continue
		}

		if c.Author == nil {
			author, err := n.Store.GetUser(ctx, c.Post.AuthorID)
			if err != nil || author == nil {
				log.Debug().
					Str("post_id", c.Post.ID).
					Str("author_id", c.Post.AuthorID).
					Msg("dropping candidate with unresolvable author")
				continue
			}
			c.Author = author
		}

		if c.Post.ParentID != "" && c.ParentPost == nil {
			if parent, err := n.Store.GetPost(ctx, c.Post.ParentID); err == nil {
				c.ParentPost = parent
			}
		}
		if c.Post.QuotedID != "" && c.QuotedPost == nil {
			if quoted, err := n.Store.GetPost(ctx, c.Post.QuotedID); err == nil {
				c.QuotedPost = quoted
			}
		}

		c.PutLabel("hydrated", utils.Label{Value: "true", Source: "hydrate"})
		out = append(out, c)
	}
	return out, nil
}
