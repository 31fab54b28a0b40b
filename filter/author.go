package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// BlockedAuthor 剔除被 viewer 拉黑或屏蔽的作者的帖子。
type BlockedAuthor struct{}

func (f *BlockedAuthor) Name() string { return "filter.blocked_author" }

func (f *BlockedAuthor) ShouldDrop(
	_ context.Context,
	fctx *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	if fctx == nil || fctx.Viewer == nil {
		return false, nil
	}
	return fctx.Viewer.BlockedOrMuted(c.Post.AuthorID), nil
}

// SelfPost 剔除 viewer 自己的帖子。
type SelfPost struct{}

func (f *SelfPost) Name() string { return "filter.self_post" }

func (f *SelfPost) ShouldDrop(
	_ context.Context,
	fctx *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	if fctx == nil {
		return false, nil
	}
	return c.Post.AuthorID == fctx.UserID, nil
}
