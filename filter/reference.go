package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Reference 剔除被引用帖子无法解析的 reply / quote 候选。
// 依赖 hydrate 阶段已尝试填充 ParentPost / QuotedPost，必须排在其后。
type Reference struct{}

func (f *Reference) Name() string { return "filter.reference" }

func (f *Reference) ShouldDrop(
	_ context.Context,
	_ *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	switch c.Post.Type {
	case core.PostReply:
		return c.Post.ParentID != "" && c.ParentPost == nil, nil
	case core.PostQuote:
		return c.Post.QuotedID != "" && c.QuotedPost == nil, nil
	default:
		return false, nil
	}
}
