package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Seen 剔除近窗口内已展示给 viewer 的帖子。
// 已看集合在请求开始时一次性读入 FeedContext（见 core.SeenStore），
// 过滤阶段只做内存查表，不访问存储。
type Seen struct{}

func (f *Seen) Name() string { return "filter.seen" }

func (f *Seen) ShouldDrop(
	_ context.Context,
	fctx *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	if fctx == nil {
		return false, nil
	}
	return fctx.Seen(c.Post.ID), nil
}
