package filter

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
)

// MaxAge 剔除超过最大年龄的帖子。年龄以 fctx.Now 为基准计算。
type MaxAge struct {
	// Max 是最大年龄，默认 168h（7 天）。
	Max time.Duration
}

func (f *MaxAge) Name() string { return "filter.max_age" }

func (f *MaxAge) ShouldDrop(
	_ context.Context,
	fctx *core.FeedContext,
	c *core.Candidate,
) (bool, error) {
	max := f.Max
	if max <= 0 {
		max = 168 * time.Hour
	}
	return c.Post.Age(fctx.Now) > max, nil
}
