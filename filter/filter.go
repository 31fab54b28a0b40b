package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被剔除。
// 返回 true 表示剔除，false 表示保留。
//
// 约定：过滤器是纯谓词，只做判断、不改分数、不改候选；
// 因此过滤器的执行顺序不影响最终存活集合，只影响耗时（应便宜的在前）。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldDrop 判断候选是否应该被剔除
	ShouldDrop(ctx context.Context, fctx *core.FeedContext, c *core.Candidate) (bool, error)
}
