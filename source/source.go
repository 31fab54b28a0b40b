package source

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Source 表示一个可复用的候选源（关注内/关注外/外部注入/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
//
// 约定：
//   - 同一个 Source 的输出内部不允许出现重复的 Post ID
//   - 失败/超时按 fail-soft 处理：返回空结果即可，不要让整个请求失败
//   - 输出顺序必须只由输入决定（确定性要求），不依赖 map 遍历序
type Source interface {
	Name() string
	Fetch(ctx context.Context, fctx *core.FeedContext) ([]*core.Candidate, error)
}

// QuotaSplit 按 FriendsVsGlobal 把合并候选预算拆给 in_network / out_of_network：
// 值越高，留给关注内容的份额越大。份额限制在 [0.30, 0.85]，
// 两端都不允许把某一侧挤到零。
func QuotaSplit(budget int, friendsVsGlobal float64) (inQuota, oonQuota int) {
	if budget <= 0 {
		return 0, 0
	}
	share := 0.30 + 0.55*friendsVsGlobal
	inQuota = int(float64(budget) * share)
	if inQuota < 1 {
		inQuota = 1
	}
	if inQuota >= budget {
		inQuota = budget - 1
	}
	return inQuota, budget - inQuota
}
