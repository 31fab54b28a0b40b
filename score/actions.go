package score

import "github.com/rushteam/feedkit/core"

// ActionOrder 是打分 action 的固定顺序：先正向后负向。
// ActionScores 明细按此顺序生成，保证同输入下解释输出逐字节一致。
var ActionOrder = []string{
	core.ActionLike,
	core.ActionRepost,
	core.ActionReply,
	core.ActionQuote,
	core.ActionClick,
	core.ActionShare,
	core.ActionFollowAuthor,
	core.ActionNotInterested,
	core.ActionBlockAuthor,
	core.ActionMuteAuthor,
	core.ActionReport,
}

// DefaultWeights 是各 action 的基础分权重：正向行为加分，负向行为减分。
// 负向行为的“概率”本身已按 NegativeSignalStrength 缩放（见 Heuristic），
// 权重保持固定。
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		core.ActionLike:          1.0,
		core.ActionRepost:        1.2,
		core.ActionReply:         1.0,
		core.ActionQuote:         0.8,
		core.ActionClick:         0.6,
		core.ActionShare:         0.9,
		core.ActionFollowAuthor:  0.7,
		core.ActionNotInterested: -1.5,
		core.ActionBlockAuthor:   -2.0,
		core.ActionMuteAuthor:    -1.8,
		core.ActionReport:        -2.0,
	}
}
