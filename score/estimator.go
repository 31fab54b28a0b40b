package score

import (
	"math"
	"time"

	"github.com/rushteam/feedkit/core"
)

// Estimator 估计候选在各 action 上的“概率”（[0,1]）。
//
// 刻意不是机器学习模型：估计必须是互动计数、帖子年龄与主题对齐度的
// 纯函数，可审计、可复现，这是解释输出可信的前提。实现方不得在
// 这里引入模型推理。
type Estimator interface {
	Name() string
	Estimate(fctx *core.FeedContext, c *core.Candidate) map[string]float64
}

// RecencyScore 是新鲜度分量：1/(1+ageHours)。
// 单调递减、有界 (0,1]，任意老的帖子衰减趋零但不变号。
func RecencyScore(age time.Duration) float64 {
	return 1.0 / (1.0 + age.Hours())
}

// PopularityScore 是热度分量：加权互动量过 tanh 压到 [0.5,1)，
// 再乘 NicheVsViral 的爆款系数 (0.5+nvv)/1.5，nvv 越高热度越吃香。
func PopularityScore(likes, reposts, replies int, nicheVsViral float64) float64 {
	raw := float64(likes) + 2.0*float64(reposts) + 1.5*float64(replies)
	bounded := math.Tanh(raw/10)*0.5 + 0.5
	return bounded * (0.5 + nicheVsViral) / 1.5
}

// Heuristic 是默认的启发式估计器，行为概率来自三类可审计信号：
//   - 互动计数（正向行为越多，相应 action 概率越高，min 截断防饱和）
//   - 帖子年龄（新鲜度与热度按 RecencyVsPopularity 混合）
//   - 负向互动计数（not_interested 等，按 NegativeSignalStrength 缩放）
type Heuristic struct{}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Estimate(fctx *core.FeedContext, c *core.Candidate) map[string]float64 {
	prefs := fctx.Prefs
	likes := c.EngagementCount(core.ActionLike)
	reposts := c.EngagementCount(core.ActionRepost)
	replies := c.EngagementCount(core.ActionReply)

	rec := RecencyScore(c.Post.Age(fctx.Now))
	pop := PopularityScore(likes, reposts, replies, prefs.NicheVsViral)

	// 新鲜度 vs 热度混合：rv=0 全看新鲜度，rv=1 全看热度。
	rv := prefs.RecencyVsPopularity
	engage := (1-rv)*rec + rv*pop

	neg := prefs.NegativeSignalStrength
	ni := c.EngagementCount(core.ActionNotInterested)
	blocks := c.EngagementCount(core.ActionBlockAuthor)
	mutes := c.EngagementCount(core.ActionMuteAuthor)
	reports := c.EngagementCount(core.ActionReport)

	return map[string]float64{
		core.ActionLike:         engage * (0.4 + 0.3*capRatio(likes, 20)),
		core.ActionRepost:       engage * (0.2 + 0.2*capRatio(reposts, 10)),
		core.ActionReply:        engage * 0.25,
		core.ActionQuote:        engage * 0.15,
		core.ActionClick:        engage * 0.5,
		core.ActionShare:        engage * 0.2,
		core.ActionFollowAuthor: engage * 0.1,

		// 负向概率由该帖历史负向互动驱动，严格单调于计数
		core.ActionNotInterested: neg * (0.05 + 0.45*capRatio(ni, 10)),
		core.ActionBlockAuthor:   neg * (0.02 + 0.30*capRatio(blocks, 10)),
		core.ActionMuteAuthor:    neg * (0.03 + 0.30*capRatio(mutes, 10)),
		core.ActionReport:        neg * (0.01 + 0.40*capRatio(reports, 10)),
	}
}

// capRatio = min(1, n/limit)。
func capRatio(n, limit int) float64 {
	if n >= limit {
		return 1
	}
	if n <= 0 {
		return 0
	}
	return float64(n) / float64(limit)
}
