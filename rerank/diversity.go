package rerank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// penaltyStep 是同作者每多出现一次的基准罚分步长。
const penaltyStep = 0.15

// AuthorDiversity 按作者打散：沿当前分数序扫描，同一作者的第 n 条
// （n 从 1 计）扣 (n-1)*strength*penaltyStep，然后重排。
//
// 罚分封顶于当前分数，分数不落负，恒等式
// Score = BaseScore + RecencyBoost + TopicBoost - DiversityPenalty
// 仍然成立（DiversityPenalty 记录的是实际扣除量）。
type AuthorDiversity struct {
	// Strength 为 0 时节点是 no-op，顺序不变。默认取
	// Prefs.DiversityStrength，这里仅在显式配置时覆盖。
	Strength *float64
}

func (n *AuthorDiversity) Name() string        { return "rerank.diversity" }
func (n *AuthorDiversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *AuthorDiversity) Process(
	_ context.Context,
	fctx *core.FeedContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	strength := fctx.Prefs.DiversityStrength
	if n.Strength != nil {
		strength = *n.Strength
	}
	if strength <= 0 || len(candidates) < 2 {
		return candidates, nil
	}

	// 罚分依赖入场顺序，先保证是分数序
	core.SortByScore(candidates)

	seen := make(map[string]int, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Post == nil {
			continue
		}
		count := seen[c.Post.AuthorID]
		seen[c.Post.AuthorID] = count + 1
		if count == 0 {
			continue
		}
		penalty := float64(count) * strength * penaltyStep
		if penalty > c.Score {
			penalty = c.Score
		}
		c.DiversityPenalty = penalty
		c.Score -= penalty
		c.PutLabel("diversity_penalized", utils.Label{Value: "true", Source: n.Name()})
	}

	core.SortByScore(candidates)
	return candidates, nil
}
