package score

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Node 是启发式打分节点：对每个候选计算各 action 的期望贡献并求和，
// 叠加新鲜度与主题加成得到初始 Score，最后按 core.Less 排序。
//
// 最终分恒等式从这里开始维护：
//
//	Score = BaseScore + RecencyBoost + TopicBoost - DiversityPenalty
//
// 本节点只产出前三项（DiversityPenalty 由 rerank.AuthorDiversity 扣除）。
type Node struct {
	Estimator Estimator
	// Weights 覆盖默认权重表，为 nil 时使用 DefaultWeights。
	Weights map[string]float64
}

func NewNode() *Node {
	return &Node{Estimator: &Heuristic{}}
}

func (n *Node) Name() string        { return "score.heuristic" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *Node) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	est := n.Estimator
	if est == nil {
		est = &Heuristic{}
	}
	weights := n.Weights
	if weights == nil {
		weights = DefaultWeights()
	}

	out := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Post == nil {
			continue
		}
		if ok := n.scoreOne(fctx, est, weights, c); !ok {
			continue
		}
		c.PutLabel("score_model", utils.Label{Value: est.Name(), Source: n.Name()})
		out = append(out, c)
	}

	core.SortByScore(out)
	return out, nil
}

// scoreOne 给单个候选打分。单个候选打分崩溃只剔除该候选（fail-soft），
// 不能拖垮整条流水线。
func (n *Node) scoreOne(
	fctx *core.FeedContext,
	est Estimator,
	weights map[string]float64,
	c *core.Candidate,
) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("node", n.Name()).
				Str("post_id", c.Post.ID).
				Interface("panic", r).
				Msg("scoring candidate panicked, candidate dropped")
			ok = false
		}
	}()

	probs := est.Estimate(fctx, c)

	scores := make([]core.ActionScore, 0, len(ActionOrder))
	var sum float64
	for _, action := range ActionOrder {
		w, okW := weights[action]
		if !okW {
			continue
		}
		p := probs[action]
		contrib := w * p
		sum += contrib
		scores = append(scores, core.ActionScore{
			Action:       action,
			Weight:       w,
			Probability:  p,
			Contribution: contrib,
		})
	}

	prefs := fctx.Prefs

	// in-network 加成：FriendsVsGlobal 越低（越偏全网）加成越小，
	// fvg=1 时不额外偏袒网内（配额已经做了倾斜）。
	inNetBoost := 1.0
	if c.Source == core.SourceInNetwork {
		inNetBoost = 1 + 0.5*(1-prefs.FriendsVsGlobal)
	}

	rec := RecencyScore(c.Post.Age(fctx.Now))
	recencyBoost := 0.1 * (1 - prefs.RecencyVsPopularity) * rec

	affinity := prefs.TopicAffinity(c.Post.Topics)
	topicBoost := 0.2 * ((1.5 - prefs.NicheVsViral) / 1.5) * (affinity - 0.5)

	c.ActionScores = scores
	c.BaseScore = inNetBoost * sum
	c.RecencyBoost = recencyBoost
	c.TopicBoost = topicBoost
	c.DiversityPenalty = 0
	c.Score = c.BaseScore + c.RecencyBoost + c.TopicBoost
	return true
}
