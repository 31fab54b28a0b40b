// Package explain 将终选候选的分数构成物化为 core.Explanation。
package explain

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// Builder 是解释构建节点，必须排在终选（rerank.TopN）之后：
// 此时顺序即最终顺序，Rank 按位置 1 起始稠密编号。
//
// 节点从不改动分数与顺序，开关 Enabled 只决定 Explanation 是否物化，
// 同输入下两种开关的输出帖子序列完全一致。
type Builder struct {
	Enabled bool
}

func (n *Builder) Name() string        { return "explain.builder" }
func (n *Builder) Kind() pipeline.Kind { return pipeline.KindExplain }

func (n *Builder) Process(
	_ context.Context,
	_ *core.FeedContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if !n.Enabled {
		return candidates, nil
	}
	for i, c := range candidates {
		if c == nil || c.Post == nil {
			continue
		}
		c.Explanation = &core.Explanation{
			PostID:           c.Post.ID,
			FinalScore:       c.Score,
			Rank:             i + 1,
			Source:           c.Source,
			ActionScores:     c.ActionScores,
			BaseScore:        c.BaseScore,
			DiversityPenalty: c.DiversityPenalty,
			RecencyBoost:     c.RecencyBoost,
			TopicBoost:       c.TopicBoost,
		}
	}
	return candidates, nil
}
