package rerank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// TopN 是终选节点：沿最终分数序取前 Limit 条。
// MaxPerAuthor > 0 时在截断后的页内执行同作者上限，超出的候选被丢弃
// 且不从截断线以下回填，结果可以少于 Limit，宁缺毋滥。
type TopN struct {
	Limit        int
	MaxPerAuthor int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	_ *core.FeedContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Limit <= 0 {
		return nil, core.ErrInvalidRequest
	}

	core.SortByScore(candidates)

	// 先截断再限作者：截断线以下的候选已经出局，不因页内丢弃而晋升
	page := candidates
	if len(page) > n.Limit {
		page = page[:n.Limit]
	}

	out := make([]*core.Candidate, 0, len(page))
	perAuthor := make(map[string]int)
	for _, c := range page {
		if c == nil || c.Post == nil {
			continue
		}
		if n.MaxPerAuthor > 0 && perAuthor[c.Post.AuthorID] >= n.MaxPerAuthor {
			continue
		}
		perAuthor[c.Post.AuthorID]++
		out = append(out, c)
	}
	return out, nil
}
