package source

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// OutOfNetwork 是关注外候选源：从全局候选池中选取非关注作者的帖子。
//
// 选取策略分两段：
//  1. 兴趣段：按“主题对齐度 + 热度先验”降序取大头
//  2. 探索段：按时间降序补足配额，不看主题，保证候选集不会
//     收缩到用户已有兴趣（否则多样性塌缩），Exploration 越高探索段越大
//
// 两段内部排序都带统一 tie-break（时间降序、ID 升序），输出确定。
type OutOfNetwork struct {
	Store core.FeedStore

	// Budget 同 InNetwork；实际配额为预算的 out_of_network 份额。
	Budget int

	// Window 是候选池回看窗口，默认 7 天。
	Window time.Duration
}

func (s *OutOfNetwork) Name() string        { return "source.out_of_network" }
func (s *OutOfNetwork) Kind() pipeline.Kind { return pipeline.KindSource }

// Process 实现 Node 接口，直接调用 Fetch。
func (s *OutOfNetwork) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	return s.Fetch(ctx, fctx)
}

// Fetch 实现 Source 接口。
func (s *OutOfNetwork) Fetch(ctx context.Context, fctx *core.FeedContext) ([]*core.Candidate, error) {
	if s.Store == nil || fctx == nil {
		return nil, nil
	}

	budget := s.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	_, quota := QuotaSplit(budget, fctx.Prefs.FriendsVsGlobal)

	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}

	var viewerTopics []core.Topic
	following := map[string]bool{}
	if fctx.Viewer != nil {
		viewerTopics = fctx.Viewer.Topics
		for _, id := range fctx.Viewer.FollowingIDs {
			following[id] = true
		}
	}

	// 候选池取配额的两倍，给排除关注作者和两段选取留余量。
	pool, err := s.Store.GetCandidatePool(ctx, viewerTopics, window, quota*2)
	if err != nil {
		return nil, err
	}

	oon := make([]*core.Post, 0, len(pool))
	for _, p := range pool {
		if p == nil || following[p.AuthorID] {
			continue
		}
		oon = append(oon, p)
	}
	picked := pickByAffinity(oon, fctx.Prefs, quota)

	return buildCandidates(ctx, s.Store, picked, core.SourceOutOfNetwork), nil
}

// pickByAffinity 执行兴趣段 + 探索段的两段选取。
func pickByAffinity(posts []*core.Post, prefs core.Prefs, quota int) []*core.Post {
	if quota <= 0 || len(posts) == 0 {
		return nil
	}
	if len(posts) <= quota {
		return posts
	}

	// 探索段份额随 Exploration 线性增长，但始终保留一个非零下限。
	exploreN := int(float64(quota) * (0.15 + 0.35*prefs.Exploration))
	interestN := quota - exploreN

	byAffinity := make([]*core.Post, len(posts))
	copy(byAffinity, posts)
	sort.SliceStable(byAffinity, func(i, j int) bool {
		si, sj := selectionScore(byAffinity[i], prefs), selectionScore(byAffinity[j], prefs)
		if si != sj {
			return si > sj
		}
		if !byAffinity[i].CreatedAt.Equal(byAffinity[j].CreatedAt) {
			return byAffinity[i].CreatedAt.After(byAffinity[j].CreatedAt)
		}
		return byAffinity[i].ID < byAffinity[j].ID
	})

	chosen := make(map[string]bool, quota)
	out := make([]*core.Post, 0, quota)
	for _, p := range byAffinity {
		if len(out) >= interestN {
			break
		}
		chosen[p.ID] = true
		out = append(out, p)
	}

	// 探索段：按时间降序补足，不看主题。输入 posts 已按时间降序。
	for _, p := range posts {
		if len(out) >= quota {
			break
		}
		if chosen[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// selectionScore 是候选池内的粗选分：主题对齐度加一个有界的热度先验。
// 这里只用帖子上的展示计数器做先验，精细打分在 score 阶段完成。
func selectionScore(p *core.Post, prefs core.Prefs) float64 {
	affinity := prefs.TopicAffinity(p.Topics)
	pop := float64(p.LikeCount) + 2*float64(p.RepostCount) + 1.5*float64(p.ReplyCount)
	return affinity + 0.2*math.Tanh(pop/50)
}
