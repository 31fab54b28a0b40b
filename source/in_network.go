package source

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// InNetwork 是关注内候选源：viewer 关注的作者在回看窗口内的帖子，按时间降序。
// 每个作者最多 PerAuthorCap 条，防止单个高产作者刷满候选集。
// 配额来自合并预算的 FriendsVsGlobal 份额（见 QuotaSplit）；
// FollowingOnly 模式下 mixer 会单独给满预算。
type InNetwork struct {
	Store core.FeedStore

	// Budget 是合并候选总预算；实际配额按 fctx.Prefs.FriendsVsGlobal 拆分。
	Budget int

	// Window 是回看窗口，默认 7 天。
	Window time.Duration

	// PerAuthorCap 是单作者上限，默认 20。
	PerAuthorCap int

	// FullBudget 为 true 时跳过配额拆分，独占整个预算（Following 时间线）。
	FullBudget bool
}

func (s *InNetwork) Name() string        { return "source.in_network" }
func (s *InNetwork) Kind() pipeline.Kind { return pipeline.KindSource }

// Process 实现 Node 接口，直接调用 Fetch。
func (s *InNetwork) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	return s.Fetch(ctx, fctx)
}

// Fetch 实现 Source 接口。
func (s *InNetwork) Fetch(ctx context.Context, fctx *core.FeedContext) ([]*core.Candidate, error) {
	if s.Store == nil || fctx == nil || fctx.Viewer == nil {
		return nil, nil
	}
	following := fctx.Viewer.FollowingIDs
	if len(following) == 0 {
		return nil, nil
	}

	budget := s.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	quota := budget
	if !s.FullBudget {
		quota, _ = QuotaSplit(budget, fctx.Prefs.FriendsVsGlobal)
	}

	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}
	perAuthor := s.PerAuthorCap
	if perAuthor <= 0 {
		perAuthor = DefaultPerAuthorCap
	}

	posts, err := s.Store.GetRecentPostsByAuthors(ctx, following, window, perAuthor)
	if err != nil {
		return nil, err
	}
	if len(posts) > quota {
		posts = posts[:quota]
	}

	return buildCandidates(ctx, s.Store, posts, core.SourceInNetwork), nil
}

// 候选源默认参数。
const (
	DefaultBudget       = 350
	DefaultWindow       = 7 * 24 * time.Hour
	DefaultPerAuthorCap = 20
)

// buildCandidates 给一批帖子补齐作者与互动计数，构建候选。
// 单条读失败按 fail-soft 丢弃该候选（作者缺失由 hydrate 阶段兜底丢弃，
// 互动计数缺失按零处理）。
func buildCandidates(ctx context.Context, st core.FeedStore, posts []*core.Post, src string) []*core.Candidate {
	if len(posts) == 0 {
		return nil
	}

	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}
	authors, err := st.GetUsers(ctx, authorIDs)
	if err != nil {
		authors = nil
	}

	out := make([]*core.Candidate, 0, len(posts))
	for _, p := range posts {
		c := core.NewCandidate(p, src)
		if authors != nil {
			c.Author = authors[p.AuthorID]
		}
		if counts, err := st.GetEngagementCounts(ctx, p.ID); err == nil {
			c.Engagement = counts
		}
		out = append(out, c)
	}
	return out
}
