// Package mixer 是请求级编排层：组装候选源、过滤、打分、重排与解释
// 构建，对外提供单一入口 HomeMixer.Rank。
package mixer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/explain"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/hydrate"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/rerank"
	"github.com/rushteam/feedkit/score"
	"github.com/rushteam/feedkit/source"
)

// 编排层默认参数。
const (
	DefaultSeenWindow    = 7 * 24 * time.Hour
	DefaultMaxAge        = 7 * 24 * time.Hour
	DefaultMaxPerAuthor  = 3
	DefaultSourceTimeout = 2 * time.Second
)

// HomeMixer 把整条排序链路装配成一个可复用的服务对象。
// 一次 Rank 调用即一条独立链路，对存储只读；已看回写由调用方在
// 响应送达后通过 MarkDelivered 完成。
type HomeMixer struct {
	Store     core.FeedStore
	PrefStore core.PreferenceStore
	SeenStore core.SeenStore

	// News 非 nil 时作为外部注入源参与 fan-out（FollowingOnly 除外）。
	News *source.News

	// Engagement 非 nil 时在打分前刷新互动计数（如 feast.EngagementNode）。
	Engagement pipeline.Node

	// PolicyExpr 是可选的 CEL 策略表达式，命中即剔除。
	PolicyExpr string

	// Budget 是合并候选总预算，默认 source.DefaultBudget。
	Budget int

	// SeenWindow / MaxAge / MaxPerAuthor / SourceTimeout 为零时取默认值。
	SeenWindow    time.Duration
	MaxAge        time.Duration
	MaxPerAuthor  int
	SourceTimeout time.Duration

	// Now 可注入固定时钟（测试用），缺省为 time.Now。
	Now func() time.Time
}

func NewHomeMixer(store core.FeedStore, prefs core.PreferenceStore, seen core.SeenStore) *HomeMixer {
	return &HomeMixer{
		Store:     store,
		PrefStore: prefs,
		SeenStore: seen,
	}
}

// Rank 执行一次信息流排序请求。
//
// 错误只在请求本身非法时返回（未知用户、非正 limit、坏游标）；
// 链路内部失败一律 fail-soft，最坏情况是空结果而非错误。
func (m *HomeMixer) Rank(ctx context.Context, req *FeedRequest) (*FeedResponse, error) {
	if req == nil || req.UserID == "" || req.Limit <= 0 {
		return nil, core.ErrInvalidRequest
	}
	offset, err := decodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	viewer, err := m.Store.GetUser(ctx, req.UserID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.ErrUnknownUser
		}
		return nil, err
	}

	fctx := m.buildContext(ctx, req, viewer)

	p := m.buildPipeline(req, offset)
	cands, err := p.Run(ctx, fctx, nil)
	if err != nil {
		return nil, err
	}

	// 翻页：链路产出前 offset+limit 条，本页取尾部切片。
	if offset >= len(cands) {
		cands = nil
	} else {
		cands = cands[offset:]
	}

	// 解释在翻页切片之后构建，Rank 序号是页内位置
	builder := &explain.Builder{Enabled: req.IncludeExplanations}
	cands, _ = builder.Process(ctx, fctx, cands)

	items := make([]*FeedItem, 0, len(cands))
	for _, c := range cands {
		items = append(items, &FeedItem{
			Post:        c.Post,
			Author:      c.Author,
			ParentPost:  c.ParentPost,
			QuotedPost:  c.QuotedPost,
			Score:       c.Score,
			Explanation: c.Explanation,
		})
	}

	resp := &FeedResponse{
		UserID:      req.UserID,
		Items:       items,
		GeneratedAt: fctx.Now,
	}
	if len(items) == req.Limit {
		resp.NextCursor = encodeCursor(offset + len(items))
	}

	log.Debug().
		Str("user_id", req.UserID).
		Int("limit", req.Limit).
		Int("returned", len(items)).
		Bool("following_only", req.FollowingOnly).
		Msg("feed ranked")
	return resp, nil
}

// MarkDelivered 把一次响应中的帖子记入已看历史。
// 调用方应在响应真正送达用户之后调用，而不是在 Rank 内部。
func (m *HomeMixer) MarkDelivered(ctx context.Context, resp *FeedResponse) error {
	if m.SeenStore == nil || resp == nil || len(resp.Items) == 0 {
		return nil
	}
	return m.SeenStore.MarkSeen(ctx, resp.UserID, resp.PostIDs(), resp.GeneratedAt)
}

// buildContext 在请求开始时取好全部请求级状态：偏好、已看集合、固定时钟。
func (m *HomeMixer) buildContext(ctx context.Context, req *FeedRequest, viewer *core.User) *core.FeedContext {
	fctx := core.NewFeedContext(req.UserID)
	fctx.Viewer = viewer
	if m.Now != nil {
		fctx.Now = m.Now()
	}

	if req.Prefs != nil {
		fctx.Prefs = req.Prefs.Clamp()
	} else if m.PrefStore != nil {
		fctx.Prefs = m.PrefStore.GetPrefs(ctx, req.UserID)
	}

	if m.SeenStore != nil {
		window := m.SeenWindow
		if window <= 0 {
			window = DefaultSeenWindow
		}
		seen, err := m.SeenStore.GetSeenPostIDs(ctx, req.UserID, window)
		if err != nil {
			// 已看历史不可用时宁可重复展示，也不让请求失败
			log.Warn().Err(err).Str("user_id", req.UserID).Msg("seen history unavailable")
		} else {
			fctx.SeenPostIDs = seen
		}
	}
	return fctx
}

func (m *HomeMixer) buildPipeline(req *FeedRequest, offset int) *pipeline.Pipeline {
	budget := m.Budget
	maxAge := m.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	maxPerAuthor := m.MaxPerAuthor
	if maxPerAuthor <= 0 {
		maxPerAuthor = DefaultMaxPerAuthor
	}
	timeout := m.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}

	var sources []source.Source
	if req.FollowingOnly {
		sources = []source.Source{
			&source.InNetwork{Store: m.Store, Budget: budget, FullBudget: true},
		}
	} else {
		sources = []source.Source{
			&source.InNetwork{Store: m.Store, Budget: budget},
			&source.OutOfNetwork{Store: m.Store, Budget: budget},
		}
		if m.News != nil {
			sources = append(sources, m.News)
		}
	}

	filters := []filter.Filter{
		&filter.SelfPost{},
		&filter.BlockedAuthor{},
		&filter.Seen{},
		&filter.MaxAge{Max: maxAge},
		&filter.Reference{},
	}
	if m.PolicyExpr != "" {
		filters = append(filters, &filter.Rule{Expr: m.PolicyExpr})
	}

	nodes := []pipeline.Node{
		&source.Fanout{Sources: sources, Timeout: timeout},
		&hydrate.Hydrator{Store: m.Store},
	}
	if m.Engagement != nil {
		nodes = append(nodes, m.Engagement)
	}
	nodes = append(nodes,
		&filter.FilterNode{Filters: filters},
		score.NewNode(),
		&rerank.AuthorDiversity{},
		&rerank.TopN{Limit: offset + req.Limit, MaxPerAuthor: maxPerAuthor},
	)
	return &pipeline.Pipeline{Nodes: nodes}
}
