package core

import (
	"sort"

	"github.com/rushteam/feedkit/pkg/utils"
)

// 候选来源标记。合并去重时 in_network 优先于 out_of_network，外部注入源最后。
const (
	SourceInNetwork    = "in_network"
	SourceOutOfNetwork = "out_of_network"
	SourceExternal     = "external"
)

// SourcePriority 返回来源的合并优先级，值越小优先级越高。
// 未知来源排在所有已知来源之后。
func SourcePriority(source string) int {
	switch source {
	case SourceInNetwork:
		return 0
	case SourceOutOfNetwork:
		return 1
	case SourceExternal:
		return 2
	default:
		return 3
	}
}

// Candidate 是排序链路中的统一承载结构：帖子、作者、来源、分数、可解释信息。
// Post ID 是不可变身份；Score 随 score/rerank 阶段演进。
type Candidate struct {
	Post       *Post
	Author     *User
	ParentPost *Post // reply 的原帖（hydrate 阶段填充）
	QuotedPost *Post // quote 的原帖（hydrate 阶段填充）

	// Source 是候选来源标记（in_network / out_of_network / external），
	// 全链路透传，最终出现在 Explanation 中。
	Source string

	// Engagement 是打分用的互动计数（含 not_interested 等负向行为），
	// 由候选源从存储读出。key 见 core 的 Action 常量。
	Engagement map[string]int

	// Score 是当前有效分数；BaseScore / RecencyBoost / TopicBoost /
	// DiversityPenalty 是各阶段写入的分数构成，满足：
	// Score == BaseScore + RecencyBoost + TopicBoost - DiversityPenalty
	Score            float64
	BaseScore        float64
	RecencyBoost     float64
	TopicBoost       float64
	DiversityPenalty float64

	// ActionScores 是打分阶段的逐 action 明细，供 Explanation 使用。
	ActionScores []ActionScore

	// Explanation 由 explain 阶段物化（关闭解释时保持 nil）。
	Explanation *Explanation

	// Labels 用于解释与观测（来源、过滤原因等），全链路透传。
	Labels map[string]utils.Label
}

// NewCandidate 创建一个候选。post 不可为 nil。
func NewCandidate(post *Post, source string) *Candidate {
	return &Candidate{
		Post:       post,
		Source:     source,
		Engagement: make(map[string]int),
		Labels:     make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// EngagementCount 返回指定 action 的互动计数，缺失按 0。
func (c *Candidate) EngagementCount(action string) int {
	if c.Engagement == nil {
		return 0
	}
	return c.Engagement[action]
}

// Less 是全链路统一的最终排序规则，保证相同输入下输出逐字节一致：
// 1. 分数降序
// 2. 来源优先级升序（in_network < out_of_network < external）
// 3. 创建时间降序（新帖在前）
// 4. Post ID 字典序升序
//
// score / rerank 阶段的所有排序都必须使用此比较器，不允许各自定义 tie-break。
func Less(a, b *Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	pa, pb := SourcePriority(a.Source), SourcePriority(b.Source)
	if pa != pb {
		return pa < pb
	}
	if !a.Post.CreatedAt.Equal(b.Post.CreatedAt) {
		return a.Post.CreatedAt.After(b.Post.CreatedAt)
	}
	return a.Post.ID < b.Post.ID
}

// SortByScore 按 Less 稳定排序候选列表（nil 候选排在末尾）。
func SortByScore(cands []*Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i] == nil {
			return false
		}
		if cands[j] == nil {
			return true
		}
		return Less(cands[i], cands[j])
	})
}

// Dedup 按 Post ID 去重，保留第一个出现的候选，并合并重复候选的 Labels。
// 输入顺序即优先级顺序（调用方需先按来源优先级排好）。
func Dedup(cands []*Candidate) []*Candidate {
	seen := make(map[string]*Candidate, len(cands))
	out := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		if c == nil || c.Post == nil {
			continue
		}
		if old, ok := seen[c.Post.ID]; ok {
			for k, v := range c.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[c.Post.ID] = c
		out = append(out, c)
	}
	return out
}
