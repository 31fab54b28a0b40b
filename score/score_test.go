package score

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func scoreFctx(prefs core.Prefs) *core.FeedContext {
	fctx := core.NewFeedContext("viewer")
	fctx.Prefs = prefs.Clamp()
	fctx.Now = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return fctx
}

func scoredCandidate(id string, age time.Duration, fctx *core.FeedContext, engagement map[string]int) *core.Candidate {
	c := core.NewCandidate(&core.Post{
		ID:        id,
		AuthorID:  "author_" + id,
		Type:      core.PostOriginal,
		CreatedAt: fctx.Now.Add(-age),
	}, core.SourceOutOfNetwork)
	for k, v := range engagement {
		c.Engagement[k] = v
	}
	return c
}

func runScore(t *testing.T, fctx *core.FeedContext, cands ...*core.Candidate) []*core.Candidate {
	t.Helper()
	out, err := NewNode().Process(context.Background(), fctx, cands)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return out
}

func TestScoreDeterministic(t *testing.T) {
	fctx := scoreFctx(core.DefaultPrefs())
	build := func() *core.Candidate {
		return scoredCandidate("p1", 3*time.Hour, fctx, map[string]int{
			core.ActionLike: 15, core.ActionRepost: 4, core.ActionReply: 7,
		})
	}

	first := runScore(t, fctx, build())[0].Score
	for i := 0; i < 5; i++ {
		if got := runScore(t, fctx, build())[0].Score; got != first {
			t.Fatalf("score drifted: %v vs %v", got, first)
		}
	}
}

func TestScoreIdentity(t *testing.T) {
	fctx := scoreFctx(core.DefaultPrefs())
	c := scoredCandidate("p1", 5*time.Hour, fctx, map[string]int{
		core.ActionLike: 30, core.ActionNotInterested: 4,
	})
	out := runScore(t, fctx, c)

	got := out[0]
	sum := got.BaseScore + got.RecencyBoost + got.TopicBoost - got.DiversityPenalty
	if math.Abs(got.Score-sum) > 1e-9 {
		t.Errorf("Score = %v, components sum to %v", got.Score, sum)
	}

	// BaseScore 必须等于 ActionScores 贡献之和（OON 无网内加成）
	var contrib float64
	for _, as := range got.ActionScores {
		if math.Abs(as.Contribution-as.Weight*as.Probability) > 1e-9 {
			t.Errorf("action %s: contribution %v != weight*prob %v", as.Action, as.Contribution, as.Weight*as.Probability)
		}
		contrib += as.Contribution
	}
	if math.Abs(got.BaseScore-contrib) > 1e-9 {
		t.Errorf("BaseScore = %v, action contributions sum to %v", got.BaseScore, contrib)
	}
	if len(got.ActionScores) != len(ActionOrder) {
		t.Errorf("got %d action scores, want %d", len(got.ActionScores), len(ActionOrder))
	}
}

func TestNegativeSignalsLowerScore(t *testing.T) {
	fctx := scoreFctx(core.DefaultPrefs())

	clean := scoredCandidate("p1", 2*time.Hour, fctx, map[string]int{core.ActionLike: 10})
	flagged := scoredCandidate("p2", 2*time.Hour, fctx, map[string]int{
		core.ActionLike: 10, core.ActionNotInterested: 8,
	})

	out := runScore(t, fctx, clean, flagged)
	var cleanScore, flaggedScore float64
	for _, c := range out {
		switch c.Post.ID {
		case "p1":
			cleanScore = c.Score
		case "p2":
			flaggedScore = c.Score
		}
	}
	if flaggedScore >= cleanScore {
		t.Errorf("not_interested history must lower score: flagged=%v clean=%v", flaggedScore, cleanScore)
	}
}

func TestNegativeSignalStrengthZeroDisablesPenalty(t *testing.T) {
	prefs := core.DefaultPrefs()
	prefs.NegativeSignalStrength = 0
	fctx := scoreFctx(prefs)

	c := scoredCandidate("p1", 2*time.Hour, fctx, map[string]int{
		core.ActionLike: 10, core.ActionReport: 9,
	})
	out := runScore(t, fctx, c)
	for _, as := range out[0].ActionScores {
		if as.Weight < 0 && as.Contribution != 0 {
			t.Errorf("action %s contributes %v with zero negative strength", as.Action, as.Contribution)
		}
	}
}

func TestRecencyPreferenceRanksFresherFirst(t *testing.T) {
	prefs := core.DefaultPrefs()
	prefs.RecencyVsPopularity = 0 // 全看新鲜度
	fctx := scoreFctx(prefs)

	// 旧帖热度更高，但纯新鲜度偏好下新帖必须在前
	fresh := scoredCandidate("fresh", 1*time.Hour, fctx, map[string]int{core.ActionLike: 1})
	viral := scoredCandidate("viral", 48*time.Hour, fctx, map[string]int{
		core.ActionLike: 500, core.ActionRepost: 200,
	})

	out := runScore(t, fctx, viral, fresh)
	if out[0].Post.ID != "fresh" {
		t.Errorf("recency preference should rank fresh first, got %s", out[0].Post.ID)
	}
}

func TestPopularityPreferenceRanksViralFirst(t *testing.T) {
	prefs := core.DefaultPrefs()
	prefs.RecencyVsPopularity = 1 // 全看热度
	fctx := scoreFctx(prefs)

	fresh := scoredCandidate("fresh", 1*time.Hour, fctx, nil)
	viral := scoredCandidate("viral", 48*time.Hour, fctx, map[string]int{
		core.ActionLike: 500, core.ActionRepost: 200,
	})

	out := runScore(t, fctx, viral, fresh)
	if out[0].Post.ID != "viral" {
		t.Errorf("popularity preference should rank viral first, got %s", out[0].Post.ID)
	}
}

func TestInNetworkBoost(t *testing.T) {
	prefs := core.DefaultPrefs()
	prefs.FriendsVsGlobal = 0 // 最大网内加成 1.5x
	fctx := scoreFctx(prefs)

	engagement := map[string]int{core.ActionLike: 10}
	inNet := scoredCandidate("in", 2*time.Hour, fctx, engagement)
	inNet.Source = core.SourceInNetwork
	oon := scoredCandidate("oon", 2*time.Hour, fctx, engagement)

	out := runScore(t, fctx, oon, inNet)
	var inBase, oonBase float64
	for _, c := range out {
		if c.Post.ID == "in" {
			inBase = c.BaseScore
		} else {
			oonBase = c.BaseScore
		}
	}
	if math.Abs(inBase-1.5*oonBase) > 1e-9 {
		t.Errorf("in-network base = %v, want 1.5x of %v", inBase, oonBase)
	}
}

func TestTopicBoostDirection(t *testing.T) {
	prefs := core.DefaultPrefs()
	prefs.TechWeight = 1.0
	prefs.PoliticsWeight = 0.0
	prefs.NicheVsViral = 0 // 小众偏好放大主题项
	fctx := scoreFctx(prefs)

	liked := scoredCandidate("tech", 2*time.Hour, fctx, nil)
	liked.Post.Topics = []core.Topic{core.TopicTech}
	disliked := scoredCandidate("politics", 2*time.Hour, fctx, nil)
	disliked.Post.Topics = []core.Topic{core.TopicPolitics}
	neutral := scoredCandidate("plain", 2*time.Hour, fctx, nil)

	out := runScore(t, fctx, liked, disliked, neutral)
	boosts := map[string]float64{}
	for _, c := range out {
		boosts[c.Post.ID] = c.TopicBoost
	}
	if boosts["tech"] <= 0 {
		t.Errorf("aligned topic boost = %v, want > 0", boosts["tech"])
	}
	if boosts["politics"] >= 0 {
		t.Errorf("misaligned topic boost = %v, want < 0", boosts["politics"])
	}
	if boosts["plain"] != 0 {
		t.Errorf("untagged post topic boost = %v, want 0", boosts["plain"])
	}
}

func TestNicheVsViralExtremes(t *testing.T) {
	// 热度分量的端点闭式值：bounded·(0.5+nvv)/1.5
	bounded := math.Tanh(6.0)*0.5 + 0.5 // likes 40 + reposts 10 → raw 60
	if got := PopularityScore(40, 10, 0, 0); math.Abs(got-bounded/3) > 1e-9 {
		t.Errorf("PopularityScore(nvv=0) = %v, want %v", got, bounded/3)
	}
	if got := PopularityScore(40, 10, 0, 1); math.Abs(got-bounded) > 1e-9 {
		t.Errorf("PopularityScore(nvv=1) = %v, want %v", got, bounded)
	}

	// 主题项在 nvv=1 时收缩为 nvv=0 的三分之一，但不反向
	topicBoost := func(nvv float64) float64 {
		prefs := core.DefaultPrefs()
		prefs.NicheVsViral = nvv
		prefs.TechWeight = 1.0
		fctx := scoreFctx(prefs)
		c := scoredCandidate("tech", 2*time.Hour, fctx, nil)
		c.Post.Topics = []core.Topic{core.TopicTech}
		return runScore(t, fctx, c)[0].TopicBoost
	}
	niche, viral := topicBoost(0), topicBoost(1)
	if viral <= 0 {
		t.Errorf("aligned topic boost flipped sign at nvv=1: %v", viral)
	}
	if math.Abs(niche-3*viral) > 1e-9 {
		t.Errorf("topic boost at nvv=0 = %v, want 3x of nvv=1 value %v", niche, viral)
	}
}

func TestRecencyScoreMonotone(t *testing.T) {
	prev := RecencyScore(0)
	if prev != 1 {
		t.Errorf("RecencyScore(0) = %v, want 1", prev)
	}
	for _, h := range []int{1, 2, 6, 24, 168, 10000} {
		cur := RecencyScore(time.Duration(h) * time.Hour)
		if cur >= prev || cur <= 0 {
			t.Errorf("RecencyScore not strictly decreasing positive at %dh: %v >= %v", h, cur, prev)
		}
		prev = cur
	}
}
