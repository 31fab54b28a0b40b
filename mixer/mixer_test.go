package mixer

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/store"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func testMixer(t *testing.T) (*HomeMixer, *store.MemoryFeedStore) {
	t.Helper()
	st := store.NewMemoryFeedStore()
	st.Now = func() time.Time { return testNow }

	st.AddUser(&core.User{
		ID: "alice", Handle: "alice",
		FollowingIDs: []string{"bob", "carol"},
		BlockedIDs:   []string{"spammer"},
	})
	st.AddUser(&core.User{ID: "bob", Handle: "bob"})
	st.AddUser(&core.User{ID: "carol", Handle: "carol"})
	st.AddUser(&core.User{ID: "dave", Handle: "dave"})
	st.AddUser(&core.User{ID: "spammer", Handle: "spammer"})

	st.AddPost(&core.Post{
		ID: "bob1", AuthorID: "bob", Type: core.PostOriginal,
		Topics: []core.Topic{core.TopicTech}, CreatedAt: testNow.Add(-1 * time.Hour),
	})
	st.AddPost(&core.Post{
		ID: "bob2", AuthorID: "bob", Type: core.PostOriginal,
		Topics: []core.Topic{core.TopicTech}, CreatedAt: testNow.Add(-3 * time.Hour),
	})
	st.AddPost(&core.Post{
		ID: "carol1", AuthorID: "carol", Type: core.PostOriginal,
		Topics: []core.Topic{core.TopicCulture}, CreatedAt: testNow.Add(-2 * time.Hour),
	})
	st.AddPost(&core.Post{
		ID: "dave1", AuthorID: "dave", Type: core.PostOriginal,
		Topics: []core.Topic{core.TopicFinance}, CreatedAt: testNow.Add(-4 * time.Hour),
		LikeCount: 50,
	})
	st.AddPost(&core.Post{
		ID: "spam1", AuthorID: "spammer", Type: core.PostOriginal,
		CreatedAt: testNow.Add(-1 * time.Hour),
	})
	st.AddPost(&core.Post{
		ID: "alice1", AuthorID: "alice", Type: core.PostOriginal,
		CreatedAt: testNow.Add(-1 * time.Hour),
	})
	st.AddPost(&core.Post{
		ID: "stale1", AuthorID: "dave", Type: core.PostOriginal,
		CreatedAt: testNow.Add(-30 * 24 * time.Hour),
	})
	st.SetEngagement("dave1", map[string]int{core.ActionLike: 50, core.ActionRepost: 10})

	m := NewHomeMixer(st, st, st)
	m.Now = func() time.Time { return testNow }
	return m, st
}

func TestRank(t *testing.T) {
	m, _ := testMixer(t)

	resp, err := m.Rank(context.Background(), &FeedRequest{
		UserID:              "alice",
		Limit:               10,
		IncludeExplanations: true,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected a non-empty feed")
	}

	seen := map[string]bool{}
	for i, item := range resp.Items {
		id := item.Post.ID
		if seen[id] {
			t.Errorf("duplicate post %s in feed", id)
		}
		seen[id] = true

		switch item.Post.AuthorID {
		case "alice":
			t.Error("own post leaked into feed")
		case "spammer":
			t.Error("blocked author leaked into feed")
		}
		if id == "stale1" {
			t.Error("stale post leaked into feed")
		}
		if item.Author == nil {
			t.Errorf("item %s missing author", id)
		}

		e := item.Explanation
		if e == nil {
			t.Fatalf("item %s missing explanation", id)
		}
		if e.Rank != i+1 {
			t.Errorf("item %s rank = %d, want %d (dense)", id, e.Rank, i+1)
		}
		sum := e.BaseScore + e.RecencyBoost + e.TopicBoost - e.DiversityPenalty
		if diff := e.FinalScore - sum; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("item %s: final score %v != components %v", id, e.FinalScore, sum)
		}
	}

	// in_network 候选必须在场
	if !seen["bob1"] || !seen["carol1"] {
		t.Errorf("followed authors missing from feed: %v", seen)
	}
	if resp.GeneratedAt != testNow {
		t.Errorf("GeneratedAt = %v, want fixed clock", resp.GeneratedAt)
	}
}

func TestRankDeterministic(t *testing.T) {
	m, _ := testMixer(t)
	req := &FeedRequest{UserID: "alice", Limit: 10, IncludeExplanations: true}

	first, err := m.Rank(context.Background(), req)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := m.Rank(context.Background(), req)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical requests produced different responses")
		}
	}
}

func TestRankExplanationToggleKeepsOrder(t *testing.T) {
	m, _ := testMixer(t)

	withExp, err := m.Rank(context.Background(), &FeedRequest{UserID: "alice", Limit: 10, IncludeExplanations: true})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	without, err := m.Rank(context.Background(), &FeedRequest{UserID: "alice", Limit: 10})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if len(withExp.Items) != len(without.Items) {
		t.Fatal("explanation toggle changed result size")
	}
	for i := range withExp.Items {
		if withExp.Items[i].Post.ID != without.Items[i].Post.ID {
			t.Fatal("explanation toggle changed ordering")
		}
		if without.Items[i].Explanation != nil {
			t.Error("explanations present while disabled")
		}
	}
}

func TestRankFollowingOnly(t *testing.T) {
	m, _ := testMixer(t)

	resp, err := m.Rank(context.Background(), &FeedRequest{
		UserID:              "alice",
		Limit:               10,
		FollowingOnly:       true,
		IncludeExplanations: true,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("following timeline empty")
	}
	for _, item := range resp.Items {
		if item.Post.AuthorID != "bob" && item.Post.AuthorID != "carol" {
			t.Errorf("non-followed author %s in following-only feed", item.Post.AuthorID)
		}
		if item.Explanation.Source != core.SourceInNetwork {
			t.Errorf("source = %s, want in_network", item.Explanation.Source)
		}
	}
}

func TestRankInvalidRequests(t *testing.T) {
	m, _ := testMixer(t)

	tests := []struct {
		name string
		req  *FeedRequest
	}{
		{name: "nil request", req: nil},
		{name: "empty user", req: &FeedRequest{Limit: 10}},
		{name: "zero limit", req: &FeedRequest{UserID: "alice"}},
		{name: "negative limit", req: &FeedRequest{UserID: "alice", Limit: -1}},
		{name: "garbage cursor", req: &FeedRequest{UserID: "alice", Limit: 10, Cursor: "???"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Rank(context.Background(), tt.req); !core.IsInvalidRequest(err) {
				t.Errorf("want ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestRankUnknownUser(t *testing.T) {
	m, _ := testMixer(t)
	_, err := m.Rank(context.Background(), &FeedRequest{UserID: "ghost", Limit: 10})
	if err != core.ErrUnknownUser {
		t.Errorf("want ErrUnknownUser, got %v", err)
	}
}

func TestRankEmptyStore(t *testing.T) {
	st := store.NewMemoryFeedStore()
	st.AddUser(&core.User{ID: "loner"})
	m := NewHomeMixer(st, st, st)

	resp, err := m.Rank(context.Background(), &FeedRequest{UserID: "loner", Limit: 10})
	if err != nil {
		t.Fatalf("empty inputs must not error, got %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("got %d items, want 0", len(resp.Items))
	}
	if resp.NextCursor != "" {
		t.Errorf("next cursor = %q, want empty", resp.NextCursor)
	}
}

func TestRankPagination(t *testing.T) {
	m, st := testMixer(t)
	// 多塞一些帖子保证能翻页
	for i := 0; i < 6; i++ {
		st.AddPost(&core.Post{
			ID:        fmt.Sprintf("extra%d", i),
			AuthorID:  "dave",
			Type:      core.PostOriginal,
			CreatedAt: testNow.Add(-time.Duration(5+i) * time.Hour),
		})
	}
	m.MaxPerAuthor = 100

	page1, err := m.Rank(context.Background(), &FeedRequest{UserID: "alice", Limit: 3})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(page1.Items) != 3 || page1.NextCursor == "" {
		t.Fatalf("page1: %d items, cursor %q", len(page1.Items), page1.NextCursor)
	}

	page2, err := m.Rank(context.Background(), &FeedRequest{UserID: "alice", Limit: 3, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	ids := map[string]bool{}
	for _, item := range page1.Items {
		ids[item.Post.ID] = true
	}
	for _, item := range page2.Items {
		if ids[item.Post.ID] {
			t.Errorf("post %s appears on both pages", item.Post.ID)
		}
	}
}

func TestMarkDeliveredExcludesFromNextFeed(t *testing.T) {
	m, _ := testMixer(t)
	ctx := context.Background()

	first, err := m.Rank(ctx, &FeedRequest{UserID: "alice", Limit: 2})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if err := m.MarkDelivered(ctx, first); err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}

	second, err := m.Rank(ctx, &FeedRequest{UserID: "alice", Limit: 10})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	delivered := map[string]bool{}
	for _, item := range first.Items {
		delivered[item.Post.ID] = true
	}
	for _, item := range second.Items {
		if delivered[item.Post.ID] {
			t.Errorf("already-seen post %s returned again", item.Post.ID)
		}
	}
}

// 多样性罚分必须能把同作者第二条挤出小页：anna 一小时内连发三条
// （带 not_interested 历史），ben 昨天发过一条热帖。罚分前 anna 的
// 第二条仍略高于 ben，罚分大于这个差距，最终页是 anna 最新一条 + ben。
func TestRankDiversityScenarioFollowingOnly(t *testing.T) {
	st := store.NewMemoryFeedStore()
	st.Now = func() time.Time { return testNow }

	st.AddUser(&core.User{ID: "u", Handle: "u", FollowingIDs: []string{"anna", "ben"}})
	st.AddUser(&core.User{ID: "anna", Handle: "anna"})
	st.AddUser(&core.User{ID: "ben", Handle: "ben"})

	for i, age := range []time.Duration{10 * time.Minute, 30 * time.Minute, 50 * time.Minute} {
		id := fmt.Sprintf("anna%d", i+1)
		st.AddPost(&core.Post{ID: id, AuthorID: "anna", Type: core.PostOriginal, CreatedAt: testNow.Add(-age)})
		st.SetEngagement(id, map[string]int{core.ActionNotInterested: 8})
	}
	st.AddPost(&core.Post{ID: "ben1", AuthorID: "ben", Type: core.PostOriginal, CreatedAt: testNow.Add(-24 * time.Hour)})
	st.SetEngagement("ben1", map[string]int{core.ActionLike: 40, core.ActionRepost: 10})

	m := NewHomeMixer(st, st, st)
	m.Now = func() time.Time { return testNow }

	resp, err := m.Rank(context.Background(), &FeedRequest{
		UserID:              "u",
		Limit:               2,
		FollowingOnly:       true,
		IncludeExplanations: true,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(resp.Items))
	}
	if resp.Items[0].Post.ID != "anna1" || resp.Items[1].Post.ID != "ben1" {
		t.Fatalf("feed = [%s %s], want [anna1 ben1]",
			resp.Items[0].Post.ID, resp.Items[1].Post.ID)
	}
	if resp.Items[1].Explanation.DiversityPenalty != 0 {
		t.Error("ben's single post must not carry a diversity penalty")
	}

	// 关掉多样性、其余保持默认：anna 的第二条回到第二位，证明上面
	// 的结果确实是罚分决定的
	prefs := core.DefaultPrefs()
	prefs.DiversityStrength = 0
	noDiv, err := m.Rank(context.Background(), &FeedRequest{
		UserID:        "u",
		Limit:         2,
		FollowingOnly: true,
		Prefs:         &prefs,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if noDiv.Items[0].Post.ID != "anna1" || noDiv.Items[1].Post.ID != "anna2" {
		t.Errorf("without diversity feed = [%s %s], want [anna1 anna2]",
			noDiv.Items[0].Post.ID, noDiv.Items[1].Post.ID)
	}
}

func TestRankPrefsOverride(t *testing.T) {
	m, _ := testMixer(t)

	// 极端偏好：全看热度。dave1 是唯一带互动的帖子，应当登顶。
	prefs := core.DefaultPrefs()
	prefs.RecencyVsPopularity = 1.0
	prefs.FriendsVsGlobal = 0.0
	prefs.DiversityStrength = 0

	resp, err := m.Rank(context.Background(), &FeedRequest{
		UserID: "alice",
		Limit:  10,
		Prefs:  &prefs,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Post.ID != "dave1" {
		t.Errorf("popularity-only prefs should rank dave1 first, got %v", resp.Items[0].Post.ID)
	}
}
