package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/store"
)

func seedStore(now time.Time) *store.MemoryFeedStore {
	st := store.NewMemoryFeedStore()
	st.Now = func() time.Time { return now }

	st.AddUser(&core.User{ID: "viewer", FollowingIDs: []string{"friend1", "friend2"}})
	st.AddUser(&core.User{ID: "friend1"})
	st.AddUser(&core.User{ID: "friend2"})
	st.AddUser(&core.User{ID: "stranger"})

	st.AddPost(&core.Post{ID: "f1", AuthorID: "friend1", Type: core.PostOriginal, CreatedAt: now.Add(-1 * time.Hour)})
	st.AddPost(&core.Post{ID: "f2", AuthorID: "friend2", Type: core.PostOriginal, CreatedAt: now.Add(-2 * time.Hour)})
	st.AddPost(&core.Post{ID: "old", AuthorID: "friend1", Type: core.PostOriginal, CreatedAt: now.Add(-30 * 24 * time.Hour)})
	st.AddPost(&core.Post{ID: "s1", AuthorID: "stranger", Type: core.PostOriginal, CreatedAt: now.Add(-1 * time.Hour)})
	return st
}

func newFctx(viewer *core.User, now time.Time) *core.FeedContext {
	fctx := core.NewFeedContext(viewer.ID)
	fctx.Viewer = viewer
	fctx.Now = now
	return fctx
}

func TestInNetworkFetch(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	st := seedStore(now)
	viewer, _ := st.GetUser(context.Background(), "viewer")

	s := &InNetwork{Store: st}
	cands, err := s.Fetch(context.Background(), newFctx(viewer, now))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2 (window excludes old, stranger not followed)", len(cands))
	}
	if cands[0].Post.ID != "f1" || cands[1].Post.ID != "f2" {
		t.Errorf("order = %s, %s; want f1, f2 (time desc)", cands[0].Post.ID, cands[1].Post.ID)
	}
	for _, c := range cands {
		if c.Source != core.SourceInNetwork {
			t.Errorf("source = %s, want in_network", c.Source)
		}
		if c.Author == nil {
			t.Errorf("author not resolved for %s", c.Post.ID)
		}
	}
}

func TestInNetworkPerAuthorCap(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	st := store.NewMemoryFeedStore()
	st.Now = func() time.Time { return now }
	st.AddUser(&core.User{ID: "viewer", FollowingIDs: []string{"prolific"}})
	st.AddUser(&core.User{ID: "prolific"})
	for i := 0; i < 10; i++ {
		st.AddPost(&core.Post{
			ID:        fmt.Sprintf("p%02d", i),
			AuthorID:  "prolific",
			Type:      core.PostOriginal,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	viewer, _ := st.GetUser(context.Background(), "viewer")

	s := &InNetwork{Store: st, PerAuthorCap: 3}
	cands, err := s.Fetch(context.Background(), newFctx(viewer, now))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("got %d candidates, want per-author cap of 3", len(cands))
	}
}

func TestInNetworkNoFollowing(t *testing.T) {
	now := time.Now()
	st := store.NewMemoryFeedStore()
	st.AddUser(&core.User{ID: "loner"})
	viewer, _ := st.GetUser(context.Background(), "loner")

	s := &InNetwork{Store: st}
	cands, err := s.Fetch(context.Background(), newFctx(viewer, now))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(cands) != 0 {
		t.Fatalf("got %d candidates, want 0 for user with no following", len(cands))
	}
}

func TestOutOfNetworkExcludesFollowed(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	st := seedStore(now)
	viewer, _ := st.GetUser(context.Background(), "viewer")

	s := &OutOfNetwork{Store: st}
	cands, err := s.Fetch(context.Background(), newFctx(viewer, now))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	for _, c := range cands {
		if c.Post.AuthorID == "friend1" || c.Post.AuthorID == "friend2" {
			t.Errorf("followed author %s leaked into out_of_network", c.Post.AuthorID)
		}
		if c.Source != core.SourceOutOfNetwork {
			t.Errorf("source = %s, want out_of_network", c.Source)
		}
	}
	if len(cands) != 1 || cands[0].Post.ID != "s1" {
		t.Fatalf("got %v, want only s1", cands)
	}
}

func TestPickByAffinityExplorationKeepsOffTopicPosts(t *testing.T) {
	now := time.Now()
	prefs := core.DefaultPrefs()
	prefs.TechWeight = 1.0
	prefs.Exploration = 1.0

	// 10 条 tech 高对齐 + 1 条无人问津的 memes 新帖
	posts := make([]*core.Post, 0, 11)
	posts = append(posts, &core.Post{ID: "m0", Topics: []core.Topic{core.TopicMemes}, CreatedAt: now})
	for i := 0; i < 10; i++ {
		posts = append(posts, &core.Post{
			ID:        fmt.Sprintf("t%02d", i),
			Topics:    []core.Topic{core.TopicTech},
			CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
			LikeCount: 100,
		})
	}

	picked := pickByAffinity(posts, prefs, 4)
	if len(picked) != 4 {
		t.Fatalf("got %d picked, want 4", len(picked))
	}
	found := false
	for _, p := range picked {
		if p.ID == "m0" {
			found = true
		}
	}
	if !found {
		t.Error("exploration segment should admit the off-topic post")
	}
}
