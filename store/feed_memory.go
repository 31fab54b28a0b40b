package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
)

// MemoryFeedStore 是内存实现的 FeedStore / PreferenceStore / SeenStore，
// 用于测试、开发与示例。数据通过 AddUser / AddPost 等方法注入。
//
// Now 可注入固定时钟，保证测试中窗口查询可复现；缺省为 time.Now。
type MemoryFeedStore struct {
	mu         sync.RWMutex
	users      map[string]*core.User
	posts      map[string]*core.Post
	byAuthor   map[string][]string // authorID -> postIDs（插入序）
	engagement map[string]map[string]int
	prefs      map[string]core.Prefs
	seen       map[string]map[string]time.Time

	Now func() time.Time
}

func NewMemoryFeedStore() *MemoryFeedStore {
	return &MemoryFeedStore{
		users:      make(map[string]*core.User),
		posts:      make(map[string]*core.Post),
		byAuthor:   make(map[string][]string),
		engagement: make(map[string]map[string]int),
		prefs:      make(map[string]core.Prefs),
		seen:       make(map[string]map[string]time.Time),
		Now:        time.Now,
	}
}

func (m *MemoryFeedStore) AddUser(u *core.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MemoryFeedStore) AddPost(p *core.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		m.byAuthor[p.AuthorID] = append(m.byAuthor[p.AuthorID], p.ID)
	}
	m.posts[p.ID] = p
}

// SetEngagement 设置帖子的互动计数（覆盖写）。
func (m *MemoryFeedStore) SetEngagement(postID string, counts map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]int, len(counts))
	for k, v := range counts {
		cp[k] = v
	}
	m.engagement[postID] = cp
}

func (m *MemoryFeedStore) SetPrefs(userID string, p core.Prefs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = p
}

func (m *MemoryFeedStore) GetUser(ctx context.Context, userID string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return u, nil
}

func (m *MemoryFeedStore) GetUsers(ctx context.Context, userIDs []string) (map[string]*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*core.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func (m *MemoryFeedStore) GetPost(ctx context.Context, postID string) (*core.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return p, nil
}

func (m *MemoryFeedStore) GetPosts(ctx context.Context, postIDs []string) (map[string]*core.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*core.Post, len(postIDs))
	for _, id := range postIDs {
		if p, ok := m.posts[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (m *MemoryFeedStore) GetRecentPostsByAuthors(
	ctx context.Context,
	authorIDs []string,
	window time.Duration,
	perAuthorCap int,
) ([]*core.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	var out []*core.Post
	for _, authorID := range authorIDs {
		var recent []*core.Post
		for _, postID := range m.byAuthor[authorID] {
			p := m.posts[postID]
			if p.CreatedAt.Before(cutoff) {
				continue
			}
			recent = append(recent, p)
		}
		sortPostsByTime(recent)
		if perAuthorCap > 0 && len(recent) > perAuthorCap {
			recent = recent[:perAuthorCap]
		}
		out = append(out, recent...)
	}
	sortPostsByTime(out)
	return out, nil
}

func (m *MemoryFeedStore) GetCandidatePool(
	ctx context.Context,
	topics []core.Topic,
	window time.Duration,
	limit int,
) ([]*core.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	var out []*core.Post
	for _, p := range m.posts {
		if p.Type != core.PostOriginal {
			continue
		}
		if p.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	sortPostsByTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryFeedStore) GetEngagementCounts(ctx context.Context, postID string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts, ok := m.engagement[postID]
	if !ok {
		return map[string]int{}, nil
	}
	cp := make(map[string]int, len(counts))
	for k, v := range counts {
		cp[k] = v
	}
	return cp, nil
}

func (m *MemoryFeedStore) GetPrefs(ctx context.Context, userID string) core.Prefs {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	if !ok {
		return core.DefaultPrefs()
	}
	return p.Clamp()
}

func (m *MemoryFeedStore) GetSeenPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-window)
	result := make(map[string]bool)
	for postID, at := range m.seen[userID] {
		if at.Before(cutoff) {
			continue
		}
		result[postID] = true
	}
	return result, nil
}

func (m *MemoryFeedStore) MarkSeen(ctx context.Context, userID string, postIDs []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen[userID] == nil {
		m.seen[userID] = make(map[string]time.Time)
	}
	for _, id := range postIDs {
		m.seen[userID][id] = at
	}
	return nil
}

// sortPostsByTime 按创建时间降序、ID 升序排序，保证读取结果可复现。
func sortPostsByTime(posts []*core.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

var _ core.FeedStore = (*MemoryFeedStore)(nil)
var _ core.PreferenceStore = (*MemoryFeedStore)(nil)
var _ core.SeenStore = (*MemoryFeedStore)(nil)
