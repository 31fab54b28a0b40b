package core

import (
	"context"
	"time"
)

// FeedStore 是排序链路对帖子/用户存储的只读依赖。
// Pipeline 对存储只读不写；已看标记等写操作由调用方在拿到结果之后
// 通过 SeenStore 等写接口完成，不发生在排序过程中。
//
// 所有方法都应尊重 ctx 超时；单次调用失败按 fail-soft 处理
// （候选源得到空结果、单条候选被丢弃），不会导致整个请求失败。
type FeedStore interface {
	// GetUser 按 ID 读取用户；不存在时返回 ErrStoreNotFound。
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetUsers 批量读取用户；缺失的 ID 从结果中省略，不报错。
	GetUsers(ctx context.Context, userIDs []string) (map[string]*User, error)

	// GetPost 按 ID 读取帖子；不存在时返回 ErrStoreNotFound。
	GetPost(ctx context.Context, postID string) (*Post, error)

	// GetPosts 批量读取帖子；缺失的 ID 从结果中省略，不报错。
	GetPosts(ctx context.Context, postIDs []string) (map[string]*Post, error)

	// GetRecentPostsByAuthors 返回指定作者集合在回看窗口内的帖子，
	// 每个作者最多 perAuthorCap 条（防止高产作者刷满候选），整体按时间降序。
	GetRecentPostsByAuthors(ctx context.Context, authorIDs []string, window time.Duration, perAuthorCap int) ([]*Post, error)

	// GetCandidatePool 返回窗口内的全局候选池（original 帖），按时间降序，
	// 供 out_of_network 源做主题匹配与探索混合。topics 仅作偏好提示，
	// 实现不得只返回匹配主题的帖子。
	GetCandidatePool(ctx context.Context, topics []Topic, window time.Duration, limit int) ([]*Post, error)

	// GetEngagementCounts 返回帖子的互动计数（含负向行为），缺失按空 map。
	GetEngagementCounts(ctx context.Context, postID string) (map[string]int, error)
}

// PreferenceStore 是排序偏好的只读依赖。
// GetPrefs 从不返回错误：用户无记录时返回 DefaultPrefs，
// 越界值由实现 Clamp 后返回。
type PreferenceStore interface {
	GetPrefs(ctx context.Context, userID string) Prefs
}

// SeenStore 是已看历史的存取接口。读取发生在请求开始
// （结果进入 FeedContext.SeenPostIDs）；MarkSeen 由调用方在
// 响应送达后调用，排序过程中不会发生写入。
type SeenStore interface {
	// GetSeenPostIDs 返回窗口内已展示给该用户的帖子 ID 集合。
	GetSeenPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error)

	// MarkSeen 记录一批帖子已展示给该用户。
	MarkSeen(ctx context.Context, userID string, postIDs []string, at time.Time) error
}
