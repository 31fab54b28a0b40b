package mixer

import (
	"strconv"
	"time"

	"github.com/rushteam/feedkit/core"
)

// FeedRequest 是一次 For You 信息流请求。
type FeedRequest struct {
	// UserID 是请求方用户，必须存在，否则返回 ErrUnknownUser。
	UserID string `json:"user_id"`

	// Limit 是本页最大条数，必须为正。
	Limit int `json:"limit"`

	// Cursor 是上一页响应带回的翻页游标，空表示第一页。
	// 游标不透明，调用方不应解析或构造。
	Cursor string `json:"cursor,omitempty"`

	// IncludeExplanations 控制是否物化分数解释；开关不影响排序结果。
	IncludeExplanations bool `json:"include_explanations,omitempty"`

	// FollowingOnly 为 true 时只走 in_network 源（Following 时间线），
	// 跳过 out_of_network 与外部注入源。
	FollowingOnly bool `json:"following_only,omitempty"`

	// Prefs 覆盖存储中的偏好（会被 Clamp）；nil 表示使用存储值。
	Prefs *core.Prefs `json:"prefs,omitempty"`
}

// FeedItem 是响应中的一条内容。
type FeedItem struct {
	Post       *core.Post `json:"post"`
	Author     *core.User `json:"author,omitempty"`
	ParentPost *core.Post `json:"parent_post,omitempty"`
	QuotedPost *core.Post `json:"quoted_post,omitempty"`

	Score float64 `json:"score"`

	// Explanation 仅在 IncludeExplanations 时存在。
	Explanation *core.Explanation `json:"explanation,omitempty"`
}

// FeedResponse 是一次请求的完整结果。
type FeedResponse struct {
	UserID string      `json:"user_id"`
	Items  []*FeedItem `json:"items"`

	// NextCursor 非空表示可能还有下一页。
	NextCursor string `json:"next_cursor,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PostIDs 返回响应中所有帖子 ID（按展示顺序），供调用方回写已看历史。
func (r *FeedResponse) PostIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if item != nil && item.Post != nil {
			ids = append(ids, item.Post.ID)
		}
	}
	return ids
}

// 游标是已消费条数的十进制编码。不透明性靠约定维持，不做加密。

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, core.ErrInvalidRequest
	}
	return offset, nil
}

func encodeCursor(offset int) string {
	return strconv.Itoa(offset)
}
