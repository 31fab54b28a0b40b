package core

import "time"

// PostType 标记帖子形态；reply/quote 类型的帖子必须能解析到被引用的原帖。
type PostType string

const (
	PostOriginal PostType = "original"
	PostReply    PostType = "reply"
	PostRepost   PostType = "repost"
	PostQuote    PostType = "quote"
)

// Topic 是帖子的主题标签。可调权重的主题只有五个（见 Prefs），
// 其余主题参与匹配但使用统一的低权重。
type Topic string

const (
	TopicTech     Topic = "tech"
	TopicPolitics Topic = "politics"
	TopicCulture  Topic = "culture"
	TopicMemes    Topic = "memes"
	TopicFinance  Topic = "finance"
	TopicNews     Topic = "news"
	TopicOther    Topic = "other"
)

// 互动行为 key，与打分阶段的 action key 保持一致（见 score 包）。
const (
	ActionLike          = "like"
	ActionRepost        = "repost"
	ActionReply         = "reply"
	ActionQuote         = "quote"
	ActionClick         = "click"
	ActionShare         = "share"
	ActionFollowAuthor  = "follow_author"
	ActionNotInterested = "not_interested"
	ActionBlockAuthor   = "block_author"
	ActionMuteAuthor    = "mute_author"
	ActionReport        = "report"
)

// Post 是信息流中的帖子。Post 由外部存储拥有，Pipeline 只读不写。
// 展示用计数器（LikeCount 等）由存储在返回时填充；
// 打分所用的互动计数走 Candidate.Engagement（含负向行为）。
type Post struct {
	ID        string
	AuthorID  string
	Text      string
	Type      PostType
	ParentID  string // reply 指向的原帖 ID（可为空）
	QuotedID  string // quote 指向的原帖 ID（可为空）
	Topics    []Topic
	CreatedAt time.Time

	LikeCount   int
	RepostCount int
	ReplyCount  int
	QuoteCount  int
	ViewCount   int
}

// Age 返回帖子相对 now 的年龄，负值（时钟漂移/未来帖）按 0 处理。
func (p *Post) Age(now time.Time) time.Duration {
	age := now.Sub(p.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// HasTopic 判断帖子是否带指定主题标签。
func (p *Post) HasTopic(t Topic) bool {
	for _, pt := range p.Topics {
		if pt == t {
			return true
		}
	}
	return false
}
