package core

// User 是信息流视角下的用户：既是候选帖子的作者，也是请求信息流的 viewer。
// Pipeline 只读取用户数据，关注/拉黑关系的写入属于外部存储。
type User struct {
	ID          string
	Handle      string
	DisplayName string
	Bio         string

	// Topics 是用户的长期兴趣主题（作为作者时也用于外部内容的主题标注）。
	Topics []Topic

	// 社交关系（viewer 视角）
	FollowingIDs []string
	BlockedIDs   []string
	MutedIDs     []string

	FollowersCount int
	FollowingCount int
}

// Follows 判断用户是否关注了 authorID。
func (u *User) Follows(authorID string) bool {
	for _, id := range u.FollowingIDs {
		if id == authorID {
			return true
		}
	}
	return false
}

// BlockedOrMuted 判断 authorID 是否被该用户拉黑或屏蔽。
func (u *User) BlockedOrMuted(authorID string) bool {
	for _, id := range u.BlockedIDs {
		if id == authorID {
			return true
		}
	}
	for _, id := range u.MutedIDs {
		if id == authorID {
			return true
		}
	}
	return false
}
