package store

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
)

// KVSeenStore 把已看历史存进 KeyValueStore 的有序集合：
// key 为 seen:<userID>，member 为帖子 ID，score 为展示时间戳（Unix 秒）。
// 读取用 ZRangeByScore 取时间窗口，天然支持 Redis / 内存两种后端。
type KVSeenStore struct {
	kv core.KeyValueStore
}

func NewKVSeenStore(kv core.KeyValueStore) *KVSeenStore {
	return &KVSeenStore{kv: kv}
}

func (s *KVSeenStore) seenKey(userID string) string {
	return "seen:" + userID
}

func (s *KVSeenStore) GetSeenPostIDs(ctx context.Context, userID string, window time.Duration) (map[string]bool, error) {
	now := time.Now()
	min := float64(now.Add(-window).Unix())
	max := float64(now.Unix())

	members, err := s.kv.ZRangeByScore(ctx, s.seenKey(userID), min, max)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(members))
	for _, id := range members {
		seen[id] = true
	}
	return seen, nil
}

func (s *KVSeenStore) MarkSeen(ctx context.Context, userID string, postIDs []string, at time.Time) error {
	key := s.seenKey(userID)
	score := float64(at.Unix())
	for _, id := range postIDs {
		if err := s.kv.ZAdd(ctx, key, score, id); err != nil {
			return err
		}
	}
	return nil
}

var _ core.SeenStore = (*KVSeenStore)(nil)
