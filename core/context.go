package core

import (
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

// FeedContext 承载一次信息流请求的只读输入，贯穿整个 Pipeline 透传。
//
// 设计约束：请求级状态（viewer、偏好、已看集合、时钟）全部在请求开始时
// 从外部存储取好放进来，Pipeline 内部不持有任何跨请求可变状态，
// 也不回写存储，这是确定性与请求隔离的前提。
type FeedContext struct {
	UserID string

	// Viewer 是请求方用户（含关注/拉黑/屏蔽关系），hydrate 前即可用。
	Viewer *User

	// Prefs 是已 Clamp 的排序偏好。
	Prefs Prefs

	// SeenPostIDs 是近窗口内已展示给该用户的帖子集合（过滤阶段使用）。
	SeenPostIDs map[string]bool

	// Now 是本次请求的统一时钟。所有年龄/衰减计算必须使用它，
	// 不允许各节点自取 time.Now()，否则同输入两次执行结果会漂移。
	Now time.Time

	// Params 是请求级上下文参数（限流预算、实验参数等）。
	Params map[string]any

	// Labels 是请求级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label
}

// NewFeedContext 创建一个请求上下文，时钟固定为当前时间。
func NewFeedContext(userID string) *FeedContext {
	return &FeedContext{
		UserID:      userID,
		Prefs:       DefaultPrefs(),
		SeenPostIDs: make(map[string]bool),
		Now:         time.Now(),
		Params:      make(map[string]any),
		Labels:      make(map[string]utils.Label),
	}
}

// Seen 判断帖子是否已展示过。
func (fctx *FeedContext) Seen(postID string) bool {
	if fctx.SeenPostIDs == nil {
		return false
	}
	return fctx.SeenPostIDs[postID]
}

// PutLabel 写入请求级 Label。
func (fctx *FeedContext) PutLabel(key string, lbl utils.Label) {
	if fctx.Labels == nil {
		fctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := fctx.Labels[key]; ok {
		fctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	fctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (fctx *FeedContext) GetLabel(key string) (utils.Label, bool) {
	if fctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := fctx.Labels[key]
	return lbl, ok
}
