package feast

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/conv"
	"github.com/rushteam/feedkit/pkg/utils"
)

// DefaultEngagementFeatures 是互动计数特征到 action 的默认映射。
// 特征视图 post_engagement 以 post_id 为实体，在线存储由离线作业物化。
func DefaultEngagementFeatures() map[string]string {
	return map[string]string{
		"post_engagement:like_count":           core.ActionLike,
		"post_engagement:repost_count":         core.ActionRepost,
		"post_engagement:reply_count":          core.ActionReply,
		"post_engagement:quote_count":          core.ActionQuote,
		"post_engagement:click_count":          core.ActionClick,
		"post_engagement:share_count":          core.ActionShare,
		"post_engagement:follow_count":         core.ActionFollowAuthor,
		"post_engagement:not_interested_count": core.ActionNotInterested,
		"post_engagement:block_count":          core.ActionBlockAuthor,
		"post_engagement:mute_count":           core.ActionMuteAuthor,
		"post_engagement:report_count":         core.ActionReport,
	}
}

// EngagementNode 在打分前用 Feast 在线特征刷新候选的互动计数，
// 覆盖候选源从主存储带出的快照（在线特征更新鲜）。
//
// Feast 调用失败按 fail-soft 处理：保留原有计数，整批候选原样通过。
type EngagementNode struct {
	Client  Client
	Project string

	// Features 是特征名到 action 的映射，为 nil 时使用默认映射。
	Features map[string]string
}

func (n *EngagementNode) Name() string        { return "feast.engagement" }
func (n *EngagementNode) Kind() pipeline.Kind { return pipeline.KindHydrate }

func (n *EngagementNode) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Client == nil || len(candidates) == 0 {
		return candidates, nil
	}

	features := n.Features
	if features == nil {
		features = DefaultEngagementFeatures()
	}
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}

	entityRows := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		entityRows = append(entityRows, map[string]interface{}{"post_id": c.Post.ID})
	}

	resp, err := n.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   names,
		EntityRows: entityRows,
		Project:    n.Project,
	})
	if err != nil {
		log.Warn().Err(err).Str("node", n.Name()).Msg("feast online features unavailable, keeping stored counts")
		return candidates, nil
	}
	if len(resp.FeatureVectors) != len(candidates) {
		log.Warn().Str("node", n.Name()).Msg("feast feature vector count mismatch, keeping stored counts")
		return candidates, nil
	}

	for i, c := range candidates {
		vec := resp.FeatureVectors[i]
		for featureName, action := range features {
			v, ok := vec.Values[featureName]
			if !ok {
				continue
			}
			if count, ok := conv.ToInt(v); ok {
				if c.Engagement == nil {
					c.Engagement = make(map[string]int)
				}
				c.Engagement[action] = count
			}
		}
		c.PutLabel("engagement_source", utils.Label{Value: "feast", Source: n.Name()})
	}
	return candidates, nil
}
