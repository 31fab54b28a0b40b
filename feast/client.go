// Package feast 对接 Feast Feature Store，为打分提供在线互动特征。
package feast

import "context"

// Client 是 Feast Feature Store 的客户端接口（领域层定义，基础设施层实现）。
//
// 排序链路只依赖在线特征读取：互动计数按 post_id 实体从在线存储取出，
// 离线训练/物化不在本包范围内。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时打分）
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["post_engagement:like_count"]
	//   - entityRows: 实体行，例如 [{"post_id": "p1"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["post_engagement:like_count"]
	Features []string

	// EntityRows 实体行，例如 [{"post_id": "p1"}, {"post_id": "p2"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}
