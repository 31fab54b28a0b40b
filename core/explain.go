package core

// ActionScore 是单个 action 的打分明细：权重 × 预估概率 = 贡献。
// 生命周期为一次请求内，随 Explanation 返回，从不持久化。
type ActionScore struct {
	Action       string  `json:"action"`
	Weight       float64 `json:"weight"`
	Probability  float64 `json:"probability"`
	Contribution float64 `json:"contribution"`
}

// Explanation 记录一个最终入选候选的完整分数构成，可审计而非装饰：
//
//	FinalScore == BaseScore + RecencyBoost + TopicBoost - DiversityPenalty
//
// 该等式由构造保证；任何阶段都不允许绕过构成字段直接改 FinalScore。
type Explanation struct {
	PostID     string  `json:"post_id"`
	FinalScore float64 `json:"final_score"`
	// Rank 是最终输出中的位置，1 起始、稠密无跳号。
	Rank   int    `json:"rank"`
	Source string `json:"source"`

	ActionScores []ActionScore `json:"action_scores"`

	BaseScore        float64 `json:"base_score"`
	DiversityPenalty float64 `json:"diversity_penalty"`
	RecencyBoost     float64 `json:"recency_boost"`
	TopicBoost       float64 `json:"topic_boost"`
}
