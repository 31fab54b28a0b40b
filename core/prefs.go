package core

// Prefs 是用户可调的排序偏好，驱动整条排序链路。所有字段取值范围 [0,1]，
// 越界值会被 Clamp 截断而不是报错；用户未设置时使用 DefaultPrefs。
type Prefs struct {
	// RecencyVsPopularity：0 = 偏新鲜度，1 = 偏热度。
	RecencyVsPopularity float64 `json:"recency_vs_popularity" yaml:"recency_vs_popularity"`

	// FriendsVsGlobal：越高，合并候选预算中留给关注内容（in_network）的份额越大。
	FriendsVsGlobal float64 `json:"friends_vs_global" yaml:"friends_vs_global"`

	// NicheVsViral：0 = 偏小众兴趣对齐，1 = 偏爆款热帖。
	NicheVsViral float64 `json:"niche_vs_viral" yaml:"niche_vs_viral"`

	// 五个主题权重（相对权重，不要求归一）。
	TechWeight     float64 `json:"tech_weight" yaml:"tech_weight"`
	PoliticsWeight float64 `json:"politics_weight" yaml:"politics_weight"`
	CultureWeight  float64 `json:"culture_weight" yaml:"culture_weight"`
	MemesWeight    float64 `json:"memes_weight" yaml:"memes_weight"`
	FinanceWeight  float64 `json:"finance_weight" yaml:"finance_weight"`

	// DiversityStrength：0 = 允许同作者刷屏，1 = 强作者多样性。
	DiversityStrength float64 `json:"diversity_strength" yaml:"diversity_strength"`

	// Exploration：0 = 安全/信息茧房，1 = 更多探索（OON 候选保留非兴趣主题的比例）。
	Exploration float64 `json:"exploration" yaml:"exploration"`

	// NegativeSignalStrength：负向信号（not_interested / report 等）的降权强度。
	NegativeSignalStrength float64 `json:"negative_signal_strength" yaml:"negative_signal_strength"`
}

// DefaultPrefs 返回默认偏好向量。用户无偏好记录时必须回退到这组值。
func DefaultPrefs() Prefs {
	return Prefs{
		RecencyVsPopularity:    0.3,
		FriendsVsGlobal:        0.4,
		NicheVsViral:           0.5,
		TechWeight:             0.2,
		PoliticsWeight:         0.2,
		CultureWeight:          0.2,
		MemesWeight:            0.2,
		FinanceWeight:          0.2,
		DiversityStrength:      0.6,
		Exploration:            0.3,
		NegativeSignalStrength: 0.8,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp 将所有字段截断到 [0,1]。越界偏好不是错误，统一 Clamp 后使用。
func (p Prefs) Clamp() Prefs {
	p.RecencyVsPopularity = clamp01(p.RecencyVsPopularity)
	p.FriendsVsGlobal = clamp01(p.FriendsVsGlobal)
	p.NicheVsViral = clamp01(p.NicheVsViral)
	p.TechWeight = clamp01(p.TechWeight)
	p.PoliticsWeight = clamp01(p.PoliticsWeight)
	p.CultureWeight = clamp01(p.CultureWeight)
	p.MemesWeight = clamp01(p.MemesWeight)
	p.FinanceWeight = clamp01(p.FinanceWeight)
	p.DiversityStrength = clamp01(p.DiversityStrength)
	p.Exploration = clamp01(p.Exploration)
	p.NegativeSignalStrength = clamp01(p.NegativeSignalStrength)
	return p
}

// defaultTopicWeight 是五个可调主题之外的主题的统一权重。
const defaultTopicWeight = 0.1

// TopicWeight 返回主题对应的偏好权重；非可调主题统一返回低权重。
func (p Prefs) TopicWeight(t Topic) float64 {
	switch t {
	case TopicTech:
		return p.TechWeight
	case TopicPolitics:
		return p.PoliticsWeight
	case TopicCulture:
		return p.CultureWeight
	case TopicMemes:
		return p.MemesWeight
	case TopicFinance:
		return p.FinanceWeight
	default:
		return defaultTopicWeight
	}
}

// TopicAffinity 返回帖子主题集合与用户偏好的对齐度：各主题权重的平均值。
// 无主题标签的帖子返回中性值 0.5，保证主题项不会主导整体分数。
func (p Prefs) TopicAffinity(topics []Topic) float64 {
	if len(topics) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, t := range topics {
		sum += p.TopicWeight(t)
	}
	return sum / float64(len(topics))
}
