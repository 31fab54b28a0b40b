package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/feedkit/config"
	"github.com/rushteam/feedkit/explain"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/hydrate"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/conv"
	"github.com/rushteam/feedkit/rerank"
	"github.com/rushteam/feedkit/score"
	"github.com/rushteam/feedkit/source"
)

func init() {
	config.Register("source.fanout", BuildFanoutNode)
	config.Register("source.in_network", BuildInNetworkNode)
	config.Register("source.out_of_network", BuildOutOfNetworkNode)
	config.Register("source.news", BuildNewsNode)
	config.Register("hydrate", BuildHydrateNode)
	config.Register("filter", BuildFilterNode)
	config.Register("score.heuristic", BuildScoreNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("explain", BuildExplainNode)
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]source.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		src, err := buildSource(sourceMap)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	fanout := &source.Fanout{Sources: sources}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

// buildSource 构建 fan-out 内的单个候选源。
// 声明顺序即合并优先级，配置方应按 in_network → out_of_network → news 排列。
func buildSource(cfg map[string]interface{}) (source.Source, error) {
	switch sourceType := conv.ConfigGet(cfg, "type", ""); sourceType {
	case "in_network":
		node, err := BuildInNetworkNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*source.InNetwork), nil
	case "out_of_network":
		node, err := BuildOutOfNetworkNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*source.OutOfNetwork), nil
	case "news":
		node, err := BuildNewsNode(cfg)
		if err != nil {
			return nil, err
		}
		return node.(*source.News), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}

func BuildInNetworkNode(cfg map[string]interface{}) (pipeline.Node, error) {
	st := config.FeedStore()
	if st == nil {
		return nil, fmt.Errorf("feed store not injected (call config.SetFeedStore first)")
	}
	s := &source.InNetwork{
		Store:        st,
		Budget:       int(conv.ConfigGetInt64(cfg, "budget", 0)),
		PerAuthorCap: int(conv.ConfigGetInt64(cfg, "per_author_cap", 0)),
		FullBudget:   conv.ConfigGet(cfg, "full_budget", false),
	}
	if hours := conv.ConfigGetInt64(cfg, "window_hours", 0); hours > 0 {
		s.Window = time.Duration(hours) * time.Hour
	}
	return s, nil
}

func BuildOutOfNetworkNode(cfg map[string]interface{}) (pipeline.Node, error) {
	st := config.FeedStore()
	if st == nil {
		return nil, fmt.Errorf("feed store not injected (call config.SetFeedStore first)")
	}
	s := &source.OutOfNetwork{
		Store:  st,
		Budget: int(conv.ConfigGetInt64(cfg, "budget", 0)),
	}
	if hours := conv.ConfigGetInt64(cfg, "window_hours", 0); hours > 0 {
		s.Window = time.Duration(hours) * time.Hour
	}
	return s, nil
}

func BuildNewsNode(cfg map[string]interface{}) (pipeline.Node, error) {
	s := &source.News{
		APIKey:   conv.ConfigGet(cfg, "api_key", ""),
		Endpoint: conv.ConfigGet(cfg, "endpoint", ""),
		Category: conv.ConfigGet(cfg, "category", ""),
		Country:  conv.ConfigGet(cfg, "country", ""),
		PageSize: int(conv.ConfigGetInt64(cfg, "page_size", 0)),
	}
	return s, nil
}

func BuildHydrateNode(cfg map[string]interface{}) (pipeline.Node, error) {
	st := config.FeedStore()
	if st == nil {
		return nil, fmt.Errorf("feed store not injected (call config.SetFeedStore first)")
	}
	return &hydrate.Hydrator{Store: st}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	names := conv.SliceAnyToString(cfg["filters"])
	if names == nil {
		// 缺省装上全部基础过滤器
		names = []string{"self_post", "blocked_author", "seen", "max_age", "reference"}
	}

	filters := make([]filter.Filter, 0, len(names))
	for _, name := range names {
		switch name {
		case "self_post":
			filters = append(filters, &filter.SelfPost{})
		case "blocked_author":
			filters = append(filters, &filter.BlockedAuthor{})
		case "seen":
			filters = append(filters, &filter.Seen{})
		case "max_age":
			f := &filter.MaxAge{}
			if hours := conv.ConfigGetInt64(cfg, "max_age_hours", 0); hours > 0 {
				f.Max = time.Duration(hours) * time.Hour
			}
			filters = append(filters, f)
		case "reference":
			filters = append(filters, &filter.Reference{})
		case "rule":
			expr := conv.ConfigGet(cfg, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter requires expr")
			}
			filters = append(filters, &filter.Rule{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter: %s", name)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildScoreNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := score.NewNode()
	if weightsMap, ok := cfg["weights"].(map[string]interface{}); ok {
		node.Weights = conv.MapToFloat64(weightsMap)
	}
	return node, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rerank.AuthorDiversity{}
	if _, ok := cfg["strength"]; ok {
		strength := conv.ConfigGetFloat64(cfg, "strength", 0)
		node.Strength = &strength
	}
	return node, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	limit := int(conv.ConfigGetInt64(cfg, "limit", 0))
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	return &rerank.TopN{
		Limit:        limit,
		MaxPerAuthor: int(conv.ConfigGetInt64(cfg, "max_per_author", 0)),
	}, nil
}

func BuildExplainNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &explain.Builder{Enabled: conv.ConfigGet(cfg, "enabled", true)}, nil
}
