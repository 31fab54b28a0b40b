package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// News 是可选的外部注入源：从 NewsAPI 形态的 HTTP 接口拉取头条，
// 合成 Post + 虚拟作者后注入信息流。未配置 APIKey 时表现为空源
// （no-op，不是错误），Pipeline 行为与不存在该源完全一致。
//
// 来源标记是二元的：注入候选按非关注内容打 out_of_network，外部出处
// 通过 fan-out 的 candidate_source 标签保留。合并顺序由 fan-out 的
// 声明顺序决定，本源应排在两个常规源之后。
type News struct {
	// APIKey 为空时本源禁用。
	APIKey string

	// Endpoint 默认 https://newsapi.org/v2/top-headlines。
	Endpoint string

	// Category / Country 透传给上游接口（可为空）。
	Category string
	Country  string

	// PageSize 是单次拉取条数，默认 25，上游上限 100。
	PageSize int

	// Client 可注入自定义 HTTP 客户端；默认 10s 超时。
	Client *http.Client
}

func (s *News) Name() string        { return "source.news" }
func (s *News) Kind() pipeline.Kind { return pipeline.KindSource }

const defaultNewsEndpoint = "https://newsapi.org/v2/top-headlines"

// newsAuthorID 是外部头条的虚拟作者 ID。
const newsAuthorID = "news_api"

// 上游 category -> 主题标签。
var newsCategoryTopic = map[string]core.Topic{
	"business":      core.TopicFinance,
	"entertainment": core.TopicCulture,
	"general":       core.TopicNews,
	"health":        core.TopicOther,
	"science":       core.TopicTech,
	"sports":        core.TopicCulture,
	"technology":    core.TopicTech,
}

// Process 实现 Node 接口，直接调用 Fetch。
func (s *News) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	return s.Fetch(ctx, fctx)
}

// Fetch 实现 Source 接口。
func (s *News) Fetch(ctx context.Context, fctx *core.FeedContext) ([]*core.Candidate, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, nil
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultNewsEndpoint
	}
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := url.Values{}
	params.Set("apiKey", s.APIKey)
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	if len(s.Country) == 2 {
		params.Set("country", strings.ToLower(s.Country))
	}
	if cat := strings.ToLower(s.Category); cat != "" {
		if _, ok := newsCategoryTopic[cat]; ok {
			params.Set("category", cat)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch news: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	topic := core.TopicNews
	if t, ok := newsCategoryTopic[strings.ToLower(s.Category)]; ok {
		topic = t
	}

	now := fctx.Now
	out := make([]*core.Candidate, 0, len(payload.Articles))
	for i, a := range payload.Articles {
		if len(out) >= pageSize {
			break
		}
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		text := title
		if desc := strings.TrimSpace(a.Description); desc != "" {
			text = title + " " + desc
		}
		text = sanitizeHeadline(text, 280)

		createdAt := now.Add(-time.Duration(i) * time.Minute)
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			createdAt = ts
		}

		post := &core.Post{
			ID:        fmt.Sprintf("news_%d_%d", createdAt.Unix(), i),
			AuthorID:  newsAuthorID,
			Text:      text,
			Type:      core.PostOriginal,
			Topics:    []core.Topic{topic},
			CreatedAt: createdAt,
		}
		author := &core.User{
			ID:          newsAuthorID,
			Handle:      newsAuthorID,
			DisplayName: a.Source.Name,
			Bio:         "Headlines from News API",
			Topics:      []core.Topic{topic},
		}
		if author.DisplayName == "" {
			author.DisplayName = "News"
		}

		c := core.NewCandidate(post, core.SourceOutOfNetwork)
		c.Author = author
		out = append(out, c)
	}
	return out, nil
}

var headlineSpaces = regexp.MustCompile(`\s+`)

// sanitizeHeadline 折叠空白并截断到 maxLen 字节以内。
// 截断点回退到 rune 边界，多字节标题不会产生非法 UTF-8。
func sanitizeHeadline(s string, maxLen int) string {
	t := headlineSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	if len(t) <= maxLen {
		return t
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(t[cut]) {
		cut--
	}
	return t[:cut] + "..."
}
