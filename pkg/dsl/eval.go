package dsl

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("post", cel.DynType),
		cel.Variable("author", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("fctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// 编译结果按表达式缓存。规则表达式在一次请求内逐候选求值，
// 只编译一次；编译失败同样缓存，坏表达式不会反复走编译器。
type programEntry struct {
	prg cel.Program
	err error
}

var (
	programCache   = make(map[string]*programEntry)
	programCacheMu sync.RWMutex
)

func compileProgram(env *cel.Env, expr string) (cel.Program, error) {
	programCacheMu.RLock()
	entry, ok := programCache[expr]
	programCacheMu.RUnlock()
	if ok {
		return entry.prg, entry.err
	}

	programCacheMu.Lock()
	defer programCacheMu.Unlock()
	if entry, ok := programCache[expr]; ok {
		return entry.prg, entry.err
	}

	entry = &programEntry{}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		entry.err = fmt.Errorf("compile error: %v", issues.Err())
	} else if entry.prg, entry.err = env.Program(ast); entry.err != nil {
		entry.err = fmt.Errorf("program error: %v", entry.err)
	}
	programCache[expr] = entry
	return entry.prg, entry.err
}

// Eval 是策略规则解释器，使用 CEL (Common Expression Language) 实现。
// 用于 filter.Rule 这类配置驱动的资格/政策过滤：表达式返回 true 即命中。
//
// 表达式语法（CEL 标准语法）：
//   - 帖子字段：post.author_id == "spam_bot" / post.text.contains("giveaway")
//   - 主题：post.topics.exists(t, t == "politics")
//   - 作者：author.handle == "news_api"
//   - 标签：label.candidate_source == "source.news"
//   - 逻辑组合：post.topics.exists(t, t == "memes") && post.reply_count == 0
//
// 注意：has(label.key) 可以用 label.key != null 替代。
type Eval struct {
	cand *core.Candidate
	fctx *core.FeedContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(c *core.Candidate, fctx *core.FeedContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		cand: c,
		fctx: fctx,
		env:  env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式视为不命中（返回 false），过滤器因此成为 no-op。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return false, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	prg, err := compileProgram(e.env, expr)
	if err != nil {
		return false, err
	}

	// 执行表达式
	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 对于不存在的 key，CEL 会返回错误
		// 用户应该使用 label.key != null 来检查存在性，而不是直接访问
		return false, fmt.Errorf("eval error: %v", err)
	}

	// 转换为布尔值
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	p := e.cand.Post
	topics := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		topics = append(topics, string(t))
	}

	post := map[string]interface{}{
		"id":           p.ID,
		"author_id":    p.AuthorID,
		"text":         p.Text,
		"type":         string(p.Type),
		"topics":       topics,
		"age_seconds":  int64(p.Age(e.fctx.Now) / time.Second),
		"like_count":   p.LikeCount,
		"repost_count": p.RepostCount,
		"reply_count":  p.ReplyCount,
	}

	author := map[string]interface{}{}
	if e.cand.Author != nil {
		author = map[string]interface{}{
			"id":              e.cand.Author.ID,
			"handle":          e.cand.Author.Handle,
			"followers_count": e.cand.Author.FollowersCount,
		}
	}

	// label.candidate_source 这类顶层访问返回 Label.Value。
	// CEL 访问不存在的 key 会报错，用户可用 label.key != null 检查存在性。
	labelAccessor := make(map[string]interface{})
	for k, v := range e.cand.Labels {
		labelAccessor[k] = v.Value
	}

	fctx := map[string]interface{}{
		"user_id": e.fctx.UserID,
		"params":  e.fctx.Params,
	}

	return map[string]interface{}{
		"post":   post,
		"author": author,
		"label":  labelAccessor,
		"fctx":   fctx,
	}
}
