package source

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Fanout 是一个 Source Node：并发执行多个候选源，并按声明顺序合并结果。
//
// 确定性约定：每个源的结果写入自己的槽位，全部返回后按 Sources 的声明
// 顺序拼接再去重（Post ID 首次出现者保留）。声明顺序即来源优先级，
// 调用方应按 in_network → out_of_network → external 排列。
// 并发只影响耗时，不影响输出顺序。
//
// 失败语义：某个源超时或出错时贡献零候选并记录日志，不中断其他源，
// 也不会让整个请求失败。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个候选源的超时时间（0 表示跟随请求 ctx）
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "source.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindSource }

func (n *Fanout) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 每个源一个槽位，避免 append 竞争导致的顺序漂移。
	slots := make([][]*core.Candidate, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		if src == nil {
			continue
		}
		slot := i
		s := src

		eg.Go(func() error {
			fetchCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			cands, err := s.Fetch(fetchCtx, fctx)
			if err != nil {
				// fail-soft：该源视为空结果，不中断其他源
				log.Warn().
					Str("source", s.Name()).
					Str("user_id", fctx.UserID).
					Err(err).
					Msg("candidate source failed, contributing zero candidates")
				return nil
			}

			// 记录候选来源 label，方便 explain / 观测
			for _, c := range cands {
				c.PutLabel("candidate_source", utils.Label{Value: s.Name(), Source: "source"})
			}

			slots[slot] = cands
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []*core.Candidate
	for _, slot := range slots {
		all = append(all, slot...)
	}
	return core.Dedup(all), nil
}
