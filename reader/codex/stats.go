package codex

import (
	"sort"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// Stats implements reader.Reader by scanning every rollout. Each rollout's
// last token_count event holds its cumulative usage. Tokens are attributed
// to the session's model provider and to the day in the rollout's path;
// rollouts outside the year/month/day layout are left out of the daily
// series only.
func (r *Reader) Stats() (*core.Stats, error) {
	stats := core.NewStats(core.ToolCodex)
	daily := make(map[string]*core.DailyTokens)

	for _, path := range r.sessionFiles() {
		stats.SessionCount++
		info, err := scanSession(path)
		if err != nil {
			log.Debug("skipping rollout", "path", path, "err", err)
			continue
		}
		stats.MessageCount += info.messageCount

		t := info.tokens
		if t == nil {
			continue
		}
		stats.TotalInputTokens += t.input
		stats.TotalOutputTokens += t.output
		stats.TotalTokens += t.total

		provider := info.modelProvider
		if provider == "" {
			provider = "unknown"
		}
		stats.TokensByModel[provider] += t.total

		date, ok := dateFromPath(path)
		if !ok {
			continue
		}
		d, ok := daily[date]
		if !ok {
			d = &core.DailyTokens{Date: date}
			daily[date] = d
		}
		d.InputTokens += t.input
		d.OutputTokens += t.output
		d.TotalTokens += t.total
	}

	dates := lo.Keys(daily)
	sort.Strings(dates)
	stats.DailyTokens = lo.Map(dates, func(date string, _ int) core.DailyTokens {
		return *daily[date]
	})
	return stats, nil
}
