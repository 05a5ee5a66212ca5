package claude

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// rawStatsCache mirrors stats-cache.json, which Claude Code maintains itself.
type rawStatsCache struct {
	Version          int                      `json:"version"`
	LastComputedDate string                   `json:"lastComputedDate"`
	DailyActivity    []rawDailyActivity       `json:"dailyActivity"`
	DailyModelTokens []rawDailyModelTokens    `json:"dailyModelTokens"`
	ModelUsage       map[string]rawModelUsage `json:"modelUsage"`
}

type rawDailyActivity struct {
	Date          string `json:"date"`
	MessageCount  int    `json:"messageCount"`
	SessionCount  int    `json:"sessionCount"`
	ToolCallCount int    `json:"toolCallCount"`
}

type rawDailyModelTokens struct {
	Date          string           `json:"date"`
	TokensByModel map[string]int64 `json:"tokensByModel"`
}

type rawModelUsage struct {
	InputTokens              int64 `json:"inputTokens"`
	OutputTokens             int64 `json:"outputTokens"`
	CacheReadInputTokens     int64 `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int64 `json:"cacheCreationInputTokens"`
}

// Stats implements reader.Reader by loading the usage cache. A missing cache
// yields an all-zero summary.
func (r *Reader) Stats() (*core.Stats, error) {
	stats := core.NewStats(core.ToolClaude)

	data, err := os.ReadFile(r.statsFile())
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stats cache: %v", core.ErrRead, err)
	}

	var raw rawStatsCache
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: stats cache: %v", core.ErrParse, err)
	}

	stats.LastComputedDate = raw.LastComputedDate
	stats.SessionCount = lo.SumBy(raw.DailyActivity, func(d rawDailyActivity) int { return d.SessionCount })
	stats.MessageCount = lo.SumBy(raw.DailyActivity, func(d rawDailyActivity) int { return d.MessageCount })

	stats.DailyActivity = lo.Map(raw.DailyActivity, func(d rawDailyActivity, _ int) core.DailyActivity {
		return core.DailyActivity(d)
	})
	stats.DailyModelTokens = lo.Map(raw.DailyModelTokens, func(d rawDailyModelTokens, _ int) core.DailyModelTokens {
		return core.DailyModelTokens{Date: d.Date, TokensByModel: lo.Assign(d.TokensByModel)}
	})
	stats.ModelUsage = lo.MapValues(raw.ModelUsage, func(u rawModelUsage, _ string) core.ModelUsage {
		return core.ModelUsage(u)
	})
	return stats, nil
}

// TokenSummary implements reader.TokenSummarizer.
//
// The cache stores a combined per-day total with no input/output split. The
// split is estimated: a global input ratio, input / (input + output) over
// every model's lifetime usage with cache reads and writes counted as input,
// is applied to each day's total. Day input is floored and day output takes
// the remainder. With no usage at all the ratio is 0.5.
func (r *Reader) TokenSummary() (*core.Stats, error) {
	stats, err := r.Stats()
	if err != nil {
		return nil, err
	}

	for _, u := range stats.ModelUsage {
		stats.TotalInputTokens += u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
		stats.TotalOutputTokens += u.OutputTokens
	}
	ratio := inputRatio(stats.TotalInputTokens, stats.TotalOutputTokens)

	for _, day := range stats.DailyModelTokens {
		dayTotal := lo.Sum(lo.Values(day.TokensByModel))
		for model, n := range day.TokensByModel {
			stats.TokensByModel[model] += n
		}
		stats.TotalTokens += dayTotal

		dayInput := int64(float64(dayTotal) * ratio)
		stats.DailyTokens = append(stats.DailyTokens, core.DailyTokens{
			Date:         day.Date,
			InputTokens:  dayInput,
			OutputTokens: max(dayTotal-dayInput, 0),
			TotalTokens:  dayTotal,
		})
	}
	return stats, nil
}

func inputRatio(input, output int64) float64 {
	if input+output <= 0 {
		return 0.5
	}
	return float64(input) / float64(input+output)
}
