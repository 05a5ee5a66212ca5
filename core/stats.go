package core

// Stats summarizes usage for one tool. Token fields stay zero for tools that
// record no token telemetry.
type Stats struct {
	Tool              Tool                  `json:"tool"`
	SessionCount      int                   `json:"session_count"`
	MessageCount      int                   `json:"message_count"`
	TotalInputTokens  int64                 `json:"total_input_tokens"`
	TotalOutputTokens int64                 `json:"total_output_tokens"`
	TotalTokens       int64                 `json:"total_tokens"`
	TokensByModel     map[string]int64      `json:"tokens_by_model"`
	DailyTokens       []DailyTokens         `json:"daily_tokens"`
	DailyActivity     []DailyActivity       `json:"daily_activity,omitempty"`
	DailyModelTokens  []DailyModelTokens    `json:"daily_model_tokens,omitempty"`
	ModelUsage        map[string]ModelUsage `json:"model_usage,omitempty"`
	LastComputedDate  string                `json:"last_computed_date,omitempty"`
}

// NewStats returns a zero-valued summary with non-nil collections.
func NewStats(tool Tool) *Stats {
	return &Stats{
		Tool:          tool,
		TokensByModel: map[string]int64{},
		DailyTokens:   []DailyTokens{},
	}
}

// DailyTokens holds one calendar day's token counters. Date is YYYY-MM-DD.
type DailyTokens struct {
	Date         string `json:"date"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
}

// DailyActivity holds one calendar day's activity counters.
type DailyActivity struct {
	Date          string `json:"date"`
	MessageCount  int    `json:"message_count"`
	SessionCount  int    `json:"session_count"`
	ToolCallCount int    `json:"tool_call_count"`
}

// DailyModelTokens holds one calendar day's combined tokens per model.
type DailyModelTokens struct {
	Date          string           `json:"date"`
	TokensByModel map[string]int64 `json:"tokens_by_model"`
}

// ModelUsage holds lifetime token counters for one model.
type ModelUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}
