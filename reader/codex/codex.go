// Package codex reads OpenAI Codex CLI session logs (JSONL rollouts in
// ~/.codex/sessions/YYYY/MM/DD/).
package codex

import (
	"os"
	"path/filepath"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

// Reader reads Codex CLI JSONL rollout files.
type Reader struct {
	// Dir overrides the default session directory (~/.codex/sessions/).
	Dir string

	// Workers bounds search parallelism. Zero means one per CPU.
	Workers int
}

const (
	maxLineSize = 16 << 20

	firstPromptChars  = 200
	searchPromptChars = 100
	contextRadius     = 50

	// metaReadAhead is how many lines may precede the session_meta record.
	metaReadAhead = 5
)

// Raw JSON deserialization types. Every line is an envelope whose payload
// shape depends on the envelope type.

type rawLine struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type rawSessionMeta struct {
	ID            string  `json:"id"`
	Timestamp     string  `json:"timestamp"`
	CWD           string  `json:"cwd"`
	CLIVersion    string  `json:"cli_version"`
	ModelProvider string  `json:"model_provider"`
	Git           *rawGit `json:"git"`
}

type rawGit struct {
	Branch string `json:"branch"`
}

type rawResponseItem struct {
	Type      string          `json:"type"`
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	CallID    string          `json:"call_id"`
	Output    json.RawMessage `json:"output"`
	Text      string          `json:"text"`
	Summary   json.RawMessage `json:"summary"`
}

type rawContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type rawEventMsg struct {
	Type string        `json:"type"`
	Info *rawTokenInfo `json:"info"`
}

type rawTokenInfo struct {
	TotalTokenUsage *rawTokenUsage `json:"total_token_usage"`
}

type rawTokenUsage struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  *int64 `json:"total_tokens"`
}

// Tool implements reader.Reader.
func (r *Reader) Tool() core.Tool { return core.ToolCodex }

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "sessions")
}
