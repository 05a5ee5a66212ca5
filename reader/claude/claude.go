// Package claude reads Claude Code session logs (JSONL in ~/.claude/projects/).
package claude

import (
	"os"
	"path/filepath"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

// Reader reads Claude Code JSONL session files.
type Reader struct {
	// Dir overrides the default session directory (~/.claude/projects/).
	Dir string

	// StatsFile overrides the usage cache location. By default it sits next
	// to the projects directory as stats-cache.json.
	StatsFile string

	// Workers bounds search parallelism. Zero means one per CPU.
	Workers int
}

// maxLineSize is the maximum JSONL line size (16 MB). Tool results that
// embed whole files exceed the default 64 KB bufio.Scanner buffer.
const maxLineSize = 16 << 20

const (
	firstPromptChars  = 200
	searchPromptChars = 100
	contextRadius     = 50

	// metaReadAhead bounds how many lines are decoded looking for the
	// session's working directory and branch.
	metaReadAhead = 20
)

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

type rawEntry struct {
	Type        string      `json:"type"`
	UUID        string      `json:"uuid"`
	SessionID   string      `json:"sessionId"`
	Timestamp   string      `json:"timestamp"`
	CWD         string      `json:"cwd"`
	GitBranch   string      `json:"gitBranch"`
	IsSidechain bool        `json:"isSidechain"`
	Message     *rawMessage `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type rawContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   any             `json:"content"`
	IsError   bool            `json:"is_error"`
}

// Tool implements reader.Reader.
func (r *Reader) Tool() core.Tool { return core.ToolClaude }

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

func (r *Reader) statsFile() string {
	if r.StatsFile != "" {
		return r.StatsFile
	}
	return filepath.Join(filepath.Dir(r.dir()), "stats-cache.json")
}
