// Package core defines the unified session model: the projects, sessions,
// messages and content blocks that every tool reader produces and every
// renderer consumes.
package core

import (
	"fmt"
	"time"
)

// Tool identifies which coding assistant produced a set of session logs.
type Tool string

const (
	ToolClaude   Tool = "claude"
	ToolCodex    Tool = "codex"
	ToolOpenCode Tool = "opencode"
)

// Tools lists every supported tool in display order.
var Tools = []Tool{ToolClaude, ToolCodex, ToolOpenCode}

// ParseTool maps a tool tag to a Tool.
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolClaude, ToolCodex, ToolOpenCode:
		return Tool(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedTool, s)
	}
}

// Project is a logical workspace that owns sessions.
type Project struct {
	Tool          Tool       `json:"tool"`
	Key           string     `json:"key"`  // encoded dir name, cwd or hash depending on the tool
	Path          string     `json:"path"` // real filesystem path
	ShortName     string     `json:"short_name"`
	SessionCount  int        `json:"session_count"`
	LastModified  *time.Time `json:"last_modified,omitempty"`
	ModelProvider string     `json:"model_provider,omitempty"`
}

// Session is one continuous interaction log.
type Session struct {
	Tool          Tool       `json:"tool"`
	ID            string     `json:"id"`
	ProjectKey    string     `json:"project_key,omitempty"`
	ProjectPath   string     `json:"project_path,omitempty"`
	ShortName     string     `json:"short_name,omitempty"`
	FilePath      string     `json:"file_path,omitempty"`
	Title         string     `json:"title,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	FirstPrompt   string     `json:"first_prompt,omitempty"`
	MessageCount  int        `json:"message_count"`
	Created       *time.Time `json:"created,omitempty"`
	Modified      *time.Time `json:"modified,omitempty"`
	GitBranch     string     `json:"git_branch,omitempty"`
	Model         string     `json:"model,omitempty"`
	ModelProvider string     `json:"model_provider,omitempty"`
	CLIVersion    string     `json:"cli_version,omitempty"`
	ParentID      string     `json:"parent_id,omitempty"`
	IsSidechain   bool       `json:"is_sidechain,omitempty"`
	Additions     int        `json:"additions,omitempty"`
	Deletions     int        `json:"deletions,omitempty"`
	FilesChanged  int        `json:"files_changed,omitempty"`
}

// SessionGroup is a root session with the sub-sessions spawned from it.
type SessionGroup struct {
	Root     Session   `json:"root"`
	Children []Session `json:"children"`
}

// Message is a single turn in the conversation.
type Message struct {
	ID        string         `json:"id,omitempty"`
	Role      Role           `json:"role"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Content   []ContentBlock `json:"content"`
}

// Role enumerates who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ContentBlock is one piece of a message. The Type field determines which
// other fields are populated.
type ContentBlock struct {
	Type      BlockType  `json:"type"`
	Format    TextFormat `json:"format,omitempty"`      // set for "text" blocks
	Text      string     `json:"text,omitempty"`        // "text", "thinking" and "reasoning"
	ToolUseID string     `json:"tool_use_id,omitempty"` // "tool_use" and "tool_result"
	Name      string     `json:"name,omitempty"`        // "tool_use" and "function_call"
	Input     string     `json:"input,omitempty"`       // serialized tool input, "tool_use"
	Content   string     `json:"content,omitempty"`     // tool output, "tool_result"
	IsError   bool       `json:"is_error,omitempty"`    // "tool_result"
	CallID    string     `json:"call_id,omitempty"`     // "function_call" and "function_call_output"
	Arguments string     `json:"arguments,omitempty"`   // "function_call"
	Output    string     `json:"output,omitempty"`      // "function_call_output"
	Tag       string     `json:"tag,omitempty"`         // raw type of an "unknown" block
}

// SearchText returns the block's searchable text. Unknown blocks carry none.
func (b ContentBlock) SearchText() string {
	switch b.Type {
	case BlockText, BlockThinking, BlockReasoning:
		return b.Text
	case BlockToolUse:
		return b.Input
	case BlockToolResult:
		return b.Content
	case BlockFunctionCall:
		return b.Arguments
	case BlockFunctionCallOutput:
		return b.Output
	default:
		return ""
	}
}

// TextFormat indicates how a text block should be rendered.
type TextFormat string

const (
	FormatMarkdown TextFormat = "markdown"
	FormatPlain    TextFormat = "plain"
)

// BlockType enumerates content block kinds.
type BlockType string

const (
	BlockText               BlockType = "text"
	BlockThinking           BlockType = "thinking"
	BlockToolUse            BlockType = "tool_use"
	BlockToolResult         BlockType = "tool_result"
	BlockReasoning          BlockType = "reasoning"
	BlockFunctionCall       BlockType = "function_call"
	BlockFunctionCallOutput BlockType = "function_call_output"
	BlockUnknown            BlockType = "unknown"
)
