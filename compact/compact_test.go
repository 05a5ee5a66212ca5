package compact

import (
	"testing"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(msgs ...core.Message) *core.Page {
	return core.Paginate(msgs, 0, 50)
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestLineSummary(t *testing.T) {
	tests := []struct {
		name  string
		label string
		input string
		want  string
	}{
		{"empty", "output", "", "[output: 0 lines]"},
		{"single line", "output", "hello", "[output: 1 line]"},
		{"multiple lines", "output", "a\nb\nc", "[output: 3 lines]"},
		{"error label", "error", "a\nb", "[error: 2 lines]"},
		{"field label", "content", "a\nb\nc\nd\n", "[content: 4 lines]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineSummary(tt.label, tt.input))
		})
	}
}

func TestFilterThinking(t *testing.T) {
	blocks := []core.ContentBlock{
		{Type: core.BlockThinking, Text: "hmm"},
		{Type: core.BlockText, Text: "answer"},
		{Type: core.BlockReasoning, Text: "because"},
	}
	got := filterThinking(blocks)
	require.Len(t, got, 1)
	assert.Equal(t, "answer", got[0].Text)
}

func TestCompactToolOutputs(t *testing.T) {
	p := page(
		core.Message{Role: core.RoleUser, Content: []core.ContentBlock{
			{Type: core.BlockToolResult, ToolUseID: "t1", Content: "a\nb\nc"},
			{Type: core.BlockToolResult, ToolUseID: "t2", Content: "boom", IsError: true},
		}},
		core.Message{Role: core.RoleTool, Content: []core.ContentBlock{
			{Type: core.BlockFunctionCallOutput, CallID: "c1", Output: "x\ny\n"},
		}},
	)

	require.NoError(t, New(Config{}).Transform(p))
	assert.Equal(t, "[output: 3 lines]", p.Messages[0].Content[0].Content)
	assert.Equal(t, "[error: 1 line]", p.Messages[0].Content[1].Content)
	assert.Equal(t, "[output: 2 lines]", p.Messages[1].Content[0].Output)
}

func TestCompactToolInputs(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		input string
		check func(t *testing.T, got string)
	}{
		{
			name:  "write content",
			tool:  "Write",
			input: `{"file_path":"/a.go","content":"package a\n\nfunc A() {}\n"}`,
			check: func(t *testing.T, got string) {
				m := decode(t, got)
				assert.Equal(t, "/a.go", m["file_path"])
				assert.Equal(t, "[content: 3 lines]", m["content"])
			},
		},
		{
			name:  "edit strings",
			tool:  "Edit",
			input: `{"file_path":"/a.go","old_string":"a\nb","new_string":"c"}`,
			check: func(t *testing.T, got string) {
				m := decode(t, got)
				assert.Equal(t, "[old_string: 2 lines]", m["old_string"])
				assert.Equal(t, "[new_string: 1 line]", m["new_string"])
			},
		},
		{
			name:  "multiedit list",
			tool:  "MultiEdit",
			input: `{"edits":[{"old_string":"a"},{"old_string":"b"}]}`,
			check: func(t *testing.T, got string) {
				assert.Equal(t, "[edits: 2 items]", decode(t, got)["edits"])
			},
		},
		{
			name:  "other tools untouched",
			tool:  "Bash",
			input: `{"command":"ls"}`,
			check: func(t *testing.T, got string) {
				assert.Equal(t, `{"command":"ls"}`, got)
			},
		},
		{
			name:  "not json",
			tool:  "Write",
			input: "raw text",
			check: func(t *testing.T, got string) {
				assert.Equal(t, "raw text", got)
			},
		},
		{
			name:  "no verbose field",
			tool:  "Write",
			input: `{"file_path":"/a.go"}`,
			check: func(t *testing.T, got string) {
				assert.Equal(t, `{"file_path":"/a.go"}`, got)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, compactInput(tt.tool, tt.input))
		})
	}
}

func TestCompactFunctionCallPatch(t *testing.T) {
	p := page(core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{
		{Type: core.BlockFunctionCall, Name: "apply_patch", Arguments: `{"input":"*** Begin Patch\n+x\n*** End Patch"}`},
	}})
	require.NoError(t, New(Config{}).Transform(p))
	assert.Equal(t, "[input: 3 lines]", decode(t, p.Messages[0].Content[0].Arguments)["input"])
}

func TestCompactKeepThinkingByDefault(t *testing.T) {
	p := page(core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{
		{Type: core.BlockThinking, Text: "let me think"},
		{Type: core.BlockText, Text: "done"},
	}})
	require.NoError(t, New(Config{}).Transform(p))
	assert.Len(t, p.Messages[0].Content, 2)
}

func TestCompactStripThinking(t *testing.T) {
	p := page(
		core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{
			{Type: core.BlockThinking, Text: "let me think"},
			{Type: core.BlockText, Text: "done"},
		}},
		core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{
			{Type: core.BlockReasoning, Text: "only reasoning"},
		}},
	)
	require.NoError(t, New(Config{StripThinking: true}).Transform(p))
	require.Len(t, p.Messages, 2)
	require.Len(t, p.Messages[0].Content, 1)
	assert.Equal(t, core.BlockText, p.Messages[0].Content[0].Type)
	assert.Empty(t, p.Messages[1].Content)
	assert.Equal(t, 2, p.Total)
}
