package claude

import (
	"strings"
	"testing"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloSession = `{"type":"user","message":{"role":"user","content":"hello"}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi there"}]}}
`

func TestParseHelloSession(t *testing.T) {
	tr, err := parse(strings.NewReader(helloSession))
	require.NoError(t, err)

	page := core.Paginate(tr.messages, 0, 10)
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.HasMore)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, core.RoleUser, page.Messages[0].Role)
	assert.Equal(t, "hello", page.Messages[0].Content[0].Text)
	assert.Equal(t, core.RoleAssistant, page.Messages[1].Role)
	assert.Equal(t, "hi there", page.Messages[1].Content[0].Text)
	assert.Equal(t, core.FormatMarkdown, page.Messages[1].Content[0].Format)
}

func TestParseContentBlocks(t *testing.T) {
	input := `{"type":"assistant","uuid":"a1","timestamp":"2026-01-15T10:00:00.000Z","message":{"role":"assistant","content":[` +
		`{"type":"thinking","thinking":"let me look"},` +
		`{"type":"tool_use","id":"tu1","name":"Read","input":{"file_path":"main.go"}},` +
		`{"type":"server_tool_use","id":"x"},` +
		`{"type":"text","text":"   "}]}}
{"type":"user","uuid":"u2","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu1","content":[{"type":"text","text":"package main"},{"type":"text","text":"func main() {}"}],"is_error":true}]}}
`
	tr, err := parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tr.messages, 2)

	blocks := tr.messages[0].Content
	require.Len(t, blocks, 3, "blank text is dropped")
	assert.Equal(t, core.BlockThinking, blocks[0].Type)
	assert.Equal(t, "let me look", blocks[0].Text)

	assert.Equal(t, core.BlockToolUse, blocks[1].Type)
	assert.Equal(t, "tu1", blocks[1].ToolUseID)
	assert.Equal(t, "Read", blocks[1].Name)
	assert.Equal(t, "{\n  \"file_path\": \"main.go\"\n}", blocks[1].Input)

	assert.Equal(t, core.BlockUnknown, blocks[2].Type)
	assert.Equal(t, "server_tool_use", blocks[2].Tag)

	require.NotNil(t, tr.messages[0].Timestamp)
	assert.Equal(t, "a1", tr.messages[0].ID)

	result := tr.messages[1].Content[0]
	assert.Equal(t, core.BlockToolResult, result.Type)
	assert.Equal(t, "tu1", result.ToolUseID)
	assert.Equal(t, "package main\nfunc main() {}", result.Content)
	assert.True(t, result.IsError)
}

func TestParseSkipsBadAndIrrelevantLines(t *testing.T) {
	input := `not json at all
{"type":"summary","summary":"Login fix","leafUuid":"x"}
{"type":"file-history-snapshot","snapshot":{}}

{"type":"user","sessionId":"s1","cwd":"/work/app","message":{"role":"user","content":"fix it"}}
{"type":"assistant","message":{"role":"assistant","content":[]}}
{"type":"user","message":{"role":"user","content":[{"type":"text"
`
	tr, err := parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tr.messages, 1)
	assert.Equal(t, "fix it", tr.messages[0].Content[0].Text)
	assert.Equal(t, "s1", tr.sessionID)
	assert.Equal(t, "/work/app", tr.cwd)
}

func TestParseIsMonotoneInTruncation(t *testing.T) {
	full := helloSession + `{"type":"user","message":{"role":"user","content":"and again"}}` + "\n"
	whole, err := parse(strings.NewReader(full))
	require.NoError(t, err)

	for n := 0; n <= len(full); n += 7 {
		prefix, err := parse(strings.NewReader(full[:n]))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(prefix.messages), len(whole.messages), "prefix %d", n)
	}
}

func TestUserText(t *testing.T) {
	tests := []struct {
		name string
		msg  core.Message
		want string
	}{
		{
			name: "plain text",
			msg:  core.Message{Role: core.RoleUser, Content: []core.ContentBlock{{Type: core.BlockText, Text: "add tests"}}},
			want: "add tests",
		},
		{
			name: "skips injected markup",
			msg: core.Message{Role: core.RoleUser, Content: []core.ContentBlock{
				{Type: core.BlockText, Text: "<system-reminder>ignore</system-reminder>"},
				{Type: core.BlockText, Text: "real prompt"},
			}},
			want: "real prompt",
		},
		{
			name: "assistant has no user text",
			msg:  core.Message{Role: core.RoleAssistant, Content: []core.ContentBlock{{Type: core.BlockText, Text: "hi"}}},
			want: "",
		},
		{
			name: "tool results only",
			msg:  core.Message{Role: core.RoleUser, Content: []core.ContentBlock{{Type: core.BlockToolResult, Content: "ok"}}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userText(tt.msg))
		})
	}
}
