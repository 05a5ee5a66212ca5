package codex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaLine(id, cwd, provider string) string {
	return fmt.Sprintf(`{"timestamp":"2026-02-03T09:00:00.000Z","type":"session_meta","payload":{"id":%q,"timestamp":"2026-02-03T09:00:00.000Z","cwd":%q,"cli_version":"0.46.0","model_provider":%q,"git":{"branch":"main","commit_hash":"abc"}}}`, id, cwd, provider) + "\n"
}

func messageLine(role, itemType, text string) string {
	return fmt.Sprintf(`{"timestamp":"2026-02-03T09:01:00.000Z","type":"response_item","payload":{"type":"message","role":%q,"content":[{"type":%q,"text":%q}]}}`, role, itemType, text) + "\n"
}

func tokenLine(in, out int64) string {
	return fmt.Sprintf(`{"timestamp":"2026-02-03T09:02:00.000Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":%d,"cached_input_tokens":0,"output_tokens":%d,"total_tokens":%d}}}}`, in, out, in+out) + "\n"
}

const conversation = `{"timestamp":"2026-02-03T09:01:00.000Z","type":"response_item","payload":{"type":"message","role":"developer","content":[{"type":"input_text","text":"<permissions instructions>sandbox</permissions instructions>"}]}}
{"timestamp":"2026-02-03T09:01:00.000Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"<environment_context>\n  <cwd>/work/api</cwd>\n</environment_context>"}]}}
{"timestamp":"2026-02-03T09:01:01.000Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"list the handlers"}]}}
{"timestamp":"2026-02-03T09:01:02.000Z","type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"**Scanning**"},{"type":"summary_text","text":"look at routes"}],"encrypted_content":"xyz"}}
{"timestamp":"2026-02-03T09:01:03.000Z","type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{\"command\":[\"ls\"]}","call_id":"call_1"}}
{"timestamp":"2026-02-03T09:01:04.000Z","type":"response_item","payload":{"type":"function_call_output","call_id":"call_1","output":"{\"output\":\"main.go\\n\",\"metadata\":{\"exit_code\":0}}"}}
{"timestamp":"2026-02-03T09:01:05.000Z","type":"event_msg","payload":{"type":"agent_message","message":"done"}}
{"timestamp":"2026-02-03T09:01:06.000Z","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"There is one handler."}]}}
{"timestamp":"2026-02-03T09:01:07.000Z","type":"response_item","payload":{"type":"message","role":"system","content":"hidden"}}
`

// writeRollout writes a rollout under dir/rel and stamps its mtime.
func writeRollout(t *testing.T, dir, rel, body string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestParse(t *testing.T) {
	msgs, err := parse(strings.NewReader(conversation))
	require.NoError(t, err)
	require.Len(t, msgs, 6)

	for _, m := range msgs {
		assert.NotEqual(t, core.RoleSystem, m.Role)
		assert.NotEqual(t, core.Role("developer"), m.Role)
	}

	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, "list the handlers", msgs[1].Content[0].Text)
	require.NotNil(t, msgs[1].Timestamp)
	assert.Equal(t, time.Date(2026, 2, 3, 9, 1, 1, 0, time.UTC), msgs[1].Timestamp.UTC())

	reasoning := msgs[2].Content[0]
	assert.Equal(t, core.BlockReasoning, reasoning.Type)
	assert.Equal(t, "**Scanning**\nlook at routes", reasoning.Text)

	call := msgs[3].Content[0]
	assert.Equal(t, core.BlockFunctionCall, call.Type)
	assert.Equal(t, "shell", call.Name)
	assert.Equal(t, "call_1", call.CallID)
	assert.Equal(t, "{\n  \"command\": [\n    \"ls\"\n  ]\n}", call.Arguments)

	out := msgs[4]
	assert.Equal(t, core.RoleTool, out.Role)
	assert.Equal(t, core.BlockFunctionCallOutput, out.Content[0].Type)
	assert.Contains(t, out.Content[0].Output, "\n  \"metadata\": {")

	assert.Equal(t, core.RoleAssistant, msgs[5].Role)
	assert.Equal(t, core.FormatMarkdown, msgs[5].Content[0].Format)
}

func TestParseHidesDeveloperAndSystem(t *testing.T) {
	var b strings.Builder
	for _, role := range []string{"developer", "system", "user", "developer", "assistant", "system"} {
		b.WriteString(messageLine(role, "input_text", "text from "+role))
	}
	msgs, err := parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Contains(t, []core.Role{core.RoleUser, core.RoleAssistant}, m.Role)
	}
}

func TestReasoningText(t *testing.T) {
	tests := []struct {
		name string
		item rawResponseItem
		want string
	}{
		{"text field", rawResponseItem{Text: "plain"}, "plain"},
		{"summary string", rawResponseItem{Summary: []byte(`"one line"`)}, "one line"},
		{"summary fragments", rawResponseItem{Summary: []byte(`[{"text":"a"},{"text":""},{"text":"b"}]`)}, "a\nb"},
		{"empty summary", rawResponseItem{Summary: []byte(`[]`)}, ""},
		{"nothing", rawResponseItem{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reasoningText(tt.item))
		})
	}
}

func TestFunctionCallDefaults(t *testing.T) {
	msg, ok := mapResponseItem(rawResponseItem{Type: "function_call", Arguments: json.RawMessage(`"not json"`)})
	require.True(t, ok)
	assert.Equal(t, "unknown", msg.Content[0].Name)
	assert.Equal(t, "not json", msg.Content[0].Arguments)
}

func TestParseStructuredArguments(t *testing.T) {
	body := `{"timestamp":"2026-02-03T09:01:03.000Z","type":"response_item","payload":{"type":"function_call","name":"shell","arguments":{"cmd":["ls"]},"call_id":"call_2"}}
{"timestamp":"2026-02-03T09:01:04.000Z","type":"response_item","payload":{"type":"function_call_output","call_id":"call_2","output":{"output":"a.go"}}}
`
	msgs, err := parse(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	call := msgs[0].Content[0]
	assert.Equal(t, core.BlockFunctionCall, call.Type)
	assert.Equal(t, "call_2", call.CallID)
	assert.Equal(t, "{\n  \"cmd\": [\n    \"ls\"\n  ]\n}", call.Arguments)

	out := msgs[1].Content[0]
	assert.Equal(t, "{\n  \"output\": \"a.go\"\n}", out.Output)
}

func TestDateFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/h/.codex/sessions/2026/02/03/rollout-a.jsonl", "2026-02-03", true},
		{"/h/.codex/sessions/2026/2/3/rollout-a.jsonl", "2026-02-03", true},
		{"/h/.codex/sessions/26/02/03/rollout-a.jsonl", "", false},
		{"/h/.codex/sessions/2026/feb/03/rollout-a.jsonl", "", false},
		{"/h/.codex/sessions/2026/002/03/rollout-a.jsonl", "", false},
		{"rollout-a.jsonl", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := dateFromPath(filepath.FromSlash(tt.path))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionFilesOnlyDatedLayout(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeRollout(t, dir, "2026/02/03/rollout-a.jsonl", "", now)
	writeRollout(t, dir, "2026/02/04/rollout-b.jsonl", "", now)
	writeRollout(t, dir, "2026/02/04/notes.txt", "", now)
	writeRollout(t, dir, "stray.jsonl", "", now)

	r := &Reader{Dir: dir}
	files := r.sessionFiles()
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "rollout-a.jsonl"))

	missing := &Reader{Dir: filepath.Join(dir, "missing")}
	assert.Empty(t, missing.sessionFiles())
}

func TestScanSessionMetaReadAhead(t *testing.T) {
	filler := func(n int) string {
		return strings.Repeat(messageLine("assistant", "output_text", "working"), n)
	}
	tests := []struct {
		name      string
		body      string
		wantID    string
		wantCWD   string
		wantCount int
	}{
		{"first line", metaLine("id-1", "/work/api", "openai") + filler(5), "id-1", "/work/api", 5},
		{"fifth line", filler(4) + metaLine("id-5", "/work/api", "openai"), "id-5", "/work/api", 4},
		{"sixth line ignored", filler(5) + metaLine("id-6", "/work/api", "openai"), "rollout-late", "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRollout(t, t.TempDir(), "2026/02/03/rollout-late.jsonl", tt.body, time.Now())
			info, err := scanSession(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, info.id)
			assert.Equal(t, tt.wantCWD, info.cwd)
			assert.Equal(t, tt.wantCount, info.messageCount)
		})
	}
}

func TestScanSessionFirstPromptKeepsAngleBrackets(t *testing.T) {
	prompt := "Why does Vec<String> fail when a<b and c>d?"
	body := metaLine("id-1", "/work/api", "openai") +
		messageLine("user", "input_text", "<environment_context>\n  <cwd>/work/api</cwd>\n</environment_context>") +
		messageLine("user", "input_text", prompt)
	path := writeRollout(t, t.TempDir(), "2026/02/03/rollout-1.jsonl", body, time.Now())

	info, err := scanSession(path)
	require.NoError(t, err)
	assert.Equal(t, prompt, info.firstPrompt)
}

func TestSessionsAndProjects(t *testing.T) {
	dir := t.TempDir()
	t0 := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	writeRollout(t, dir, "2026/02/03/rollout-1.jsonl", metaLine("id-1", "/work/api", "openai")+conversation, t0)
	writeRollout(t, dir, "2026/02/04/rollout-2.jsonl", metaLine("id-2", "/work/api", "openai")+messageLine("user", "input_text", "again"), t0.Add(24*time.Hour))
	writeRollout(t, dir, "2026/02/05/rollout-3.jsonl", metaLine("id-3", "/work/web", "azure")+messageLine("user", "input_text", "hi"), t0.Add(48*time.Hour))
	writeRollout(t, dir, "2026/02/05/rollout-nometa.jsonl", messageLine("user", "input_text", "orphan"), t0)

	r := &Reader{Dir: dir}
	all, err := r.Sessions("")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "id-3", all[0].ID)

	api, err := r.Sessions("/work/api")
	require.NoError(t, err)
	require.Len(t, api, 2)
	s := api[1]
	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "list the handlers", s.FirstPrompt)
	assert.Equal(t, 3, s.MessageCount, "two user messages and one assistant message")
	assert.Equal(t, "api", s.ShortName)
	assert.Equal(t, "main", s.GitBranch)
	assert.Equal(t, "openai", s.ModelProvider)
	assert.Equal(t, "0.46.0", s.CLIVersion)
	require.NotNil(t, s.Created)
	assert.Equal(t, time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC), s.Created.UTC())

	var orphan core.Session
	for _, s := range all {
		if s.ID == "rollout-nometa" {
			orphan = s
		}
	}
	assert.Equal(t, "unknown", orphan.ShortName, "falls back to the file stem and unknown name")

	projects, err := r.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "/work/web", projects[0].Key)
	assert.Equal(t, "azure", projects[0].ModelProvider)
	assert.Equal(t, 2, projects[1].SessionCount)
	assert.True(t, projects[1].LastModified.Equal(t0.Add(24*time.Hour)))
}

func TestMessages(t *testing.T) {
	dir := t.TempDir()
	path := writeRollout(t, dir, "2026/02/03/rollout-1.jsonl", metaLine("id-1", "/work/api", "openai")+conversation, time.Now())
	r := &Reader{Dir: dir}

	page, err := r.Messages(path, "", 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Messages, 4)
	assert.True(t, page.HasMore)

	page, err = r.Messages("id-1", "", 1, 4)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.False(t, page.HasMore)

	_, err = r.Messages(filepath.Join(dir, "nope.jsonl"), "", 0, 4)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	writeRollout(t, dir, "2026/02/03/rollout-1.jsonl",
		metaLine("id-1", "/work/api", "openai")+conversation+messageLine("assistant", "output_text", "found UNIQUETOKEN123 here"), time.Now())
	writeRollout(t, dir, "2026/02/03/rollout-2.jsonl", metaLine("id-2", "/work/api", "openai"), time.Now())

	r := &Reader{Dir: dir}
	results, err := r.Search("UniqueToken123", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].MatchedText, "UNIQUETOKEN123")
	assert.Equal(t, "id-1", results[0].SessionID)
	assert.Equal(t, "/work/api", results[0].ProjectPath)
	assert.Equal(t, "list the handlers", results[0].FirstPrompt)

	results, err = r.Search("main.go", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.RoleTool, results[0].Role)

	results, err = r.Search("", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeRollout(t, dir, "2026/02/04/rollout-2.jsonl",
		metaLine("id-2", "/w", "openai")+messageLine("user", "input_text", "a")+tokenLine(10, 5)+tokenLine(100, 50), now)
	writeRollout(t, dir, "2026/02/03/rollout-1.jsonl",
		metaLine("id-1", "/w", "")+messageLine("user", "input_text", "a")+messageLine("assistant", "output_text", "b")+tokenLine(7, 3), now)
	writeRollout(t, dir, "2026/02/03/rollout-3.jsonl", metaLine("id-3", "/w", "openai"), now)

	r := &Reader{Dir: dir}
	stats, err := r.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.SessionCount)
	assert.Equal(t, 3, stats.MessageCount)
	assert.Equal(t, int64(107), stats.TotalInputTokens)
	assert.Equal(t, int64(53), stats.TotalOutputTokens)
	assert.Equal(t, int64(160), stats.TotalTokens)
	assert.Equal(t, map[string]int64{"openai": 150, "unknown": 10}, stats.TokensByModel)

	require.Len(t, stats.DailyTokens, 2)
	assert.Equal(t, "2026-02-03", stats.DailyTokens[0].Date)
	assert.Equal(t, int64(10), stats.DailyTokens[0].TotalTokens)
	assert.Equal(t, "2026-02-04", stats.DailyTokens[1].Date)
	assert.Equal(t, int64(150), stats.DailyTokens[1].TotalTokens)
}

func TestStatsEmpty(t *testing.T) {
	r := &Reader{Dir: filepath.Join(t.TempDir(), "missing")}
	stats, err := r.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.SessionCount)
	assert.Zero(t, stats.TotalTokens)
	assert.Empty(t, stats.DailyTokens)
}
