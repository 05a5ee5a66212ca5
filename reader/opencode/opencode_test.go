package opencode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storage builds an OpenCode storage tree in a temp directory.
type storage struct {
	t   *testing.T
	dir string
}

func newStorage(t *testing.T) *storage {
	return &storage{t: t, dir: t.TempDir()}
}

func (s *storage) write(rel, body string) {
	s.t.Helper()
	path := filepath.Join(s.dir, filepath.FromSlash(rel))
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(s.t, os.WriteFile(path, []byte(body), 0o644))
}

func (s *storage) project(hash, worktree string) {
	s.write("project/"+hash+".json", fmt.Sprintf(`{"id":%q,"worktree":%q,"vcs":"git","sandboxes":[],"time":{"created":1,"updated":2}}`, hash, worktree))
}

func (s *storage) session(hash, id, parent, title string, created, updated int64) {
	parentField := ""
	if parent != "" {
		parentField = fmt.Sprintf(`"parentID":%q,`, parent)
	}
	s.write(fmt.Sprintf("session/%s/%s.json", hash, id), fmt.Sprintf(
		`{"id":%q,"slug":"brave-otter","version":"1.0.3","projectID":%q,"directory":"/work/app",%s"title":%q,"time":{"created":%d,"updated":%d},"summary":{"additions":4,"deletions":1,"files":2}}`,
		id, hash, parentField, title, created, updated))
}

func (s *storage) message(session, id, role string, created int64, extra string) {
	s.write(fmt.Sprintf("message/%s/%s.json", session, id), fmt.Sprintf(
		`{"id":%q,"sessionID":%q,"role":%q,"time":{"created":%d}%s}`, id, session, role, created, extra))
}

func (s *storage) part(message, id, typ, text string) {
	s.write(fmt.Sprintf("part/%s/%s.json", message, id), fmt.Sprintf(
		`{"id":%q,"messageID":%q,"type":%q,"text":%q}`, id, message, typ, text))
}

func (s *storage) reader() *Reader { return &Reader{Dir: s.dir} }

// conversation writes one session with a user prompt split over two parts,
// an assistant reply, a message with only a summary title and a message
// with nothing to show.
func conversation(s *storage, session string) {
	s.message(session, "msg_01", "user", 1000, `,"summary":{"title":"Fix login"},"system":"You are helpful"`)
	s.part("msg_01", "prt_01", "text", "fix the login")
	s.part("msg_01", "prt_02", "tool", "")
	s.part("msg_01", "prt_03", "text", "it returns 500")

	s.message(session, "msg_02", "assistant", 2000, `,"model":{"providerID":"anthropic","modelID":"claude-sonnet"}`)
	s.part("msg_02", "prt_01", "text", "The handler panics on nil.")

	s.message(session, "msg_03", "assistant", 3000, `,"summary":{"title":"Patched handler"}`)
	s.message(session, "msg_04", "assistant", 4000, `,"summary":{"title":"   "}`)
}

func TestMessages(t *testing.T) {
	s := newStorage(t)
	conversation(s, "ses_1")

	page, err := s.reader().Messages("ses_1", "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total, "messages with nothing to show are excluded before paging")
	assert.False(t, page.HasMore)

	first := page.Messages[0]
	assert.Equal(t, "msg_01", first.ID)
	assert.Equal(t, core.RoleUser, first.Role)
	assert.Equal(t, "fix the login\n\nit returns 500", first.Content[0].Text)
	require.NotNil(t, first.Timestamp)
	assert.Equal(t, int64(1000), first.Timestamp.UnixMilli())

	assert.Equal(t, "Patched handler", page.Messages[2].Content[0].Text)
	assert.Equal(t, core.FormatMarkdown, page.Messages[2].Content[0].Format)

	page, err = s.reader().Messages("ses_1", "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	assert.False(t, page.HasMore)
}

func TestMessagesOrderByCreated(t *testing.T) {
	s := newStorage(t)
	s.message("ses_1", "msg_b", "assistant", 2000, "")
	s.part("msg_b", "p", "text", "second")
	s.message("ses_1", "msg_a", "user", 1000, "")
	s.part("msg_a", "p", "text", "first")
	s.write("message/ses_1/broken.json", "{")

	page, err := s.reader().Messages("ses_1", "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "first", page.Messages[0].Content[0].Text)
	assert.Equal(t, "second", page.Messages[1].Content[0].Text)
}

func TestMessagesMissingSession(t *testing.T) {
	s := newStorage(t)
	page, err := s.reader().Messages("ses_none", "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Messages)

	_, err = s.reader().Messages("../x", "", 0, 10)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSessions(t *testing.T) {
	s := newStorage(t)
	s.project("abc", "/work/app")
	s.session("abc", "ses_1", "", "Login fix", 1000, 5000)
	s.session("abc", "ses_2", "", "Later", 2000, 9000)
	conversation(s, "ses_1")

	sessions, err := s.reader().Sessions("abc")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "ses_2", sessions[0].ID)

	got := sessions[1]
	assert.Equal(t, core.ToolOpenCode, got.Tool)
	assert.Equal(t, "abc", got.ProjectKey)
	assert.Equal(t, "/work/app", got.ProjectPath)
	assert.Equal(t, "app", got.ShortName)
	assert.Equal(t, "Login fix", got.Title)
	assert.Equal(t, "brave-otter", got.Slug)
	assert.Equal(t, "fix the login\n\nit returns 500", got.FirstPrompt)
	assert.Equal(t, 4, got.MessageCount)
	assert.Equal(t, "anthropic", got.ModelProvider)
	assert.Equal(t, "claude-sonnet", got.Model)
	assert.Equal(t, 4, got.Additions)
	assert.Equal(t, 2, got.FilesChanged)
	assert.Equal(t, int64(1000), got.Created.UnixMilli())
	assert.Equal(t, int64(5000), got.Modified.UnixMilli())

	assert.Zero(t, sessions[0].MessageCount)
	assert.Empty(t, sessions[0].FirstPrompt)
}

func TestFirstPromptFallsBackToSystem(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "ses_1", "", "", 1, 1)
	s.message("ses_1", "msg_01", "user", 1, `,"system":"You are a careful reviewer"`)

	sessions, err := s.reader().Sessions("abc")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "You are a careful reviewer", sessions[0].FirstPrompt)
}

func TestSessionsGrouped(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "root_old", "", "old", 100, 1000)
	s.session("abc", "root_new", "", "new", 200, 2000)
	s.session("abc", "child_late", "root_old", "late", 400, 400)
	s.session("abc", "child_early", "root_old", "early", 300, 3000)
	s.session("abc", "orphan", "missing", "orphan", 500, 500)

	groups, err := s.reader().SessionsGrouped("abc")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "root_new", groups[0].Root.ID)
	assert.Empty(t, groups[0].Children)
	assert.NotNil(t, groups[0].Children)

	assert.Equal(t, "root_old", groups[1].Root.ID)
	require.Len(t, groups[1].Children, 2)
	assert.Equal(t, "child_early", groups[1].Children[0].ID)
	assert.Equal(t, "child_late", groups[1].Children[1].ID)
}

func TestProjects(t *testing.T) {
	s := newStorage(t)
	s.project("abc", "/work/app")
	s.session("abc", "ses_1", "", "", 1, 1)
	s.session("abc", "ses_2", "", "", 1, 1)
	s.session(globalHash, "ses_g", "", "", 1, 1)
	s.project(globalHash, "/")
	s.write("session/nometa/ses_3.json", `{"id":"ses_3"}`)

	projects, err := s.reader().Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1, "global bucket and projects without a document are skipped")
	assert.Equal(t, "abc", projects[0].Key)
	assert.Equal(t, "/work/app", projects[0].Path)
	assert.Equal(t, "app", projects[0].ShortName)
	assert.Equal(t, 2, projects[0].SessionCount)
	assert.NotNil(t, projects[0].LastModified)
}

func TestMissingStorage(t *testing.T) {
	r := &Reader{Dir: filepath.Join(t.TempDir(), "missing")}

	projects, err := r.Projects()
	require.NoError(t, err)
	assert.Empty(t, projects)

	results, err := r.Search("x", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	stats, err := r.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.SessionCount)
	assert.Zero(t, stats.MessageCount)
}

func TestSearch(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "ses_1", "", "", 1, 1)
	conversation(s, "ses_1")
	s.message("ses_1", "msg_05", "assistant", 5000, "")
	s.part("msg_05", "prt_01", "text", "deployed with UNIQUETOKEN123 enabled")

	results, err := s.reader().Search("uniquetoken123", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	assert.Contains(t, res.MatchedText, "UNIQUETOKEN123")
	assert.Equal(t, "ses_1", res.SessionID)
	assert.Equal(t, "msg_05", res.MessageID)
	assert.Equal(t, "abc", res.ProjectKey)
	assert.Equal(t, "app", res.ShortName)
	assert.Equal(t, "fix the login\n\nit returns 500", res.FirstPrompt)
	assert.Equal(t, core.RoleAssistant, res.Role)

	results, err = s.reader().Search("patched", 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "summary titles are searchable when a message has no parts")
}

func TestSessionMayMatch(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "ses_1", "", "", 1, 1)
	conversation(s, "ses_1")
	r := s.reader()

	tests := []struct {
		query string
		want  bool
	}{
		{"PANICS ON NIL", true},
		{"patched handler", true},
		{"it returns 500", true},
		{"UNIQUETOKEN123", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, r.sessionMayMatch(search.NewQuery(tt.query), "ses_1"))
		})
	}
	assert.False(t, r.sessionMayMatch(search.NewQuery("fix"), "ses_missing"))
}

func TestSearchSkipsSessionsWithoutMatch(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "ses_1", "", "", 1, 1)
	conversation(s, "ses_1")
	s.session("abc", "ses_2", "", "", 2, 2)
	s.message("ses_2", "msg_20", "user", 1000, "")
	s.part("msg_20", "prt_01", "text", "nothing relevant")
	s.write("message/ses_2/msg_21.json", "{broken")

	results, err := s.reader().Search("panics", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ses_1", results[0].SessionID)
}

func TestStats(t *testing.T) {
	s := newStorage(t)
	s.session("abc", "ses_1", "", "", 1, 1)
	s.session("def", "ses_2", "", "", 1, 1)
	conversation(s, "ses_1")
	s.message("ses_2", "msg_x", "user", 1, "")

	stats, err := s.reader().Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SessionCount)
	assert.Equal(t, 5, stats.MessageCount)
	assert.Zero(t, stats.TotalTokens)
	assert.Empty(t, stats.TokensByModel)
	assert.Empty(t, stats.DailyTokens)
}
