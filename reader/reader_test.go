package reader

import (
	"errors"
	"testing"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReader serves canned data for one tool.
type stubReader struct {
	tool      core.Tool
	sessions  []core.Session
	results   []core.SearchResult
	stats     *core.Stats
	searchErr error
	limits    []int
}

func (s *stubReader) Tool() core.Tool                   { return s.tool }
func (s *stubReader) Projects() ([]core.Project, error) { return nil, nil }
func (s *stubReader) Sessions(string) ([]core.Session, error) {
	return s.sessions, nil
}
func (s *stubReader) Messages(string, string, int, int) (*core.Page, error) {
	return &core.Page{}, nil
}
func (s *stubReader) Stats() (*core.Stats, error) { return s.stats, nil }

func (s *stubReader) Search(_ string, max int) ([]core.SearchResult, error) {
	s.limits = append(s.limits, max)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(s.results) > max {
		return s.results[:max], nil
	}
	return s.results, nil
}

func hits(tool core.Tool, ids ...string) []core.SearchResult {
	out := make([]core.SearchResult, len(ids))
	for i, id := range ids {
		out[i] = core.SearchResult{Tool: tool, SessionID: id}
	}
	return out
}

func TestSearchAll(t *testing.T) {
	a := &stubReader{tool: core.ToolClaude, results: hits(core.ToolClaude, "a1", "a2")}
	b := &stubReader{tool: core.ToolCodex, results: hits(core.ToolCodex, "b1", "b2")}
	c := &stubReader{tool: core.ToolOpenCode, results: hits(core.ToolOpenCode, "c1")}

	got, err := SearchAll([]Reader{a, b, c}, "x", 3)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.SessionID
	}
	assert.Equal(t, []string{"a1", "a2", "b1"}, ids)
	assert.Equal(t, []int{3}, a.limits)
	assert.Equal(t, []int{1}, b.limits)
	assert.Empty(t, c.limits, "limit reached before the last reader")
}

func TestSearchAllEmpty(t *testing.T) {
	got, err := SearchAll(nil, "x", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchAllError(t *testing.T) {
	boom := errors.New("boom")
	r := &stubReader{tool: core.ToolCodex, searchErr: boom}

	_, err := SearchAll([]Reader{r}, "x", 5)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "search codex")
}

func TestSessionsGroupedFallback(t *testing.T) {
	r := &stubReader{tool: core.ToolClaude, sessions: []core.Session{{ID: "s1"}, {ID: "s2"}}}

	groups, err := SessionsGrouped(r, "p")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "s1", groups[0].Root.ID)
	assert.NotNil(t, groups[0].Children)
	assert.Empty(t, groups[1].Children)
}

func TestTokenSummaryFallback(t *testing.T) {
	want := &core.Stats{Tool: core.ToolCodex, SessionCount: 3}
	r := &stubReader{tool: core.ToolCodex, stats: want}

	got, err := TokenSummary(r)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestResolveWorkDirFallback(t *testing.T) {
	r := &stubReader{tool: core.ToolCodex}
	assert.Equal(t, "/work/app", ResolveWorkDir(r, "s1", "/work/app", "/logs/s1.jsonl"))
}
