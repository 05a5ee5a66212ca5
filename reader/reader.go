// Package reader defines the contract every tool adapter implements to turn
// its on-disk session logs into the unified model.
package reader

import (
	"fmt"

	"github.com/Jiaweimsg/session-viewer/core"
)

// Reader lists, pages, searches and summarizes one tool's session logs.
// Every call re-reads the filesystem; nothing is cached between calls.
type Reader interface {
	// Tool returns the tag this reader serves.
	Tool() core.Tool

	// Projects returns every project that owns at least one session,
	// most recently modified first.
	Projects() ([]core.Project, error)

	// Sessions returns the sessions of one project, most recently modified
	// first. The meaning of projectKey is tool specific.
	Sessions(projectKey string) ([]core.Session, error)

	// Messages returns one page of a session's visible messages.
	Messages(sessionKey, projectKey string, page, pageSize int) (*core.Page, error)

	// Search returns up to maxResults case-insensitive substring matches
	// across every session of the tool. An empty query yields no results.
	Search(query string, maxResults int) ([]core.SearchResult, error)

	// Stats returns the tool's usage summary. Missing data yields zeros.
	Stats() (*core.Stats, error)
}

// SessionGrouper is implemented by readers whose sessions nest.
type SessionGrouper interface {
	SessionsGrouped(projectKey string) ([]core.SessionGroup, error)
}

// TokenSummarizer is implemented by readers that can derive a per-day
// input/output token split.
type TokenSummarizer interface {
	TokenSummary() (*core.Stats, error)
}

// WorkDirResolver is implemented by readers that record a more reliable
// working directory than the one the caller supplies.
type WorkDirResolver interface {
	ResolveWorkDir(sessionID, workDir, filePath string) string
}

// SessionsGrouped returns r's grouped sessions, or wraps each session as a
// root with no children when r does not nest sessions.
func SessionsGrouped(r Reader, projectKey string) ([]core.SessionGroup, error) {
	if g, ok := r.(SessionGrouper); ok {
		return g.SessionsGrouped(projectKey)
	}
	sessions, err := r.Sessions(projectKey)
	if err != nil {
		return nil, err
	}
	groups := make([]core.SessionGroup, len(sessions))
	for i, s := range sessions {
		groups[i] = core.SessionGroup{Root: s, Children: []core.Session{}}
	}
	return groups, nil
}

// TokenSummary returns r's token summary, falling back to its Stats.
func TokenSummary(r Reader) (*core.Stats, error) {
	if s, ok := r.(TokenSummarizer); ok {
		return s.TokenSummary()
	}
	return r.Stats()
}

// ResolveWorkDir returns the directory a session should resume in.
func ResolveWorkDir(r Reader, sessionID, workDir, filePath string) string {
	if res, ok := r.(WorkDirResolver); ok {
		return res.ResolveWorkDir(sessionID, workDir, filePath)
	}
	return workDir
}

// SearchAll queries readers in order and concatenates their results until
// limit is reached.
func SearchAll(readers []Reader, query string, limit int) ([]core.SearchResult, error) {
	results := []core.SearchResult{}
	for _, r := range readers {
		if len(results) >= limit {
			break
		}
		found, err := r.Search(query, limit-len(results))
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", r.Tool(), err)
		}
		results = append(results, found...)
	}
	return results, nil
}
