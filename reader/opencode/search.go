package opencode

import (
	"os"
	"path/filepath"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/search"
)

// Search implements reader.Reader. Each session is one unit of work and
// matches are looked for in each message's display text, the same text
// Messages returns.
func (r *Reader) Search(query string, maxResults int) ([]core.SearchResult, error) {
	q := search.NewQuery(query)
	if q.Empty() {
		return []core.SearchResult{}, nil
	}
	return search.Run(r.allSessionFiles(), maxResults, r.Workers, func(f sessionFile) []core.SearchResult {
		return r.searchSession(q, f)
	}), nil
}

func (r *Reader) searchSession(q search.Query, f sessionFile) []core.SearchResult {
	raw, err := readJSON[rawSession](f.path)
	if err != nil {
		return nil
	}
	if raw.ID == "" {
		raw.ID = stem(f.path)
	}
	if !validKey(raw.ID) || !r.sessionMayMatch(q, raw.ID) {
		return nil
	}

	var (
		results     []core.SearchResult
		firstPrompt string
	)
	for _, m := range r.loadMessages(raw.ID) {
		text := r.displayText(m)
		if firstPrompt == "" && m.Role == string(core.RoleUser) {
			firstPrompt = core.TruncateChars(core.CleanUserText(text), promptChars)
		}
		if !q.Match(text) {
			continue
		}
		results = append(results, core.SearchResult{
			Tool:        core.ToolOpenCode,
			ProjectKey:  f.hash,
			ProjectPath: raw.Directory,
			ShortName:   core.ShortName(raw.Directory),
			SessionID:   raw.ID,
			MessageID:   m.ID,
			FirstPrompt: firstPrompt,
			MatchedText: q.Snippet(text, snippetWidth),
			Role:        core.Role(m.Role),
			Timestamp:   millis(m.Time.Created),
			FilePath:    filepath.Join(r.messageDir(), raw.ID),
		})
		if len(results) >= search.PerFileCap {
			break
		}
	}
	return results
}

// sessionMayMatch checks the raw bytes of a session's message and part
// documents for the query before any of them are decoded. Part directories
// are keyed by message id, which is the message document's file name.
func (r *Reader) sessionMayMatch(q search.Query, sessionID string) bool {
	for _, f := range jsonFiles(filepath.Join(r.messageDir(), sessionID)) {
		if fileMayMatch(q, f) {
			return true
		}
		for _, p := range jsonFiles(filepath.Join(r.partDir(), stem(f))) {
			if fileMayMatch(q, p) {
				return true
			}
		}
	}
	return false
}

func fileMayMatch(q search.Query, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return q.MatchBytes(data)
}
