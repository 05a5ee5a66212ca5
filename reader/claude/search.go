package claude

import (
	"bytes"
	"os"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/search"
)

// Search implements reader.Reader.
func (r *Reader) Search(query string, maxResults int) ([]core.SearchResult, error) {
	q := search.NewQuery(query)
	if q.Empty() {
		return []core.SearchResult{}, nil
	}
	return search.Run(r.allSessionFiles(), maxResults, r.Workers, func(f sessionFile) []core.SearchResult {
		return searchFile(q, f)
	}), nil
}

func searchFile(q search.Query, f sessionFile) []core.SearchResult {
	data, err := os.ReadFile(f.path)
	if err != nil || !q.MatchBytes(data) {
		return nil
	}
	t, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	var firstPrompt string
	for _, m := range t.messages {
		if text := userText(m); text != "" {
			firstPrompt = core.TruncateChars(text, searchPromptChars)
			break
		}
	}

	path := t.cwd
	if path == "" {
		path = decodeProjectKey(f.projectKey)
	}
	sessionID := t.sessionID
	if sessionID == "" {
		sessionID = sessionIDFromPath(f.path)
	}

	var results []core.SearchResult
	for _, m := range t.messages {
		for _, b := range m.Content {
			text := b.SearchText()
			if !q.Match(text) {
				continue
			}
			results = append(results, core.SearchResult{
				Tool:        core.ToolClaude,
				ProjectKey:  f.projectKey,
				ProjectPath: path,
				ShortName:   core.ShortName(path),
				SessionID:   sessionID,
				MessageID:   m.ID,
				FirstPrompt: firstPrompt,
				MatchedText: q.Context(text, contextRadius),
				Role:        m.Role,
				Timestamp:   m.Timestamp,
				FilePath:    f.path,
			})
			if len(results) >= search.PerFileCap {
				return results
			}
		}
	}
	return results
}
