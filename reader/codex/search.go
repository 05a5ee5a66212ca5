package codex

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
	return search.Run(r.sessionFiles(), maxResults, r.Workers, func(path string) []core.SearchResult {
		return searchFile(q, path)
	}), nil
}

func searchFile(q search.Query, path string) []core.SearchResult {
	data, err := os.ReadFile(path)
	if err != nil || !q.MatchBytes(data) {
		return nil
	}

	id, cwd := stem(path), ""
	lines := bytes.SplitN(data, []byte("\n"), metaReadAhead+1)
	for i, line := range lines {
		if i == metaReadAhead {
			break
		}
		if meta, _, ok := decodeMeta(line); ok {
			if meta.ID != "" {
				id = meta.ID
			}
			cwd = meta.CWD
			break
		}
	}

	msgs, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	var firstPrompt string
	for _, m := range msgs {
		if text := userText(m); text != "" {
			firstPrompt = core.TruncateChars(text, searchPromptChars)
			break
		}
	}

	var results []core.SearchResult
	for _, m := range msgs {
		for _, b := range m.Content {
			text := b.SearchText()
			if !q.Match(text) {
				continue
			}
			results = append(results, core.SearchResult{
				Tool:        core.ToolCodex,
				ProjectKey:  cwd,
				ProjectPath: cwd,
				ShortName:   core.ShortName(cwd),
				SessionID:   id,
				FirstPrompt: firstPrompt,
				MatchedText: q.Context(text, contextRadius),
				Role:        m.Role,
				Timestamp:   m.Timestamp,
				FilePath:    path,
			})
			if len(results) >= search.PerFileCap {
				return results
			}
		}
	}
	return results
}
