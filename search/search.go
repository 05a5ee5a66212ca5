// Package search runs a case-insensitive substring search over many
// independent files in parallel and extracts context around each match.
package search

import (
	"bytes"
	"runtime"
	"strings"
	"unicode"

	"github.com/Jiaweimsg/session-viewer/core"
	"golang.org/x/sync/errgroup"
)

// PerFileCap is the most results a single file may contribute.
const PerFileCap = 5

// Searcher evaluates one candidate and returns its matches, at most
// PerFileCap of them. It must swallow its own read and parse failures.
type Searcher[T any] func(candidate T) []core.SearchResult

// Run evaluates every candidate on a bounded pool of workers and returns the
// combined results truncated to maxResults. Each task owns one result slot,
// so results come back in candidate order regardless of completion order.
// workers <= 0 means one per CPU.
func Run[T any](candidates []T, maxResults, workers int, fn Searcher[T]) []core.SearchResult {
	if maxResults <= 0 || len(candidates) == 0 {
		return []core.SearchResult{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slots := make([][]core.SearchResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			slots[i] = fn(c)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]core.SearchResult, 0, min(maxResults, len(candidates)))
	for _, s := range slots {
		for _, r := range s {
			if len(results) == maxResults {
				return results
			}
			results = append(results, r)
		}
	}
	return results
}

// Query is a normalized search term.
type Query struct {
	raw   string
	lower string
}

// NewQuery prepares q for matching.
func NewQuery(q string) Query {
	return Query{raw: q, lower: strings.ToLower(q)}
}

// Empty reports whether there is nothing to search for.
func (q Query) Empty() bool { return q.raw == "" }

// String returns the query as given.
func (q Query) String() string { return q.raw }

// Match reports whether s contains the query, ignoring case.
func (q Query) Match(s string) bool {
	if q.lower == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), q.lower)
}

// MatchBytes is the whole-file pre-check. It prunes candidates before any
// structured parsing; a hit is re-verified per block.
func (q Query) MatchBytes(data []byte) bool {
	if q.lower == "" {
		return false
	}
	return bytes.Contains(bytes.ToLower(data), []byte(q.lower))
}

// Context returns up to radius characters on each side of the first match of
// q in text. When the match cannot be located it falls back to the first
// 2*radius characters of text.
func (q Query) Context(text string, radius int) string {
	runes := []rune(text)
	pos, n := q.find(runes)
	if pos < 0 {
		return core.TruncateChars(text, radius*2)
	}
	start := max(pos-radius, 0)
	end := min(pos+n+radius, len(runes))
	return string(runes[start:end])
}

// Snippet returns a window of width characters centred on the first match of
// q in text, with Ellipsis marking each side that was cut. When the match
// cannot be located it falls back to the first width characters.
func (q Query) Snippet(text string, width int) string {
	runes := []rune(text)
	pos, n := q.find(runes)
	if pos < 0 {
		if len(runes) > width {
			return string(runes[:width])
		}
		return text
	}
	start := max(pos-width/2, 0)
	end := min(pos+n+width/2, len(runes))

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = core.Ellipsis + snippet
	}
	if end < len(runes) {
		snippet += core.Ellipsis
	}
	return snippet
}

// find locates the query in runes by character index, folding each
// character to lower case. It returns -1 when there is no match.
func (q Query) find(runes []rune) (pos, n int) {
	needle := []rune(q.raw)
	for i, r := range needle {
		needle[i] = unicode.ToLower(r)
	}
	n = len(needle)
	if n == 0 || n > len(runes) {
		return -1, n
	}
	for i := 0; i+n <= len(runes); i++ {
		if foldEqual(runes[i:i+n], needle) {
			return i, n
		}
	}
	return -1, n
}

func foldEqual(window, lowerNeedle []rune) bool {
	for i, r := range window {
		if unicode.ToLower(r) != lowerNeedle[i] {
			return false
		}
	}
	return true
}
