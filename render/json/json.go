// Package json renders query results as JSON, serializing the unified model
// as-is.
package json

import (
	"io"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

// Renderer renders query results to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// New creates a JSON Renderer.
func New(indent bool) *Renderer {
	return &Renderer{Indent: indent}
}

func (r *Renderer) Messages(w io.Writer, p *core.Page) error {
	return r.encode(w, p)
}

func (r *Renderer) Projects(w io.Writer, projects []core.Project) error {
	return r.encode(w, nonNil(projects))
}

func (r *Renderer) Sessions(w io.Writer, sessions []core.Session) error {
	return r.encode(w, nonNil(sessions))
}

func (r *Renderer) SessionGroups(w io.Writer, groups []core.SessionGroup) error {
	return r.encode(w, nonNil(groups))
}

func (r *Renderer) SearchResults(w io.Writer, results []core.SearchResult) error {
	return r.encode(w, nonNil(results))
}

func (r *Renderer) Stats(w io.Writer, s *core.Stats) error {
	return r.encode(w, s)
}

func (r *Renderer) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// nonNil makes empty results encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
