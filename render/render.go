// Package render defines the interfaces for writing projects, sessions,
// message pages, search results and stats in various output formats.
package render

import (
	"io"

	"github.com/Jiaweimsg/session-viewer/core"
)

// MessageRenderer writes one page of a session's messages.
type MessageRenderer interface {
	Messages(w io.Writer, p *core.Page) error
}

// Renderer writes every kind of query result in a specific format.
type Renderer interface {
	MessageRenderer
	Projects(w io.Writer, projects []core.Project) error
	Sessions(w io.Writer, sessions []core.Session) error
	SessionGroups(w io.Writer, groups []core.SessionGroup) error
	SearchResults(w io.Writer, results []core.SearchResult) error
	Stats(w io.Writer, s *core.Stats) error
}
