// Package opencode reads OpenCode session data, a tree of JSON documents in
// ~/.local/share/opencode/storage/.
//
// The storage root holds four parallel trees:
//
//	project/<hash>.json              one project per worktree
//	session/<hash>/<session>.json    sessions of a project
//	message/<session>/<message>.json message metadata, no text
//	part/<message>/<part>.json       the text and tool parts of a message
package opencode

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
)

// Reader reads OpenCode JSON storage.
type Reader struct {
	// Dir overrides the default storage directory
	// (~/.local/share/opencode/storage/).
	Dir string

	// Workers bounds search parallelism. Zero means one per CPU.
	Workers int
}

const (
	promptChars  = 100
	snippetWidth = 200

	// globalHash buckets sessions started outside any worktree.
	globalHash = "global"
)

// Raw JSON deserialization types.

type rawProject struct {
	ID       string  `json:"id"`
	Worktree string  `json:"worktree"`
	VCS      string  `json:"vcs"`
	Time     rawTime `json:"time"`
}

type rawSession struct {
	ID        string             `json:"id"`
	Slug      string             `json:"slug"`
	Version   string             `json:"version"`
	ProjectID string             `json:"projectID"`
	Directory string             `json:"directory"`
	ParentID  string             `json:"parentID"`
	Title     string             `json:"title"`
	Time      rawTime            `json:"time"`
	Summary   *rawSessionSummary `json:"summary"`
}

type rawSessionSummary struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Files     int `json:"files"`
}

type rawTime struct {
	Created int64 `json:"created"` // unix milliseconds
	Updated int64 `json:"updated"`
}

type rawMessage struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionID"`
	Role      string             `json:"role"`
	Time      rawTime            `json:"time"`
	Summary   *rawMessageSummary `json:"summary"`
	Agent     string             `json:"agent"`
	Model     *rawModel          `json:"model"`
	ModelID   string             `json:"modelID"`
	Provider  string             `json:"providerID"`
	System    string             `json:"system"`
}

type rawMessageSummary struct {
	Title string `json:"title"`
}

type rawModel struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

type rawPart struct {
	ID        string `json:"id"`
	MessageID string `json:"messageID"`
	Type      string `json:"type"`
	Text      string `json:"text"`
}

// Tool implements reader.Reader.
func (r *Reader) Tool() core.Tool { return core.ToolOpenCode }

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "opencode", "storage")
}

func (r *Reader) projectDir() string { return filepath.Join(r.dir(), "project") }
func (r *Reader) sessionDir() string { return filepath.Join(r.dir(), "session") }
func (r *Reader) messageDir() string { return filepath.Join(r.dir(), "message") }
func (r *Reader) partDir() string    { return filepath.Join(r.dir(), "part") }

func millis(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// model returns the provider and model a message was produced with. Older
// assistant messages record them at the top level.
func (m rawMessage) model() (provider, model string) {
	if m.Model != nil {
		return m.Model.ProviderID, m.Model.ModelID
	}
	return m.Provider, m.ModelID
}
