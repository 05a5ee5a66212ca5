// Package manifest reads the session index file (sessions-index.json) that
// Claude Code keeps in each project directory and reconciles it against the
// session files actually present on disk.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

// FileName is the index file's name inside a project directory.
const FileName = "sessions-index.json"

// State classifies an index file.
type State int

const (
	StateAbsent State = iota
	StateEmpty
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEmpty:
		return "empty"
	default:
		return "populated"
	}
}

// Entry is one session as recorded by the index.
type Entry struct {
	SessionID    string `json:"sessionId"`
	FullPath     string `json:"fullPath,omitempty"`
	FileMtime    int64  `json:"fileMtime,omitempty"` // unix milliseconds
	FirstPrompt  string `json:"firstPrompt,omitempty"`
	Summary      string `json:"summary,omitempty"`
	MessageCount int    `json:"messageCount,omitempty"`
	Created      string `json:"created,omitempty"`
	Modified     string `json:"modified,omitempty"`
	GitBranch    string `json:"gitBranch,omitempty"`
	ProjectPath  string `json:"projectPath,omitempty"`
	IsSidechain  bool   `json:"isSidechain,omitempty"`
}

// CreatedTime parses Created, returning the zero time when absent.
func (e Entry) CreatedTime() time.Time { return parseTime(e.Created) }

// ModifiedTime parses Modified, falling back to FileMtime.
func (e Entry) ModifiedTime() time.Time {
	if t := parseTime(e.Modified); !t.IsZero() {
		return t
	}
	if e.FileMtime > 0 {
		return time.UnixMilli(e.FileMtime).UTC()
	}
	return time.Time{}
}

// Manifest holds the decoded index file.
type Manifest struct {
	Version      int     `json:"version,omitempty"`
	Entries      []Entry `json:"entries"`
	OriginalPath string  `json:"originalPath,omitempty"`

	exists bool
}

// ReadFile reads an index from disk. Returns an empty, absent Manifest if the
// file does not exist.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrRead, path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrParse, path, err)
	}
	m.exists = true
	return &m, nil
}

// State reports whether the index was absent, empty, or populated.
func (m *Manifest) State() State {
	switch {
	case !m.exists:
		return StateAbsent
	case len(m.Entries) == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

// Scanner builds an entry for a session file the index does not know about.
// It returns false when the file cannot be read.
type Scanner func(sessionID, path string) (Entry, bool)

// Reconcile merges the index with the session files on disk, keyed by
// session ID.
//
// A populated index is trusted as-is and only sessions missing from it are
// scanned. An absent or empty index falls back to scanning every file.
// Indexed sessions whose file has gone are kept. The result is sorted by
// modification time, newest first, and holds each session ID once.
func (m *Manifest) Reconcile(disk map[string]string, scan Scanner) []Entry {
	var entries []Entry
	seen := make(map[string]bool)

	if m.State() == StatePopulated {
		for _, e := range m.Entries {
			if e.SessionID == "" || seen[e.SessionID] {
				continue
			}
			seen[e.SessionID] = true
			entries = append(entries, e)
		}
	}

	ids := make([]string, 0, len(disk))
	for id := range disk {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		e, ok := scan(id, disk[id])
		if !ok {
			continue
		}
		e.SessionID = id
		seen[id] = true
		entries = append(entries, e)
	}

	sortNewestFirst(entries)
	return entries
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModifiedTime().After(entries[j].ModifiedTime())
	})
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
