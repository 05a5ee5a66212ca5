package claude

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/manifest"
	"github.com/goccy/go-json"
)

var (
	userMarker      = []byte(`"type":"user"`)
	assistantMarker = []byte(`"type":"assistant"`)
)

// sessionInfo is what one pass over a session file reveals without building
// the full message list.
type sessionInfo struct {
	cwd          string
	gitBranch    string
	firstPrompt  string
	messageCount int
	sidechain    bool
	created      time.Time
	modified     time.Time
}

// scanSession reads path once. Metadata is taken from the first
// metaReadAhead lines; the first prompt is the first user text found; the
// message count is the number of user and assistant records.
func scanSession(path string) (*sessionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open session file: %v", core.ErrRead, err)
	}
	defer f.Close()

	info := &sessionInfo{}
	if st, err := f.Stat(); err == nil {
		info.modified = st.ModTime()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for n := 0; scanner.Scan(); n++ {
		line := scanner.Bytes()
		isUser := bytes.Contains(line, userMarker)
		isTurn := isUser || bytes.Contains(line, assistantMarker)
		if isTurn {
			info.messageCount++
		}

		needMeta := n < metaReadAhead && (info.cwd == "" || info.created.IsZero())
		needPrompt := isUser && info.firstPrompt == ""
		if !needMeta && !needPrompt {
			continue
		}

		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if needMeta {
			info.fill(entry)
		}
		if needPrompt {
			if msg, ok := mapEntry(entry); ok {
				if text := userText(msg); text != "" {
					info.firstPrompt = core.TruncateChars(text, firstPromptChars)
				}
			}
		}
	}

	if info.created.IsZero() {
		info.created = info.modified
	}
	return info, nil
}

func (info *sessionInfo) fill(entry rawEntry) {
	if info.cwd == "" {
		info.cwd = entry.CWD
	}
	if info.gitBranch == "" {
		info.gitBranch = entry.GitBranch
	}
	if entry.IsSidechain {
		info.sidechain = true
	}
	if info.created.IsZero() {
		if ts := parseTime(entry.Timestamp); ts != nil {
			info.created = *ts
		}
	}
}

// scanEntry synthesizes an index entry for a session file the index does
// not list.
func scanEntry(sessionID, path string) (manifest.Entry, bool) {
	info, err := scanSession(path)
	if err != nil {
		return manifest.Entry{}, false
	}
	e := manifest.Entry{
		SessionID:    sessionID,
		FullPath:     path,
		FirstPrompt:  info.firstPrompt,
		MessageCount: info.messageCount,
		GitBranch:    info.gitBranch,
		ProjectPath:  info.cwd,
		IsSidechain:  info.sidechain,
	}
	if !info.modified.IsZero() {
		e.FileMtime = info.modified.UnixMilli()
		e.Modified = info.modified.UTC().Format(time.RFC3339Nano)
	}
	if !info.created.IsZero() {
		e.Created = info.created.UTC().Format(time.RFC3339Nano)
	}
	return e, true
}
