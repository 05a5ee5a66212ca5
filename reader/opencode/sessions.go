package opencode

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
)

// Projects implements reader.Reader. Every project bucket with a readable
// project document is listed; its last-modified time is that of its newest
// session document.
func (r *Reader) Projects() ([]core.Project, error) {
	projects := []core.Project{}
	for _, hash := range r.projectHashes() {
		p, err := readJSON[rawProject](filepath.Join(r.projectDir(), hash+".json"))
		if err != nil {
			log.Debug("skipping project", "hash", hash, "err", err)
			continue
		}
		files := r.sessionFiles(hash)
		projects = append(projects, core.Project{
			Tool:         core.ToolOpenCode,
			Key:          hash,
			Path:         p.Worktree,
			ShortName:    core.ShortName(p.Worktree),
			SessionCount: len(files),
			LastModified: core.TimePtr(latestModTime(files)),
		})
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return newer(projects[i].LastModified, projects[j].LastModified)
	})
	return projects, nil
}

// Sessions implements reader.Reader. projectKey is the project hash.
func (r *Reader) Sessions(projectKey string) ([]core.Session, error) {
	if !validKey(projectKey) {
		return nil, fmt.Errorf("%w: project %q", core.ErrNotFound, projectKey)
	}
	sessions := []core.Session{}
	for _, path := range r.sessionFiles(projectKey) {
		s, err := r.readSession(projectKey, path)
		if err != nil {
			log.Debug("skipping session", "path", path, "err", err)
			continue
		}
		sessions = append(sessions, s)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return newer(sessions[i].Modified, sessions[j].Modified)
	})
	return sessions, nil
}

// SessionsGrouped implements reader.SessionGrouper. Sub-sessions are
// attached to their parent, oldest first; groups are ordered by the root's
// modification time, newest first. Sub-sessions whose parent is not in the
// project are dropped.
func (r *Reader) SessionsGrouped(projectKey string) ([]core.SessionGroup, error) {
	sessions, err := r.Sessions(projectKey)
	if err != nil {
		return nil, err
	}

	children := make(map[string][]core.Session)
	var roots []core.Session
	for _, s := range sessions {
		if s.ParentID != "" {
			children[s.ParentID] = append(children[s.ParentID], s)
		} else {
			roots = append(roots, s)
		}
	}

	groups := make([]core.SessionGroup, 0, len(roots))
	for _, root := range roots {
		subs := children[root.ID]
		if subs == nil {
			subs = []core.Session{}
		}
		sort.SliceStable(subs, func(i, j int) bool {
			return older(subs[i].Created, subs[j].Created)
		})
		groups = append(groups, core.SessionGroup{Root: root, Children: subs})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return newer(groups[i].Root.Modified, groups[j].Root.Modified)
	})
	return groups, nil
}

// Messages implements reader.Reader. sessionKey is the session ID; a
// session without messages yields an empty page. projectKey is unused.
func (r *Reader) Messages(sessionKey, _ string, page, pageSize int) (*core.Page, error) {
	if !validKey(sessionKey) {
		return nil, fmt.Errorf("%w: session %q", core.ErrNotFound, sessionKey)
	}
	return core.Paginate(r.messages(sessionKey), page, pageSize), nil
}

func (r *Reader) readSession(hash, path string) (core.Session, error) {
	raw, err := readJSON[rawSession](path)
	if err != nil {
		return core.Session{}, err
	}
	if raw.ID == "" {
		raw.ID = stem(path)
	}

	var mtime time.Time
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime()
	}
	created, modified := millis(raw.Time.Created), millis(raw.Time.Updated)
	if created == nil {
		created = core.TimePtr(mtime)
	}
	if modified == nil {
		modified = core.TimePtr(mtime)
	}

	s := core.Session{
		Tool:         core.ToolOpenCode,
		ID:           raw.ID,
		ProjectKey:   hash,
		ProjectPath:  raw.Directory,
		ShortName:    core.ShortName(raw.Directory),
		FilePath:     path,
		Title:        raw.Title,
		Slug:         raw.Slug,
		MessageCount: len(jsonFiles(filepath.Join(r.messageDir(), raw.ID))),
		Created:      created,
		Modified:     modified,
		CLIVersion:   raw.Version,
		ParentID:     raw.ParentID,
	}
	if raw.Summary != nil {
		s.Additions = raw.Summary.Additions
		s.Deletions = raw.Summary.Deletions
		s.FilesChanged = raw.Summary.Files
	}
	s.FirstPrompt, s.ModelProvider, s.Model = r.sessionPreview(raw.ID)
	return s, nil
}

// sessionPreview finds the first user prompt and the first model used in a
// session. The prompt is the first user message's display text, falling
// back to its system prompt.
func (r *Reader) sessionPreview(sessionID string) (prompt, provider, model string) {
	if !validKey(sessionID) {
		return "", "", ""
	}
	for _, m := range r.loadMessages(sessionID) {
		if provider == "" && model == "" {
			provider, model = m.model()
		}
		if prompt == "" && m.Role == string(core.RoleUser) {
			text := core.CleanUserText(r.displayText(m))
			if text == "" {
				text = m.System
			}
			if text != "" {
				prompt = core.TruncateChars(text, promptChars)
			}
		}
		if prompt != "" && (provider != "" || model != "") {
			break
		}
	}
	return prompt, provider, model
}

func latestModTime(files []string) time.Time {
	var latest time.Time
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}

func stem(path string) string {
	return filepath.Base(path[:len(path)-len(filepath.Ext(path))])
}

func newer(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

func older(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
