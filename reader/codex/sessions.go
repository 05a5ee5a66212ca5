package codex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
)

// Sessions implements reader.Reader. projectKey is a working directory; an
// empty key lists every session.
func (r *Reader) Sessions(projectKey string) ([]core.Session, error) {
	all := r.allSessions()
	if projectKey == "" {
		return all, nil
	}
	sessions := []core.Session{}
	for _, s := range all {
		if s.ProjectPath == projectKey {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// Projects implements reader.Reader. Sessions are grouped by working
// directory; sessions that recorded none are left out.
func (r *Reader) Projects() ([]core.Project, error) {
	byCWD := make(map[string]*core.Project)
	var order []string
	for _, s := range r.allSessions() {
		if s.ProjectPath == "" {
			continue
		}
		p, ok := byCWD[s.ProjectPath]
		if !ok {
			p = &core.Project{
				Tool:          core.ToolCodex,
				Key:           s.ProjectPath,
				Path:          s.ProjectPath,
				ShortName:     s.ShortName,
				ModelProvider: s.ModelProvider,
			}
			byCWD[s.ProjectPath] = p
			order = append(order, s.ProjectPath)
		}
		p.SessionCount++
		if newer(s.Modified, p.LastModified) {
			p.LastModified = s.Modified
		}
	}

	projects := make([]core.Project, 0, len(order))
	for _, cwd := range order {
		projects = append(projects, *byCWD[cwd])
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return newer(projects[i].LastModified, projects[j].LastModified)
	})
	return projects, nil
}

// Messages implements reader.Reader. Rollouts are addressed by file path;
// a bare session ID is resolved by scanning the rollouts. projectKey is
// unused.
func (r *Reader) Messages(sessionKey, _ string, page, pageSize int) (*core.Page, error) {
	path, err := r.resolveRollout(sessionKey)
	if err != nil {
		return nil, err
	}
	msgs, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return core.Paginate(msgs, page, pageSize), nil
}

func (r *Reader) resolveRollout(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty session key", core.ErrNotFound)
	}
	if info, err := os.Stat(key); err == nil && !info.IsDir() {
		return key, nil
	}
	if filepath.Base(key) == key {
		for _, path := range r.sessionFiles() {
			if stem(path) == key {
				return path, nil
			}
			if info, err := scanSession(path); err == nil && info.id == key {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: session file %s", core.ErrNotFound, key)
}

// allSessions scans every rollout, most recently modified first.
func (r *Reader) allSessions() []core.Session {
	sessions := []core.Session{}
	for _, path := range r.sessionFiles() {
		info, err := scanSession(path)
		if err != nil {
			log.Debug("skipping rollout", "path", path, "err", err)
			continue
		}
		sessions = append(sessions, toSession(path, info))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return newer(sessions[i].Modified, sessions[j].Modified)
	})
	return sessions
}

func toSession(path string, info *sessionInfo) core.Session {
	return core.Session{
		Tool:          core.ToolCodex,
		ID:            info.id,
		ProjectKey:    info.cwd,
		ProjectPath:   info.cwd,
		ShortName:     core.ShortName(info.cwd),
		FilePath:      path,
		FirstPrompt:   info.firstPrompt,
		MessageCount:  info.messageCount,
		Created:       core.TimePtr(info.created),
		Modified:      core.TimePtr(info.modified),
		GitBranch:     info.gitBranch,
		ModelProvider: info.modelProvider,
		CLIVersion:    info.cliVersion,
	}
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
