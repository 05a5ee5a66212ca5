package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/manifest"
	"github.com/charmbracelet/log"
)

// Projects implements reader.Reader. Each subdirectory of the root is a
// project; directories without sessions are skipped.
func (r *Reader) Projects() ([]core.Project, error) {
	projects := []core.Project{}
	for _, key := range r.projectKeys() {
		dir := filepath.Join(r.dir(), key)
		files := sessionFiles(dir)
		m := readIndex(dir)

		count := len(files)
		if m.State() == manifest.StatePopulated {
			count = countIndexed(m)
		}
		if count == 0 {
			continue
		}

		path := projectPath(key, m, files)
		projects = append(projects, core.Project{
			Tool:         core.ToolClaude,
			Key:          key,
			Path:         path,
			ShortName:    core.ShortName(path),
			SessionCount: count,
			LastModified: core.TimePtr(latestModTime(dir, files)),
		})
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return newer(projects[i].LastModified, projects[j].LastModified)
	})
	return projects, nil
}

// Sessions implements reader.Reader. projectKey is the encoded directory
// name under the root.
func (r *Reader) Sessions(projectKey string) ([]core.Session, error) {
	dir, err := r.projectDir(projectKey)
	if err != nil {
		return nil, err
	}

	files := sessionFiles(dir)
	m := readIndex(dir)
	entries := m.Reconcile(files, scanEntry)
	path := projectPath(projectKey, m, files)

	sessions := make([]core.Session, 0, len(entries))
	for _, e := range entries {
		sessions = append(sessions, toSession(projectKey, path, e, files[e.SessionID]))
	}
	return sessions, nil
}

// Messages implements reader.Reader. Claude sessions are addressed by
// session ID within a project, so projectKey is required.
func (r *Reader) Messages(sessionKey, projectKey string, page, pageSize int) (*core.Page, error) {
	if projectKey == "" {
		return nil, fmt.Errorf("%w: project key is required", core.ErrNotFound)
	}
	dir, err := r.projectDir(projectKey)
	if err != nil {
		return nil, err
	}
	if sessionKey == "" || filepath.Base(sessionKey) != sessionKey {
		return nil, fmt.Errorf("%w: session %q", core.ErrNotFound, sessionKey)
	}

	path := filepath.Join(dir, sessionKey+".jsonl")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: session file %s", core.ErrNotFound, sessionKey)
	}

	t, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return core.Paginate(t.messages, page, pageSize), nil
}

// ResolveWorkDir implements reader.WorkDirResolver. The index records the
// real project path, which the lossy directory encoding cannot recover. It
// is looked up next to filePath first, then under workDir. The recorded
// path is only used when it still exists.
func (r *Reader) ResolveWorkDir(sessionID, workDir, filePath string) string {
	var candidates []string
	if filePath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(filePath), manifest.FileName))
	}
	if workDir != "" {
		candidates = append(candidates,
			filepath.Join(workDir, manifest.FileName),
			filepath.Join(r.dir(), filepath.Base(workDir), manifest.FileName),
		)
	}

	for _, c := range candidates {
		m, err := manifest.ReadFile(c)
		if err != nil || m.OriginalPath == "" {
			continue
		}
		if info, err := os.Stat(m.OriginalPath); err == nil && info.IsDir() {
			log.Debug("resolved work dir from index", "session", sessionID, "dir", m.OriginalPath)
			return m.OriginalPath
		}
	}
	return workDir
}

func (r *Reader) projectDir(key string) (string, error) {
	if key == "" || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: project directory %q", core.ErrNotFound, key)
	}
	dir := filepath.Join(r.dir(), key)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: project directory %s", core.ErrNotFound, key)
	}
	return dir, nil
}

// readIndex loads a project's index. An unreadable or corrupt index is
// treated as absent so the project falls back to a full scan.
func readIndex(dir string) *manifest.Manifest {
	m, err := manifest.ReadFile(filepath.Join(dir, manifest.FileName))
	if err != nil {
		log.Debug("ignoring session index", "dir", dir, "err", err)
		return &manifest.Manifest{}
	}
	return m
}

func countIndexed(m *manifest.Manifest) int {
	seen := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		if e.SessionID != "" {
			seen[e.SessionID] = true
		}
	}
	return len(seen)
}

// projectPath recovers the real directory a project was recorded in.
func projectPath(key string, m *manifest.Manifest, files map[string]string) string {
	if m.OriginalPath != "" {
		return m.OriginalPath
	}
	for _, e := range m.Entries {
		if e.ProjectPath != "" {
			return e.ProjectPath
		}
	}

	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if info, err := scanSession(files[id]); err == nil && info.cwd != "" {
			return info.cwd
		}
	}
	return decodeProjectKey(key)
}

func toSession(projectKey, projectPath string, e manifest.Entry, path string) core.Session {
	if path == "" {
		path = e.FullPath
	}
	if e.ProjectPath != "" {
		projectPath = e.ProjectPath
	}
	created := e.CreatedTime()
	if created.IsZero() {
		created = e.ModifiedTime()
	}
	return core.Session{
		Tool:         core.ToolClaude,
		ID:           e.SessionID,
		ProjectKey:   projectKey,
		ProjectPath:  projectPath,
		ShortName:    core.ShortName(projectPath),
		FilePath:     path,
		Title:        e.Summary,
		FirstPrompt:  e.FirstPrompt,
		MessageCount: e.MessageCount,
		Created:      core.TimePtr(created),
		Modified:     core.TimePtr(e.ModifiedTime()),
		GitBranch:    e.GitBranch,
		IsSidechain:  e.IsSidechain,
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
