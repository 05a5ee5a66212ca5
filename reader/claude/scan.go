package claude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// sessionFile is one session log and the project directory that owns it.
type sessionFile struct {
	projectKey string
	path       string
}

// projectKeys lists the project directory names under the root. A missing
// root yields none.
func (r *Reader) projectKeys() []string {
	entries, err := os.ReadDir(r.dir())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("read projects directory", "dir", r.dir(), "err", err)
		}
		return nil
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys
}

// sessionFiles maps session ID to path for every .jsonl file directly inside
// dir.
func sessionFiles(dir string) map[string]string {
	files := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".jsonl")
		if id == "" {
			continue
		}
		files[id] = filepath.Join(dir, e.Name())
	}
	return files
}

// allSessionFiles lists every session log across all projects, ordered by
// project then session ID.
func (r *Reader) allSessionFiles() []sessionFile {
	var out []sessionFile
	for _, key := range r.projectKeys() {
		files := sessionFiles(filepath.Join(r.dir(), key))
		ids := make([]string, 0, len(files))
		for id := range files {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			out = append(out, sessionFile{projectKey: key, path: files[id]})
		}
	}
	return out
}

// latestModTime returns the newest modification time among files, falling
// back to the directory's own.
func latestModTime(dir string, files map[string]string) time.Time {
	var latest time.Time
	for _, p := range files {
		if info, err := os.Stat(p); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	if latest.IsZero() {
		if info, err := os.Stat(dir); err == nil {
			latest = info.ModTime()
		}
	}
	return latest
}

// decodeProjectKey reverses Claude Code's directory naming, which replaces
// every path separator with a dash. Dashes inside the original path are
// indistinguishable, so callers prefer a recorded path when one exists.
func decodeProjectKey(key string) string {
	if key == "" {
		return ""
	}
	return strings.ReplaceAll(key, "-", "/")
}

func sessionIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}
