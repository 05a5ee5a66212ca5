package opencode

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
)

// sessionFile is one session document and the project hash that owns it.
type sessionFile struct {
	hash string
	path string
}

// projectHashes lists the project buckets under session/, without the
// global bucket.
func (r *Reader) projectHashes() []string {
	entries, err := os.ReadDir(r.sessionDir())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("read session directory", "dir", r.sessionDir(), "err", err)
		}
		return nil
	}
	var hashes []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != globalHash {
			hashes = append(hashes, e.Name())
		}
	}
	return hashes
}

// sessionFiles lists the session documents of one project.
func (r *Reader) sessionFiles(hash string) []string {
	return jsonFiles(filepath.Join(r.sessionDir(), hash))
}

// allSessionFiles lists session documents across every project.
func (r *Reader) allSessionFiles() []sessionFile {
	var out []sessionFile
	for _, hash := range r.projectHashes() {
		for _, p := range r.sessionFiles(hash) {
			out = append(out, sessionFile{hash: hash, path: p})
		}
	}
	return out
}

// jsonFiles returns the .json files directly inside dir, sorted by name. A
// missing directory yields none.
func jsonFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files
}

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrRead, path, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrParse, path, err)
	}
	return &v, nil
}

func validKey(key string) bool {
	return key != "" && filepath.Base(key) == key
}
