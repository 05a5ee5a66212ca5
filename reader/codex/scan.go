package codex

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sessionFiles collects every rollout file under the root's year/month/day
// directories. A missing root yields none.
func (r *Reader) sessionFiles() []string {
	root := r.dir()
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if depth(root, path) > 3 {
				return filepath.SkipDir
			}
			return nil
		}
		if depth(root, path) == 4 && strings.HasSuffix(d.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

// depth counts path components below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// dateFromPath derives YYYY-MM-DD from .../YYYY/MM/DD/file.jsonl. Paths of
// any other shape have no date.
func dateFromPath(path string) (string, bool) {
	dayDir := filepath.Dir(path)
	monthDir := filepath.Dir(dayDir)
	yearDir := filepath.Dir(monthDir)

	year, month, day := filepath.Base(yearDir), filepath.Base(monthDir), filepath.Base(dayDir)
	if len(year) != 4 || !digits(year) {
		return "", false
	}
	if len(month) > 2 || !digits(month) || len(day) > 2 || !digits(day) {
		return "", false
	}
	return year + "-" + pad2(month) + "-" + pad2(day), true
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
