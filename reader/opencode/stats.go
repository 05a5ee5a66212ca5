package opencode

import (
	"os"
	"path/filepath"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/samber/lo"
)

// Stats implements reader.Reader. OpenCode storage records no token
// telemetry, so only sessions and message documents are counted.
func (r *Reader) Stats() (*core.Stats, error) {
	stats := core.NewStats(core.ToolOpenCode)
	stats.SessionCount = len(r.allSessionFiles())

	entries, err := os.ReadDir(r.messageDir())
	if err != nil {
		return stats, nil
	}
	dirs := lo.Filter(entries, func(e os.DirEntry, _ int) bool { return e.IsDir() })
	stats.MessageCount = lo.SumBy(dirs, func(e os.DirEntry) int {
		return len(jsonFiles(filepath.Join(r.messageDir(), e.Name())))
	})
	return stats, nil
}
