// Package watch announces changes under the tools' session roots. Events
// are hints to re-run a query; the watcher keeps no session data.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Event reports that session files of one tool changed.
type Event struct {
	Tool  core.Tool `json:"tool"`
	Paths []string  `json:"paths"`
}

// Watcher watches each tool's root recursively. Only .json and .jsonl files
// are reported.
type Watcher struct {
	Events chan Event
	Errors chan error

	// Debounce overrides DefaultDebounce. Set it before Start.
	Debounce time.Duration

	watcher *fsnotify.Watcher
	roots   map[core.Tool]string
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	pending map[core.Tool]map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher for the given roots. Roots that do not exist yet are
// skipped when Start runs.
func New(roots map[core.Tool]string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Events:  make(chan Event, 100),
		Errors:  make(chan error, 10),
		watcher: w,
		roots:   roots,
		done:    make(chan struct{}),
		pending: make(map[core.Tool]map[string]struct{}),
	}, nil
}

// Start adds every directory under the roots and begins delivering events.
func (w *Watcher) Start() error {
	if w.Debounce <= 0 {
		w.Debounce = DefaultDebounce
	}
	for tool, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			log.Debug("not watching missing root", "tool", tool, "root", root)
			continue
		}
		if err := w.addTree(root); err != nil {
			return err
		}
	}
	go w.run()
	return nil
}

// Close stops the watcher. Events is not closed.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			log.Warn("could not watch", "dir", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New day or project directories appear while tools run.
			if err := w.addTree(event.Name); err != nil {
				log.Debug("watch new directory", "dir", event.Name, "err", err)
			}
			return
		}
	}
	if !relevant(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	tool, ok := w.toolFor(event.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[tool] == nil {
		w.pending[tool] = make(map[string]struct{})
	}
	w.pending[tool][event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, w.flush)
}

// flush emits one event per tool with every path that changed since the
// last flush.
func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[core.Tool]map[string]struct{})
	w.mu.Unlock()

	for _, tool := range core.Tools {
		paths, ok := pending[tool]
		if !ok {
			continue
		}
		ev := Event{Tool: tool, Paths: make([]string, 0, len(paths))}
		for p := range paths {
			ev.Paths = append(ev.Paths, p)
		}
		sort.Strings(ev.Paths)

		select {
		case w.Events <- ev:
		case <-w.done:
			return
		default:
			log.Debug("dropping change event, channel full", "tool", tool)
		}
	}
}

func (w *Watcher) toolFor(path string) (core.Tool, bool) {
	for tool, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return tool, true
		}
	}
	return "", false
}

func relevant(path string) bool {
	return strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".json")
}
