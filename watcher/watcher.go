// Package watcher re-resolves a document graph whenever one of its files
// changes.  It wraps fsnotify with debouncing and glob based exclusion.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 100 * time.Millisecond

// ErrInvalidPattern indicates an exclude pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

type Config struct {
	// Exclude holds glob patterns ('/' separated, "**" crosses directories)
	// for paths whose events are ignored.
	Exclude []string

	// Debounce is how long the watcher waits for events to settle before
	// reloading.
	Debounce time.Duration

	// Extension marks files that are relevant even before a reload lists
	// them, e.g. a newly created document that fixes a missing import.
	Extension string
}

// ReloadFunc resolves the graph again and returns the files it read.  When it
// fails the watcher keeps watching the files of the last good reload.
type ReloadFunc func(ctx context.Context) ([]string, error)

// Watcher watches the directories holding the files of a document graph.
type Watcher struct {
	config   Config
	reload   ReloadFunc
	excludes []glob.Glob
	fsw      *fsnotify.Watcher

	// Logger receives debug output.  Defaults to slog.Default().
	Logger *slog.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
	timer *time.Timer
	fire  chan struct{}
}

func New(config Config, reload ReloadFunc) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	excludes, err := compileExcludePatterns(config.Exclude)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		config:   config,
		reload:   reload,
		excludes: excludes,
		fsw:      fsw,
		files:    map[string]bool{},
		dirs:     map[string]bool{},
		fire:     make(chan struct{}, 1),
	}, nil
}

func compileExcludePatterns(patterns []string) ([]glob.Glob, error) {
	excludes := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		excludes = append(excludes, g)
	}
	return excludes, nil
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Excluded returns true if path matches an exclude pattern, either as a
// whole or by its base name.
func (w *Watcher) Excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, g := range w.excludes {
		if g.Match(slashed) || g.Match(base) {
			return true
		}
	}
	return false
}

// Relevant returns true if a change to path should trigger a reload.
func (w *Watcher) Relevant(path string) bool {
	if w.Excluded(path) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[path] {
		return true
	}
	return w.config.Extension != "" && filepath.Ext(path) == w.config.Extension
}

// Files returns the files of the last successful reload.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Run performs an initial reload and then one more after every burst of
// relevant changes, until ctx is done.  Reloads never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.stopTimer()

	w.doReload(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.fire:
			w.doReload(ctx)
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || !w.Relevant(event.Name) {
		return
	}
	w.logger().Debug("change detected", "path", event.Name, "op", event.Op.String())
	w.schedule()
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
			// a reload is already queued
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) doReload(ctx context.Context) {
	files, err := w.reload(ctx)
	if err != nil {
		w.logger().Debug("reload failed, keeping previous watch set", "error", err)
		return
	}
	w.setFiles(files)
}

// setFiles replaces the set of interesting files and watches their
// directories, dropping directories no longer needed.
func (w *Watcher) setFiles(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]bool, len(files))
	wanted := map[string]bool{}
	for _, f := range files {
		w.files[f] = true
		// Remote documents have nothing to watch.
		if !filepath.IsAbs(f) {
			continue
		}
		dir := filepath.Dir(f)
		if !w.Excluded(dir) {
			wanted[dir] = true
		}
	}
	for dir := range w.dirs {
		if !wanted[dir] {
			_ = w.fsw.Remove(dir)
			delete(w.dirs, dir)
		}
	}
	for dir := range wanted {
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger().Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}
