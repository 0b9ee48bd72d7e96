package watcher

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/barrel/core/cache"
	"github.com/tristendillon/barrel/core/config"
	"github.com/tristendillon/barrel/core/logger"
)

const defaultDebounce = 500 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// FileWatcher regenerates the barrel when source files under RootDir change.
// Events are coalesced for Debounce and passes never overlap.
type FileWatcher struct {
	Watcher  *fsnotify.Watcher
	RootDir  string
	Reserved string
	Patterns []string
	Ignore   []string
	Debounce time.Duration
	// Cache, when set, drops batches whose files did not really change.
	Cache *cache.ContentCache

	DebounceTimer *time.Timer
	Mutex         sync.Mutex
	pending       map[string]struct{}
	// force skips the content check for the pending batch.
	force bool
	// dirs holds every directory currently registered with Watcher.
	dirs map[string]struct{}

	passMu sync.Mutex
	closed bool

	OnStart  func() error
	OnChange func(changed []string) error
	OnClose  func() error
}

func NewFileWatcher(cfg *config.Config) (*FileWatcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := time.Duration(cfg.Watch.Debounce)
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ignore := slices.Concat(defaultIgnores, cfg.Exclude, cfg.Watch.Ignore)
	logger.Debug("Ignoring paths: %v", ignore)

	return &FileWatcher{
		Watcher:  watcher,
		RootDir:  root,
		Reserved: cfg.OutputName(),
		Patterns: cfg.Watch.Patterns,
		Ignore:   ignore,
		Debounce: debounce,
		pending:  make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		OnStart:  func() error { return nil },
		OnChange: func([]string) error { return fmt.Errorf("OnChange not set") },
		OnClose:  func() error { return nil },
	}, nil
}

// Watch runs OnStart, then dispatches debounced OnChange calls until ctx is
// cancelled or the watcher fails for good.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	fw.runPass(func() error { return fw.OnStart() }, "OnStart")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event)

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if err := fw.handleError(err); err != nil {
				return err
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if fw.handleDirEvent(event) {
		return
	}
	if !fw.shouldHandle(event.Name) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)
	fw.debounceGenerate(event.Name, false)
}

// handleDirEvent queues a full pass when a directory appears under the root
// or a watched directory goes away. A moved directory produces one event for
// itself and none for the modules inside it.
func (fw *FileWatcher) handleDirEvent(event fsnotify.Event) bool {
	if !fw.underRoot(event.Name) || fw.shouldExcludeDir(event.Name) {
		return false
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return false
		}
		logger.Debug("Adding watchers for new directory: %s", event.Name)
		if err := fw.addWatchersRecursively(event.Name); err != nil {
			logger.Error("Failed to watch %s: %v", event.Name, err)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if !fw.forgetDir(event.Name) {
			return false
		}
	default:
		return false
	}

	logger.Debug("Directory event: %s %s", event.Op, event.Name)
	fw.debounceGenerate(event.Name, true)
	return true
}

// handleError returns the errors the watcher cannot recover from. A queue
// overflow loses events, so it forces a full pass instead.
func (fw *FileWatcher) handleError(err error) error {
	if isFatalWatchError(err) {
		return fmt.Errorf("fatal watcher error: %w", err)
	}
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		logger.Warn("Watcher dropped events, regenerating %s", fw.RootDir)
		fw.debounceGenerate(fw.RootDir, true)
		return nil
	}
	logger.Error("Watcher error: %v", err)
	return nil
}

func (fw *FileWatcher) debounceGenerate(path string, force bool) {
	fw.Mutex.Lock()
	defer fw.Mutex.Unlock()

	fw.pending[path] = struct{}{}
	fw.force = fw.force || force
	if fw.DebounceTimer != nil {
		fw.DebounceTimer.Stop()
	}
	fw.DebounceTimer = time.AfterFunc(fw.Debounce, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.Mutex.Lock()
	changed := slices.Sorted(maps.Keys(fw.pending))
	force := fw.force
	clear(fw.pending)
	fw.force = false
	fw.Mutex.Unlock()

	if len(changed) == 0 {
		return
	}
	if !force && !fw.contentChanged(changed) {
		logger.Debug("No content changes in %d events, skipping pass", len(changed))
		return
	}

	logger.Debug("File changes detected, regenerating...")
	fw.runPass(func() error { return fw.OnChange(changed) }, "OnChange")
}

func (fw *FileWatcher) runPass(pass func() error, name string) {
	fw.passMu.Lock()
	defer fw.passMu.Unlock()
	if fw.closed {
		return
	}
	if err := pass(); err != nil {
		logger.Error("Watcher.%s failed: %v", name, err)
	}
}

func (fw *FileWatcher) contentChanged(paths []string) bool {
	if fw.Cache == nil {
		return true
	}
	for _, path := range paths {
		changed, err := fw.Cache.Changed(path)
		if err != nil {
			logger.Debug("Cannot compare %s: %v", path, err)
			return true
		}
		if changed {
			return true
		}
	}
	return false
}

// Close waits for a running pass to finish. No pass starts afterwards.
func (fw *FileWatcher) Close() error {
	fw.Mutex.Lock()
	if fw.DebounceTimer != nil {
		fw.DebounceTimer.Stop()
	}
	fw.Mutex.Unlock()

	fw.passMu.Lock()
	defer fw.passMu.Unlock()
	if fw.closed {
		return nil
	}
	fw.closed = true

	if err := fw.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.Watcher.Close()
}

func (fw *FileWatcher) underRoot(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	return err == nil && relPath != "." && relPath != ".." && !strings.HasPrefix(relPath, ".."+string(filepath.Separator))
}

// shouldHandle reports whether an event on path can change the barrel.
func (fw *FileWatcher) shouldHandle(path string) bool {
	if !fw.underRoot(path) {
		return false
	}
	relPath, _ := filepath.Rel(fw.RootDir, path)
	relPath = filepath.ToSlash(relPath)

	base := filepath.Base(path)
	if base == fw.Reserved || strings.HasPrefix(base, "."+fw.Reserved+".") {
		return false
	}
	if fw.isIgnored(relPath) {
		return false
	}
	if len(fw.Patterns) == 0 {
		return true
	}
	for _, pattern := range fw.Patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) isIgnored(relPath string) bool {
	for _, pattern := range fw.Ignore {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) shouldExcludeDir(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	if err != nil {
		return false
	}
	if relPath == "." {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	return fw.isIgnored(relPath) || fw.isIgnored(relPath+"/")
}

// forgetDir drops path and everything below it from the watch list. It
// reports false when path was not a watched directory.
func (fw *FileWatcher) forgetDir(path string) bool {
	fw.Mutex.Lock()
	defer fw.Mutex.Unlock()

	if _, ok := fw.dirs[path]; !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range fw.dirs {
		if dir != path && !strings.HasPrefix(dir, prefix) {
			continue
		}
		delete(fw.dirs, dir)
		// inotify keeps following a directory moved out of the root.
		if err := fw.Watcher.Remove(dir); err != nil {
			logger.Debug("Watch on %s already gone: %v", dir, err)
		}
	}
	return true
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if fw.shouldExcludeDir(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		fw.Mutex.Lock()
		fw.dirs[path] = struct{}{}
		fw.Mutex.Unlock()

		return nil
	})
}
