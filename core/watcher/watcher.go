package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tristendillon/pypack/core/logger"
)

// FileWatcher watches a project root recursively and fires OnChange after a
// debounce window, so a burst of editor writes triggers one repack instead
// of a dozen.
type FileWatcher struct {
	Watcher  *fsnotify.Watcher
	RootDir  string
	Exclude  []string
	Debounce time.Duration

	// OnChange runs after the debounce window closes. Its error is logged,
	// never fatal: a broken intermediate state of the project should not
	// kill the watch session.
	OnChange func() error

	// OnInvalidate is called with the path of every changed or removed
	// source file before the debounce fires, letting the parse cache drop
	// stale entries.
	OnInvalidate func(path string)

	debounceTimer *time.Timer
	mu            sync.Mutex
}

func New(rootDir string, exclude []string, debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		Watcher:  w,
		RootDir:  filepath.Clean(rootDir),
		Exclude:  exclude,
		Debounce: debounce,
	}, nil
}

func (fw *FileWatcher) Watch() error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	for {
		select {
		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if fw.shouldExcludePath(event.Name) {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if strings.HasSuffix(event.Name, ".py") && fw.OnInvalidate != nil {
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					fw.OnInvalidate(event.Name)
				}
			}

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					fw.Watcher.Add(event.Name)
				}
			}

			fw.debounceChange()

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) debounceChange() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.Debounce, func() {
		logger.Debug("File changes detected, repacking...")
		if fw.OnChange == nil {
			return
		}
		if err := fw.OnChange(); err != nil {
			logger.Error("Repack failed: %v", err)
		}
	})
}

func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	return fw.Watcher.Close()
}

func (fw *FileWatcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	if err != nil {
		return false
	}

	relPath = filepath.Clean(relPath)

	for _, excludePath := range fw.Exclude {
		excludePath = filepath.Clean(excludePath)

		if relPath == excludePath {
			return true
		}
		if strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
		// Exclusions like "__pycache__" apply at any depth, not just the
		// root.
		if !strings.Contains(excludePath, string(filepath.Separator)) {
			if filepath.Base(relPath) == excludePath ||
				strings.Contains(relPath, string(filepath.Separator)+excludePath+string(filepath.Separator)) {
				return true
			}
		}
	}

	return false
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if path != root && fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
