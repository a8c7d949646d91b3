// Package fswatch turns filesystem activity under a sync root into
// coalesced change triggers for the watch loop.
package fswatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

// Policy decides which live paths matter to a sync. A nil Policy watches
// everything under the root.
type Policy interface {
	IsSyncable(path string, dir bool) bool
}

// Watcher delivers coalesced change notifications for one sync root.
// Updates carries at most one pending trigger; bursts collapse.
type Watcher struct {
	watcher *fsnotify.Watcher

	Updates chan struct{}
}

// Watch starts watching root and every syncable descendant. fsnotify does
// not watch directories recursively, so the tree is walked up front;
// directories created after the call are not picked up until the watcher
// is rebuilt.
func Watch(root string, policy Policy) (*Watcher, error) {
	paths, err := getPathsToWatch(root, policy)
	if err != nil {
		return nil, fmt.Errorf("collect watch paths: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handles for
			// the previously added paths.
			if closeErr := watcher.Close(); closeErr != nil {
				log.WithError(closeErr).Warn("Failed to close file watcher")
			}
			return nil, fmt.Errorf("watch %q: %w", path, err)
		}
	}

	return &Watcher{watcher: watcher, Updates: combineUpdates(watcher.Events)}, nil
}

// Close stops the watcher and releases its handles. Updates drains and
// stops delivering afterwards.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for range updates {
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func getPathsToWatch(root string, policy Policy) (paths []string, err error) {
	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			paths = append(paths, path)
			return nil
		}
		if policy != nil && !policy.IsSyncable(path, fi.IsDir()) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}
