package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is cancelled, rerunning the index whenever
// files under the project root change. Callers normally run Index once
// before watching so the first reports exist immediately.
func (idx *indexer) Watch(ctx context.Context) error {
	iw, err := newIndexWatcher(idx)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer iw.stop()

	go iw.watch(ctx)

	<-ctx.Done()
	return ctx.Err()
}

// indexWatcher watches the project tree and schedules a fresh index run
// after a burst of changes settles.
type indexWatcher struct {
	idx      *indexer
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func newIndexWatcher(idx *indexer) (*indexWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := idx.config.WatchDebounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	iw := &indexWatcher{
		idx:      idx,
		watcher:  watcher,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := iw.addDirectoriesRecursively(idx.config.RootDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return iw, nil
}

// stop shuts down the event loop and releases the underlying watches.
func (iw *indexWatcher) stop() {
	iw.stopOnce.Do(func() {
		close(iw.stopCh)
		<-iw.doneCh
		iw.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (iw *indexWatcher) watch(ctx context.Context) {
	defer close(iw.doneCh)

	var debounceTimer *time.Timer
	reindexCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-iw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}

			rel, relevant := iw.relevantPath(event)
			if !relevant {
				continue
			}
			changed[rel] = true

			// New directories need watches of their own before
			// events inside them can be seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := iw.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			// Reset the debounce timer, draining it if it already fired.
			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(iw.debounce, func() {
				select {
				case reindexCh <- struct{}{}:
				default:
				}
			})

		case <-reindexCh:
			iw.reindex(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// reindex reruns the full index after a debounced batch of changes.
func (iw *indexWatcher) reindex(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	log.Printf("Reindexing after changes to %d path(s)...", len(changed))
	start := time.Now()

	result, err := iw.idx.Index(ctx)
	if err != nil {
		log.Printf("Error during reindex: %v", err)
		return
	}

	log.Printf("Reindex complete in %v (%d Python files)",
		time.Since(start).Round(time.Millisecond), len(result.Files))
}

// relevantPath reports whether an event can affect the index and
// returns the changed path relative to the project root. Paths inside
// the output directory are ignored here, otherwise every report write
// would schedule another run.
func (iw *indexWatcher) relevantPath(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}

	rel, err := filepath.Rel(iw.idx.config.RootDir, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return "", false
		}
		if iw.idx.ignore.Match(segment, true) {
			return "", false
		}
	}
	return rel, true
}

// shouldWatchDirectory reports whether a directory participates in the
// index and therefore needs a watch.
func (iw *indexWatcher) shouldWatchDirectory(path string) bool {
	rel, err := filepath.Rel(iw.idx.config.RootDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return true
	}

	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return false
		}
		if iw.idx.ignore.Match(segment, true) {
			return false
		}
	}
	return true
}

// addDirectoriesRecursively adds path and every non-ignored directory
// below it to the watcher.
func (iw *indexWatcher) addDirectoriesRecursively(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Warning: error accessing %s: %v", p, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if !iw.shouldWatchDirectory(p) {
			return filepath.SkipDir
		}
		if err := iw.watcher.Add(p); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", p, err)
		}
		return nil
	})
}
