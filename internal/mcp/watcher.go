package mcp

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloadable is an interface for components that can be reloaded.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// DatabaseWatcher watches the index database and triggers a reload when
// it changes.
type DatabaseWatcher struct {
	reloadable   Reloadable
	watcher      *fsnotify.Watcher
	dbName       string
	debounceTime time.Duration
	started      atomic.Bool
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewDatabaseWatcher creates a watcher for the database at dbPath. The
// containing directory is watched because SQLite writes land in the WAL
// and journal siblings as often as in the database file itself.
func NewDatabaseWatcher(reloadable Reloadable, dbPath string) (*DatabaseWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &DatabaseWatcher{
		reloadable:   reloadable,
		watcher:      watcher,
		dbName:       filepath.Base(dbPath),
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins watching for database changes.
func (dw *DatabaseWatcher) Start(ctx context.Context) {
	dw.started.Store(true)
	go dw.watch(ctx)
}

// Stop stops the watcher. Safe to call whether or not Start ran.
func (dw *DatabaseWatcher) Stop() {
	dw.stopOnce.Do(func() {
		close(dw.stopCh)
		if dw.started.Load() {
			<-dw.doneCh // Wait for goroutine to finish
		}
		dw.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (dw *DatabaseWatcher) watch(ctx context.Context) {
	defer close(dw.doneCh)

	var debounceTimer *time.Timer
	reloadCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-dw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			// Only writes touching the database or its WAL/journal
			// siblings matter.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasPrefix(filepath.Base(event.Name), dw.dbName) {
				continue
			}

			// Reset debounce timer - properly stop and drain
			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(dw.debounceTime, func() {
				// Send reload signal (non-blocking)
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			})

		case <-reloadCh:
			dw.triggerReload(ctx)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Database watcher error: %v", err)
		}
	}
}

// triggerReload reloads the index snapshot.
func (dw *DatabaseWatcher) triggerReload(ctx context.Context) {
	log.Printf("Index database changed, reloading...")
	start := time.Now()

	if err := dw.reloadable.Reload(ctx); err != nil {
		log.Printf("Error reloading index: %v (keeping old state)", err)
		return
	}

	log.Printf("Reloaded index in %v", time.Since(start))
}
