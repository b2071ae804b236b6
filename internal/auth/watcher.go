package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cloudlink/pkg/logging"
)

// Refresher re-runs session reconciliation. Satisfied by Provider.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// DriftWatcher watches the secret vault directory for external writes (for
// example another process logging in or out) and triggers a reconciliation
// when the stored sessions may have drifted. Events are debounced so a
// burst of writes causes a single refresh.
type DriftWatcher struct {
	dir       string
	refresher Refresher
	debounce  time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	running bool
}

// NewDriftWatcher creates a watcher over dir. A zero debounce defaults to
// 500ms.
func NewDriftWatcher(dir string, refresher Refresher, debounce time.Duration) *DriftWatcher {
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &DriftWatcher{
		dir:       dir,
		refresher: refresher,
		debounce:  debounce,
	}
}

// Start begins watching. The watcher stops when the context is cancelled.
func (w *DriftWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.running = true

	go w.processEvents(ctx, watcher)

	logging.Info("DriftWatcher", "Watching %s for session drift", w.dir)
	return nil
}

// processEvents debounces filesystem events into refresh calls.
func (w *DriftWatcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.scheduleRefresh(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("DriftWatcher", "Watch error: %v", err)
		}
	}
}

// scheduleRefresh arms (or re-arms) the debounce timer.
func (w *DriftWatcher) scheduleRefresh(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.refresher.Refresh(ctx); err != nil {
			logging.Warn("DriftWatcher", "Refresh after drift failed: %v", err)
		}
	})
}

// Stop stops watching. Safe to call multiple times.
func (w *DriftWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
}
