// Package watcher feeds the block-list from a settings store to the engine:
// once at startup and again on every relevant change notification.
package watcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
	"github.com/bnema/subreddit-filter/internal/scheduler"
)

// Target receives block-lists on the executor's goroutine
type Target interface {
	Start(bl models.BlockList)
	Reconfigure(bl models.BlockList)
}

// Watcher routes store changes to a Target
type Watcher struct {
	store  Store
	exec   scheduler.Executor
	target Target

	mu          sync.Mutex
	unsubscribe func()

	// owned by the executor
	current models.BlockList
}

// New creates a watcher. Nothing happens until Start.
func New(store Store, exec scheduler.Executor, target Target) *Watcher {
	return &Watcher{store: store, exec: exec, target: target}
}

// Start loads the block-list, hands it to the target and subscribes to
// changes. A store that fails to load starts the target with an empty list.
func (w *Watcher) Start(ctx context.Context) error {
	names, err := w.store.Load(ctx)
	if err != nil {
		log.Error(map[string]any{"error": err.Error()}, "loading block-list, starting with an empty one")
		names = nil
	}
	bl := models.NewBlockList(names)

	if err := w.exec.Post(func() {
		w.current = bl
		log.Info(map[string]any{"communities": bl.Len()}, "block-list loaded")
		w.target.Start(bl)
	}); err != nil {
		return fmt.Errorf("starting target: %w", err)
	}

	unsubscribe := w.store.Subscribe(w.onChange)
	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()
	return nil
}

// Stop unsubscribes from the store
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Current returns the last block-list handed to the target. Call it on the
// executor's goroutine.
func (w *Watcher) Current() models.BlockList {
	return w.current
}

func (w *Watcher) onChange(change models.StorageChange) {
	bl, ok := change.BlockList()
	if !ok {
		log.Debug(map[string]any{"keys": len(change)}, "ignoring unrelated settings change")
		return
	}

	err := w.exec.Post(func() {
		w.current = bl
		log.Info(map[string]any{"communities": bl.Len()}, "block-list changed")
		w.target.Reconfigure(bl)
	})
	if err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "dropping block-list change")
	}
}
