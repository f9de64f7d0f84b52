package watcher

import (
	"context"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/bnema/subreddit-filter/internal/config"
	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
)

// Store is the persisted settings boundary
type Store interface {
	// Load returns the current blocked names
	Load(ctx context.Context) ([]string, error)
	// Subscribe registers fn for every change notification and returns a
	// function that removes it. fn may be called from any goroutine.
	Subscribe(fn func(models.StorageChange)) (unsubscribe func())
}

type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(models.StorageChange)
}

func (s *subscribers) add(fn func(models.StorageChange)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(models.StorageChange))
	}
	s.next++
	id := s.next
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) notify(change models.StorageChange) {
	s.mu.Lock()
	fns := make([]func(models.StorageChange), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(change)
	}
}

// MemoryStore keeps the names in process
type MemoryStore struct {
	mu    sync.Mutex
	names []string
	subs  subscribers
}

// NewMemoryStore creates a store holding names
func NewMemoryStore(names ...string) *MemoryStore {
	return &MemoryStore{names: slices.Clone(names)}
}

// Load implements Store
func (m *MemoryStore) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.names), nil
}

// Subscribe implements Store
func (m *MemoryStore) Subscribe(fn func(models.StorageChange)) func() {
	return m.subs.add(fn)
}

// Set replaces the names and notifies subscribers
func (m *MemoryStore) Set(names []string) {
	m.mu.Lock()
	m.names = slices.Clone(names)
	m.mu.Unlock()
	m.subs.notify(models.StorageChange{
		models.BlockListKey: {NewValue: slices.Clone(names)},
	})
}

// Emit delivers an arbitrary change to subscribers without touching the
// stored names
func (m *MemoryStore) Emit(change models.StorageChange) {
	m.subs.notify(change)
}

// FileStore reads the names from a viper-managed config file and its extra
// list sources, and reports a change whenever the file is rewritten with a
// different result
type FileStore struct {
	v       *viper.Viper
	sources []Source

	mu       sync.Mutex
	names    []string
	watching bool
	subs     subscribers
}

// NewFileStore wraps v. The config must already be read.
func NewFileStore(v *viper.Viper, sources ...Source) *FileStore {
	return &FileStore{v: v, sources: sources}
}

// Load implements Store
func (f *FileStore) Load(ctx context.Context) ([]string, error) {
	names, err := f.collect(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.names = names
	f.mu.Unlock()
	return slices.Clone(names), nil
}

// Subscribe implements Store. The first subscriber starts watching the
// config file.
func (f *FileStore) Subscribe(fn func(models.StorageChange)) func() {
	unsubscribe := f.subs.add(fn)

	f.mu.Lock()
	start := !f.watching
	f.watching = true
	f.mu.Unlock()

	if start {
		f.v.OnConfigChange(f.onConfigChange)
		f.v.WatchConfig()
	}
	return unsubscribe
}

func (f *FileStore) onConfigChange(e fsnotify.Event) {
	log.Debug(map[string]any{"file": e.Name, "op": e.Op.String()}, "config file changed")
	f.reload(context.Background())
}

// reload re-reads every source and notifies subscribers if the names differ
func (f *FileStore) reload(ctx context.Context) {
	names, err := f.collect(ctx)
	if err != nil {
		log.Error(map[string]any{"error": err.Error()}, "reloading block-list")
		return
	}

	f.mu.Lock()
	if slices.Equal(names, f.names) {
		f.mu.Unlock()
		return
	}
	f.names = names
	f.mu.Unlock()

	f.subs.notify(models.StorageChange{
		models.BlockListKey: {NewValue: slices.Clone(names)},
	})
}

func (f *FileStore) collect(ctx context.Context) ([]string, error) {
	names := slices.Clone(f.v.GetStringSlice(config.KeyBlockedCommunities))
	for _, src := range f.sources {
		extra, err := src(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, extra...)
	}
	return names, nil
}
