package sqlite

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// DefaultThrottle coalesces bursts of database writes into one diff
const DefaultThrottle = 100 * time.Millisecond

type snapshotEntry struct {
	LibraryID int64
	Key       string
	Name      string
	ParentKey string
}

// Notifier implements ports.ChangeNotifier by watching the catalog file and
// diffing collection snapshots after each burst of writes
type Notifier struct {
	catalog  *Catalog
	logger   *log.Logger
	throttle time.Duration

	mu       sync.Mutex
	subs     map[int]func(domain.CollectionEvent)
	nextSub  int
	snapshot map[int64]snapshotEntry
}

// Ensure Notifier implements ChangeNotifier
var _ ports.ChangeNotifier = (*Notifier)(nil)

// NewNotifier creates a notifier for catalog
func NewNotifier(catalog *Catalog, logger *log.Logger) *Notifier {
	return &Notifier{
		catalog:  catalog,
		logger:   logging.OrDiscard(logger),
		throttle: DefaultThrottle,
		subs:     make(map[int]func(domain.CollectionEvent)),
	}
}

// Subscribe registers fn and returns the function that removes it
func (n *Notifier) Subscribe(fn func(domain.CollectionEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSub
	n.nextSub++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Refresh takes a new snapshot, diffs it against the previous one and
// delivers an event per changed collection. The first call only primes the
// snapshot.
func (n *Notifier) Refresh(ctx context.Context) ([]domain.CollectionEvent, error) {
	next, err := n.take(ctx)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	prev := n.snapshot
	n.snapshot = next
	subs := make([]func(domain.CollectionEvent), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	if prev == nil {
		return nil, nil
	}

	events := diff(prev, next)
	for _, ev := range events {
		n.logger.Debug("collection changed", "kind", ev.Kind, "collection", ev.CollectionID, "library", ev.LibraryID)
		for _, fn := range subs {
			deliver(n.logger, fn, ev)
		}
	}
	return events, nil
}

func deliver(logger *log.Logger, fn func(domain.CollectionEvent), ev domain.CollectionEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change subscriber panicked", "panic", r)
		}
	}()
	fn(ev)
}

func (n *Notifier) take(ctx context.Context) (map[int64]snapshotEntry, error) {
	libs, err := n.catalog.Libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot libraries: %w", err)
	}

	snap := make(map[int64]snapshotEntry)
	for _, lib := range libs {
		records, err := n.catalog.CollectionsByLibrary(ctx, lib.ID, true)
		if err != nil {
			return nil, fmt.Errorf("snapshot library %d: %w", lib.ID, err)
		}
		for _, r := range records {
			snap[r.ID] = snapshotEntry{LibraryID: r.LibraryID, Key: r.Key, Name: r.Name, ParentKey: r.ParentKey}
		}
	}
	return snap, nil
}

func diff(prev, next map[int64]snapshotEntry) []domain.CollectionEvent {
	var events []domain.CollectionEvent
	for id, cur := range next {
		old, ok := prev[id]
		switch {
		case !ok:
			events = append(events, domain.CollectionEvent{Kind: domain.ChangeAdd, CollectionID: id, LibraryID: cur.LibraryID})
		case old != cur:
			events = append(events, domain.CollectionEvent{Kind: domain.ChangeModify, CollectionID: id, LibraryID: cur.LibraryID})
		}
	}
	for id, old := range prev {
		if _, ok := next[id]; !ok {
			events = append(events, domain.CollectionEvent{Kind: domain.ChangeDelete, CollectionID: id, LibraryID: old.LibraryID})
		}
	}
	slices.SortFunc(events, func(a, b domain.CollectionEvent) int {
		return cmp.Compare(a.CollectionID, b.CollectionID)
	})
	return events
}

// Run watches the catalog's directory until ctx is cancelled. Writes to the
// database, its journal or its WAL trigger a throttled Refresh.
func (n *Notifier) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(n.catalog.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	base := filepath.Base(n.catalog.Path())

	if _, err := n.Refresh(ctx); err != nil {
		n.logger.Warn("initial snapshot failed", "err", err)
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			n.logger.Warn("catalog watcher error", "err", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(evt.Name), base) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(n.throttle)
				timerCh = timer.C
			}
		case <-timerCh:
			timer, timerCh = nil, nil
			if _, err := n.Refresh(ctx); err != nil {
				n.logger.Warn("catalog refresh failed", "err", err)
			}
		}
	}
}
