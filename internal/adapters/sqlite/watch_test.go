package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colljump/internal/domain"
)

func TestNotifier_RefreshDiffs(t *testing.T) {
	c := openSeeded(t)
	ctx := context.Background()
	n := NewNotifier(c, nil)

	var got []domain.CollectionEvent
	unsubscribe := n.Subscribe(func(ev domain.CollectionEvent) { got = append(got, ev) })

	events, err := n.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "first refresh only primes")

	tx, err := c.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertCollection(ctx, domain.CollectionRecord{ID: 30, Key: "NEWKEY01", Name: "New", ParentKey: "ABCD1234", LibraryID: 1}))
	require.NoError(t, tx.RenameCollection(ctx, 2, "Articles"))
	require.NoError(t, tx.DeleteCollection(ctx, 22))
	require.NoError(t, tx.Commit())

	events, err = n.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CollectionEvent{
		{Kind: domain.ChangeModify, CollectionID: 2, LibraryID: 1},
		{Kind: domain.ChangeDelete, CollectionID: 22, LibraryID: 2},
		{Kind: domain.ChangeAdd, CollectionID: 30, LibraryID: 1},
	}, events)
	assert.Equal(t, events, got)

	unsubscribe()
	unsubscribe()

	tx, err = c.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.RenameCollection(ctx, 2, "Papers"))
	require.NoError(t, tx.Commit())

	events, err = n.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Len(t, got, 3, "unsubscribed handler is not called")
}

func TestNotifier_SubscriberPanicIsContained(t *testing.T) {
	c := openSeeded(t)
	ctx := context.Background()
	n := NewNotifier(c, nil)

	calls := 0
	n.Subscribe(func(domain.CollectionEvent) { panic("window closed") })
	n.Subscribe(func(domain.CollectionEvent) { calls++ })

	_, err := n.Refresh(ctx)
	require.NoError(t, err)

	tx, err := c.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.RenameCollection(ctx, 1, "Research (old)"))
	require.NoError(t, tx.Commit())

	assert.NotPanics(t, func() {
		_, err = n.Refresh(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNotifier_RunDeliversWrites(t *testing.T) {
	c := openSeeded(t)
	n := NewNotifier(c, nil)
	n.throttle = 20 * time.Millisecond

	var (
		mu  sync.Mutex
		got []domain.CollectionEvent
	)
	n.Subscribe(func(ev domain.CollectionEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	// wait for the initial snapshot
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return n.snapshot != nil
	}, 2*time.Second, 10*time.Millisecond)

	tx, err := c.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.UpsertCollection(context.Background(), domain.CollectionRecord{ID: 40, Key: "RUNKEY01", Name: "Watched", LibraryID: 1}))
	require.NoError(t, tx.Commit())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range got {
			if ev.CollectionID == 40 && ev.Kind == domain.ChangeAdd {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
