package prefs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colljump/internal/application"
	"colljump/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "colljump", "prefs.toml"), nil)
	require.NoError(t, err)
	return s
}

func TestStore_Defaults(t *testing.T) {
	s := openTemp(t)
	assert.Equal(t, domain.Preferences{EnableTreePane: true, PanelHeight: 420}, s.Load())
}

func TestStore_PersistsAndReopens(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.SetEnableTreePane(false))
	got, err := s.SetPanelHeight(640)
	require.NoError(t, err)
	assert.Equal(t, 640, got)

	reopened, err := Open(s.Path(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{EnableTreePane: false, PanelHeight: 640}, reopened.Load())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[extensions.colljump]")
	assert.Contains(t, string(data), "panelHeight = 640")
}

func TestStore_SetPanelHeightClamps(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 10, want: 200},
		{in: 200, want: 200},
		{in: 800, want: 800},
		{in: 5000, want: 1200},
	}

	s := openTemp(t)
	for _, tt := range tests {
		got, err := s.SetPanelHeight(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, s.Load().PanelHeight)
	}
}

func TestStore_SetPanelHeightRejectsNonPositive(t *testing.T) {
	s := openTemp(t)
	_, err := s.SetPanelHeight(640)
	require.NoError(t, err)

	for _, px := range []int{0, -5} {
		got, err := s.SetPanelHeight(px)
		var valErr *application.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "panelHeight", valErr.Field)
		assert.Equal(t, 640, got)
	}
	assert.Error(t, s.Set("panelHeight", "0"))

	reopened, err := Open(s.Path(), nil)
	require.NoError(t, err)
	assert.Equal(t, 640, reopened.Load().PanelHeight)
}

func TestStore_LoadSanitizesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[extensions.colljump]\npanelHeight = 9000\n"), 0o644))

	s, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{EnableTreePane: true, PanelHeight: 1200}, s.Load())

	require.NoError(t, os.WriteFile(path, []byte("[extensions.colljump]\npanelHeight = -3\n"), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, 420, s.Load().PanelHeight)
}

func TestStore_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[extensions.colljump\n"), 0o644))

	_, err := Open(path, nil)
	assert.Error(t, err)
}

func TestStore_Set(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Set("extensions.colljump.enableTreePane", "off"))
	require.NoError(t, s.Set("panelHeight", "300"))
	assert.Equal(t, domain.Preferences{EnableTreePane: false, PanelHeight: 300}, s.Load())

	assert.Error(t, s.Set("enableTreePane", "maybe"))
	assert.Error(t, s.Set("panelHeight", "tall"))
	assert.Error(t, s.Set("theme", "dark"))
}

func TestStore_ObservePrefix(t *testing.T) {
	s := openTemp(t)

	var all, height, other []string
	unsubscribe := s.Observe(domain.PrefPrefix, func(name string) { all = append(all, name) })
	s.Observe(domain.PrefKey(domain.PrefPanelHeight), func(name string) { height = append(height, name) })
	s.Observe("extensions.other.", func(name string) { other = append(other, name) })

	require.NoError(t, s.SetEnableTreePane(false))
	_, err := s.SetPanelHeight(500)
	require.NoError(t, err)
	_, err = s.SetPanelHeight(500)
	require.NoError(t, err)

	assert.Equal(t, []string{"extensions.colljump.enableTreePane", "extensions.colljump.panelHeight"}, all)
	assert.Equal(t, []string{"extensions.colljump.panelHeight"}, height)
	assert.Empty(t, other)

	unsubscribe()
	require.NoError(t, s.SetEnableTreePane(true))
	assert.Len(t, all, 2)
}

func TestStore_WatchPicksUpExternalEdits(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.SetEnableTreePane(true))

	var (
		mu      sync.Mutex
		changed []string
	)
	s.Observe(domain.PrefPrefix, func(name string) {
		mu.Lock()
		changed = append(changed, name)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// let the watcher register before editing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(s.Path(), []byte("[extensions.colljump]\nenableTreePane = false\n"), 0o644))

	assert.Eventually(t, func() bool {
		return !s.Load().EnableTreePane
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Contains(t, changed, "extensions.colljump.enableTreePane")
	mu.Unlock()

	cancel()
	require.NoError(t, <-done)
}
