package views

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"colljump/internal/domain"
)

// memCatalog is an in-memory ports.Catalog
type memCatalog struct {
	libraries []domain.Library
	records   []domain.CollectionRecord
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		libraries: []domain.Library{
			{ID: 1, Type: domain.LibraryTypeUser, Name: "My Library"},
			{ID: 2, Type: domain.LibraryTypeGroup, GroupID: 4711, Name: "Reading Group"},
		},
		records: []domain.CollectionRecord{
			{ID: 1, Key: "ABCD1234", Name: "Research", LibraryID: 1},
			{ID: 2, Key: "EFGH5678", Name: "Papers", ParentKey: "ABCD1234", ParentID: 1, LibraryID: 1},
			{ID: 3, Key: "IJKL9012", Name: "2024", ParentKey: "EFGH5678", ParentID: 2, LibraryID: 1},
			{ID: 5, Key: "QRST7890", Name: "teaching", LibraryID: 1},
			{ID: 20, Key: "WXYZ9876", Name: "Shared", LibraryID: 2},
		},
	}
}

func (c *memCatalog) WaitReady(context.Context) error { return nil }

func (c *memCatalog) UserLibraryID(context.Context) (int64, error) { return 1, nil }

func (c *memCatalog) Library(_ context.Context, id int64) (*domain.Library, error) {
	for _, l := range c.libraries {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (c *memCatalog) Libraries(context.Context) ([]domain.Library, error) {
	return c.libraries, nil
}

func (c *memCatalog) CollectionsByLibrary(_ context.Context, libraryID int64, _ bool) ([]domain.CollectionRecord, error) {
	var out []domain.CollectionRecord
	for _, r := range c.records {
		if r.LibraryID == libraryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *memCatalog) CollectionByID(_ context.Context, id int64) (*domain.CollectionRecord, error) {
	for _, r := range c.records {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (c *memCatalog) CollectionIDByKey(_ context.Context, key string) (int64, bool, error) {
	for _, r := range c.records {
		if r.Key == key {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (c *memCatalog) CollectionIDByLibraryKey(_ context.Context, libraryID int64, key string) (int64, bool, error) {
	for _, r := range c.records {
		if r.LibraryID == libraryID && r.Key == key {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

// sink collects the messages a program would receive
type sink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *sink) send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *sink) selections() []CollectionSelectedMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CollectionSelectedMsg
	for _, m := range s.msgs {
		if sel, ok := m.(CollectionSelectedMsg); ok {
			out = append(out, sel)
		}
	}
	return out
}

func loadedSidebar(t *testing.T) (*Sidebar, *sink) {
	t.Helper()
	sb := NewSidebar(newMemCatalog(), nil)
	require.NoError(t, sb.Init(context.Background()))
	out := &sink{}
	sb.SetEventSink(out.send)
	return sb, out
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
