package commands

import (
	"context"
	"errors"
	"sync"

	"colljump/internal/domain"
)

// memCatalog is an in-memory ports.Catalog
type memCatalog struct {
	userLibrary int64
	libraries   map[int64]domain.Library
	records     []domain.CollectionRecord

	readyErr error
	listErr  error
	idErr    error
	keyErr   error
	idPanics bool
	panics   string // catalog method that panics when called
	waited   int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		userLibrary: 1,
		libraries: map[int64]domain.Library{
			1:  {ID: 1, Type: domain.LibraryTypeUser, Name: "My Library"},
			42: {ID: 42, Type: domain.LibraryTypeGroup, GroupID: 7001, Name: "Lab Group"},
		},
		records: []domain.CollectionRecord{
			{ID: 10, Key: "ABCD1234", Name: "Research", LibraryID: 1},
			{ID: 11, Key: "EFGH5678", Name: "Papers", ParentKey: "ABCD1234", LibraryID: 1},
			{ID: 12, Key: "JKLM2345", Name: "Chapter 10", ParentID: 11, LibraryID: 1},
			{ID: 13, Key: "NPQR3456", Name: "Chapter 2", ParentKey: "EFGH5678", LibraryID: 1},
			{ID: 20, Key: "WXYZ9876", Name: "Shared", LibraryID: 42},
			{ID: 21, Key: "23456789", Name: "Digits", LibraryID: 42},
		},
	}
}

func (c *memCatalog) maybePanic(method string) {
	if c.panics == method {
		panic(method + " exploded")
	}
}

func (c *memCatalog) WaitReady(context.Context) error {
	c.maybePanic("WaitReady")
	c.waited++
	return c.readyErr
}

func (c *memCatalog) UserLibraryID(context.Context) (int64, error) {
	c.maybePanic("UserLibraryID")
	return c.userLibrary, nil
}

func (c *memCatalog) Library(_ context.Context, id int64) (*domain.Library, error) {
	c.maybePanic("Library")
	lib, ok := c.libraries[id]
	if !ok {
		return nil, nil
	}
	return &lib, nil
}

func (c *memCatalog) Libraries(context.Context) ([]domain.Library, error) {
	var out []domain.Library
	for _, l := range c.libraries {
		out = append(out, l)
	}
	return out, nil
}

func (c *memCatalog) CollectionsByLibrary(_ context.Context, libraryID int64, _ bool) ([]domain.CollectionRecord, error) {
	c.maybePanic("CollectionsByLibrary")
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []domain.CollectionRecord
	for _, r := range c.records {
		if r.LibraryID == libraryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *memCatalog) CollectionByID(_ context.Context, id int64) (*domain.CollectionRecord, error) {
	if c.idPanics {
		panic("catalog exploded")
	}
	if c.idErr != nil {
		return nil, c.idErr
	}
	for _, r := range c.records {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (c *memCatalog) CollectionIDByKey(_ context.Context, key string) (int64, bool, error) {
	if c.keyErr != nil {
		return 0, false, c.keyErr
	}
	for _, r := range c.records {
		if r.Key == key {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (c *memCatalog) CollectionIDByLibraryKey(_ context.Context, libraryID int64, key string) (int64, bool, error) {
	if c.keyErr != nil {
		return 0, false, c.keyErr
	}
	for _, r := range c.records {
		if r.LibraryID == libraryID && r.Key == key {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

// recorder logs host calls in order
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

var errHost = errors.New("host threw")

type fakeURISelector struct {
	rec  *recorder
	err  error
	uris []string
}

func (s *fakeURISelector) SelectURI(_ context.Context, uri string) error {
	s.rec.add("uri.select")
	s.uris = append(s.uris, uri)
	return s.err
}

type fakeLauncher struct {
	rec  *recorder
	err  error
	urls []string
}

func (l *fakeLauncher) LaunchURL(_ context.Context, url string) error {
	l.rec.add("url.launch")
	l.urls = append(l.urls, url)
	return l.err
}

type fakePane struct {
	rec       *recorder
	active    int64
	hasActive bool
	switchErr error
	selectErr error
}

func (p *fakePane) ActiveLibraryID() (int64, bool) { return p.active, p.hasActive }

func (p *fakePane) SwitchLibrary(context.Context, int64) error {
	p.rec.add("pane.switch")
	return p.switchErr
}

func (p *fakePane) SelectCollection(context.Context, int64) error {
	p.rec.add("pane.select")
	return p.selectErr
}

type fakeView struct {
	rec       *recorder
	selected  int64
	has       bool
	selectErr error
	ignoreSel bool // SelectByID succeeds but nothing changes
	rows      map[int64]int
	rowErr    error
	panicky   bool
}

func (v *fakeView) SelectByID(_ context.Context, id int64) error {
	v.rec.add("view.selectByID")
	if v.panicky {
		panic("tree view not initialized")
	}
	if v.selectErr != nil {
		return v.selectErr
	}
	if !v.ignoreSel {
		v.selected, v.has = id, true
	}
	return nil
}

func (v *fakeView) SelectedID() (int64, bool) { return v.selected, v.has }

func (v *fakeView) ExpandToID(context.Context, int64) error {
	v.rec.add("view.expand")
	return nil
}

func (v *fakeView) RowIndexByID(id int64) (int, bool) {
	row, ok := v.rows[id]
	return row, ok
}

func (v *fakeView) SelectRow(_ context.Context, row int) error {
	v.rec.add("view.selectRow")
	if v.rowErr != nil {
		return v.rowErr
	}
	for id, r := range v.rows {
		if r == row {
			v.selected, v.has = id, true
		}
	}
	return nil
}

func (v *fakeView) EnsureRowVisible(int) { v.rec.add("view.ensureVisible") }

func (v *fakeView) DispatchSelect(context.Context) error {
	v.rec.add("view.dispatch")
	return nil
}
