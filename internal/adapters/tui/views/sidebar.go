package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// ErrNoEventSink is returned by DispatchSelect before the program is attached
var ErrNoEventSink = errors.New("sidebar has no event sink")

// SidebarKeyMap defines key bindings for the collection tree
type SidebarKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Toggle      key.Binding
	NextLibrary key.Binding
	PrevLibrary key.Binding
}

var SidebarKeys = SidebarKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle"),
	),
	NextLibrary: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next library"),
	),
	PrevLibrary: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev library"),
	),
}

// Sidebar is the host window's collection tree. It is shared between the
// bubbletea event loop and the selection driver, which calls it from a
// command goroutine, so every field is guarded by mu.
type Sidebar struct {
	catalog ports.Catalog
	logger  *log.Logger

	mu        sync.Mutex
	libraries []domain.Library
	library   domain.Library
	loaded    bool
	root      *domain.TreeNode
	paths     *domain.PathComposer
	rows      []*domain.TreeNode
	scroll    *Scroller
	selected  int64
	hasSel    bool
	send      func(tea.Msg)
}

// Ensure Sidebar provides the host capabilities
var (
	_ ports.Pane        = (*Sidebar)(nil)
	_ ports.TreeView    = (*Sidebar)(nil)
	_ ports.URISelector = (*Sidebar)(nil)
)

// NewSidebar creates an empty sidebar over catalog
func NewSidebar(catalog ports.Catalog, logger *log.Logger) *Sidebar {
	return &Sidebar{
		catalog: catalog,
		logger:  logging.OrDiscard(logger),
		scroll:  NewScroller(20),
	}
}

// SetEventSink sets where DispatchSelect delivers select events, normally
// tea.Program.Send
func (s *Sidebar) SetEventSink(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

// SetHeight sets the number of visible rows
func (s *Sidebar) SetHeight(height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll.SetHeight(max(height, 1))
}

// Init loads the library list and the user library's tree
func (s *Sidebar) Init(ctx context.Context) error {
	if err := s.catalog.WaitReady(ctx); err != nil {
		return err
	}
	libs, err := s.catalog.Libraries(ctx)
	if err != nil {
		return fmt.Errorf("list libraries: %w", err)
	}
	userID, err := s.catalog.UserLibraryID(ctx)
	if err != nil {
		return fmt.Errorf("user library: %w", err)
	}

	s.mu.Lock()
	s.libraries = libs
	s.mu.Unlock()

	return s.SwitchLibrary(ctx, userID)
}

// Library returns the active library
func (s *Sidebar) Library() domain.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.library
}

// ActiveLibraryID implements ports.Pane
func (s *Sidebar) ActiveLibraryID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.library.ID, s.loaded
}

// SwitchLibrary implements ports.Pane. Switching to the active library is a
// no-op.
func (s *Sidebar) SwitchLibrary(ctx context.Context, libraryID int64) error {
	s.mu.Lock()
	same := s.loaded && s.library.ID == libraryID
	s.mu.Unlock()
	if same {
		return nil
	}
	return s.load(ctx, libraryID, false)
}

// Reload re-reads the active library, keeping expansion and selection
func (s *Sidebar) Reload(ctx context.Context) error {
	s.mu.Lock()
	id, loaded := s.library.ID, s.loaded
	s.mu.Unlock()
	if !loaded {
		return nil
	}
	return s.load(ctx, id, true)
}

func (s *Sidebar) load(ctx context.Context, libraryID int64, keep bool) error {
	lib, err := s.catalog.Library(ctx, libraryID)
	if err != nil {
		return fmt.Errorf("library %d: %w", libraryID, err)
	}
	if lib == nil {
		return fmt.Errorf("library %d not found", libraryID)
	}
	records, err := s.catalog.CollectionsByLibrary(ctx, libraryID, true)
	if err != nil {
		return fmt.Errorf("collections of library %d: %w", libraryID, err)
	}
	normalized, _ := domain.NormalizeRecords(records)
	idx := domain.BuildParentIndex(normalized)

	s.mu.Lock()
	defer s.mu.Unlock()

	expanded := map[int64]bool{}
	if keep && s.root != nil {
		for _, n := range s.root.Flatten()[1:] {
			if n.IsExpanded {
				expanded[n.Record.ID] = true
			}
		}
	}

	s.library = *lib
	s.loaded = true
	s.root = domain.BuildTree(idx, func(id int64) bool { return expanded[id] })
	s.paths = domain.NewPathComposer(normalized)
	if !keep || (s.hasSel && s.root.Find(s.selected) == nil) {
		s.hasSel = false
		s.scroll.Reset()
	}
	s.refreshRowsLocked()
	s.logger.Debug("sidebar loaded", "library", lib.ID, "collections", idx.Len())
	return nil
}

// SelectCollection implements ports.Pane: the pane reveals and selects the
// collection in one step and notifies dependent panes itself
func (s *Sidebar) SelectCollection(ctx context.Context, collectionID int64) error {
	if err := s.ExpandToID(ctx, collectionID); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.selectLocked(collectionID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.DispatchSelect(ctx); err != nil && !errors.Is(err, ErrNoEventSink) {
		return err
	}
	return nil
}

// SelectByID implements ports.TreeView. Only visible rows can be selected.
func (s *Sidebar) SelectByID(_ context.Context, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rowLocked(collectionID); !ok {
		return fmt.Errorf("collection %d has no visible row", collectionID)
	}
	return s.selectLocked(collectionID)
}

// SelectedID implements ports.TreeView
func (s *Sidebar) SelectedID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSel
}

// ExpandToID implements ports.TreeView
func (s *Sidebar) ExpandToID(_ context.Context, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return errors.New("tree not loaded")
	}
	node := s.root.Find(collectionID)
	if node == nil {
		return fmt.Errorf("collection %d not in library %d", collectionID, s.library.ID)
	}
	node.ExpandAncestors()
	s.refreshRowsLocked()
	return nil
}

// RowIndexByID implements ports.TreeView
func (s *Sidebar) RowIndexByID(collectionID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowLocked(collectionID)
}

// SelectRow implements ports.TreeView
func (s *Sidebar) SelectRow(_ context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	return s.selectLocked(s.rows[row].Record.ID)
}

// EnsureRowVisible implements ports.TreeView
func (s *Sidebar) EnsureRowVisible(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll.SetCursor(row)
}

// DispatchSelect implements ports.TreeView
func (s *Sidebar) DispatchSelect(context.Context) error {
	s.mu.Lock()
	msg, ok := s.selectedMsgLocked()
	send := s.send
	s.mu.Unlock()

	if !ok {
		return errors.New("nothing selected")
	}
	if send == nil {
		return ErrNoEventSink
	}
	send(msg)
	return nil
}

// SelectURI implements ports.URISelector by routing zotero://select links
func (s *Sidebar) SelectURI(ctx context.Context, uri string) error {
	target, err := domain.ParseSelectURI(uri)
	if err != nil {
		return err
	}
	libraryID := target.LibraryID
	if target.UserLibrary {
		if libraryID, err = s.catalog.UserLibraryID(ctx); err != nil {
			return err
		}
	}
	if err := s.SwitchLibrary(ctx, libraryID); err != nil {
		return err
	}

	id, ok, err := s.catalog.CollectionIDByLibraryKey(ctx, libraryID, target.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no collection with key %s in library %d", target.Key, libraryID)
	}
	return s.SelectCollection(ctx, id)
}

func (s *Sidebar) selectLocked(id int64) error {
	if s.root == nil || s.root.Find(id) == nil {
		return fmt.Errorf("collection %d not in library %d", id, s.library.ID)
	}
	s.selected, s.hasSel = id, true
	if row, ok := s.rowLocked(id); ok {
		s.scroll.SetCursor(row)
	}
	return nil
}

func (s *Sidebar) rowLocked(id int64) (int, bool) {
	for i, n := range s.rows {
		if n.Record.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Sidebar) refreshRowsLocked() {
	if s.root == nil {
		s.rows = nil
		s.scroll.SetTotal(0)
		return
	}
	s.rows = s.root.Flatten()[1:]
	s.scroll.SetTotal(len(s.rows))
}

func (s *Sidebar) selectedMsgLocked() (CollectionSelectedMsg, bool) {
	if !s.hasSel || s.root == nil {
		return CollectionSelectedMsg{}, false
	}
	node := s.root.Find(s.selected)
	if node == nil {
		return CollectionSelectedMsg{}, false
	}
	path, _ := s.paths.Compose(node.Record)
	return CollectionSelectedMsg{Record: node.Record, Library: s.library, Path: path}, true
}

// Update handles navigation keys. Moving the cursor selects the row and
// emits a select event, as clicking a row in the host would.
func (s *Sidebar) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, SidebarKeys.NextLibrary):
		return s.cycleLibrary(1)
	case key.Matches(keyMsg, SidebarKeys.PrevLibrary):
		return s.cycleLibrary(-1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return nil
	}

	cursor := s.scroll.Cursor()
	node := s.rows[cursor]
	switch {
	case key.Matches(keyMsg, SidebarKeys.Up):
		s.scroll.CursorUp()
	case key.Matches(keyMsg, SidebarKeys.Down):
		s.scroll.CursorDown()
	case key.Matches(keyMsg, SidebarKeys.Left):
		if node.IsExpanded {
			node.Collapse()
			s.refreshRowsLocked()
		} else if !node.Parent.IsRoot() {
			if row, ok := s.rowLocked(node.Parent.Record.ID); ok {
				s.scroll.SetCursor(row)
			}
		}
	case key.Matches(keyMsg, SidebarKeys.Right):
		if node.HasChildren() && !node.IsExpanded {
			node.Expand()
			s.refreshRowsLocked()
		}
	case key.Matches(keyMsg, SidebarKeys.Toggle):
		if node.HasChildren() {
			node.Toggle()
			s.refreshRowsLocked()
		}
	default:
		return nil
	}

	current := s.rows[s.scroll.Cursor()].Record.ID
	if s.hasSel && current == s.selected {
		return nil
	}
	s.selected, s.hasSel = current, true
	sel, _ := s.selectedMsgLocked()
	return func() tea.Msg { return sel }
}

func (s *Sidebar) cycleLibrary(step int) tea.Cmd {
	s.mu.Lock()
	libs := s.libraries
	current := s.library.ID
	s.mu.Unlock()
	if len(libs) < 2 {
		return nil
	}

	next := libs[0].ID
	for i, l := range libs {
		if l.ID == current {
			next = libs[(i+step+len(libs))%len(libs)].ID
			break
		}
	}
	return func() tea.Msg {
		if err := s.SwitchLibrary(context.Background(), next); err != nil {
			return StatusMsg{Text: err.Error(), Err: true}
		}
		return StatusMsg{Text: "Switched to " + s.Library().Name}
	}
}

// View renders the tree
func (s *Sidebar) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if !s.loaded {
		b.WriteString(styles.MutedText.Render("Loading..."))
		return b.String()
	}

	b.WriteString(RenderLibrary(s.library))
	b.WriteString("\n\n")

	if len(s.rows) == 0 {
		b.WriteString(styles.MutedText.Render("No collections"))
		return b.String()
	}

	start, end := s.scroll.VisibleRange()
	for i := start; i < end; i++ {
		b.WriteString(s.renderNode(s.rows[i], i == s.scroll.Cursor()))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *Sidebar) renderNode(node *domain.TreeNode, cursor bool) string {
	indent := strings.Repeat("  ", node.Depth())

	prefix := styles.TreeLeaf
	if node.HasChildren() {
		if node.IsExpanded {
			prefix = styles.TreeExpanded
		} else {
			prefix = styles.TreeCollapsed
		}
	}

	text := node.Record.Name
	switch {
	case s.hasSel && node.Record.ID == s.selected:
		text = styles.NodeSelected.Render(text)
	case cursor:
		text = styles.NodeCursor.Render(text)
	default:
		text = styles.NodeCollection.Render(text)
	}
	return indent + styles.TreeBranch.Render(prefix) + text
}
