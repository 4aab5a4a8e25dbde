package views

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/application/commands"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// TreeKeyMap defines the expand/collapse bindings of the tree panel
type TreeKeyMap struct {
	Collapse key.Binding
	Expand   key.Binding
	Toggle   key.Binding
}

var TreeKeys = TreeKeyMap{
	Collapse: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "collapse"),
	),
	Expand: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "expand"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
}

// treeListTop is the number of panel lines above the first row: border,
// title, blank
const treeListTop = 3

type parentIndexMsg struct {
	gen    uint64
	result *commands.ParentIndexResult
	err    error
}

// TreePanelModel shows the active library's collections as an expandable
// tree and rebuilds it when the catalog changes while it is open
type TreePanelModel struct {
	ViewState
	catalog ports.Catalog
	pane    ports.Pane
	logger  *log.Logger

	library  domain.Library
	root     *domain.TreeNode
	rows     []*domain.TreeNode
	expanded map[int64]bool
	scroll   *Scroller
	clicks   clickTracker

	gen      uint64
	open     bool
	loading  bool
	rebuilds int
	err      error
}

// NewTreePanelModel creates a closed tree panel
func NewTreePanelModel(catalog ports.Catalog, pane ports.Pane, logger *log.Logger) *TreePanelModel {
	return &TreePanelModel{
		catalog:  catalog,
		pane:     pane,
		logger:   logging.OrDiscard(logger),
		expanded: map[int64]bool{},
		scroll:   NewScroller(PanelRows(domain.DefaultPanelHeight)),
	}
}

// SetPanelHeight applies the panelHeight preference
func (m *TreePanelModel) SetPanelHeight(px int) {
	m.scroll.SetHeight(PanelRows(px))
}

// IsOpen reports whether the panel is showing
func (m *TreePanelModel) IsOpen() bool {
	return m.open
}

// Generation returns the current render generation
func (m *TreePanelModel) Generation() uint64 {
	return m.gen
}

// Rebuilds returns how many index builds have been committed
func (m *TreePanelModel) Rebuilds() int {
	return m.rebuilds
}

// Open shows the panel and builds the index
func (m *TreePanelModel) Open() tea.Cmd {
	m.open = true
	m.root, m.rows = nil, nil
	m.expanded = map[int64]bool{}
	m.scroll.Reset()
	return m.rebuild()
}

// Close hides the panel. Results still in flight are discarded.
func (m *TreePanelModel) Close() {
	m.gen++
	m.open = false
	m.loading = false
	m.root, m.rows = nil, nil
}

func (m *TreePanelModel) rebuild() tea.Cmd {
	m.gen++
	m.loading = true
	m.err = nil
	gen := m.gen
	catalog, pane, logger := m.catalog, m.pane, m.logger
	return func() tea.Msg {
		res, err := commands.NewBuildParentIndexCommand(catalog, pane, logger).Execute(context.Background())
		return parentIndexMsg{gen: gen, result: res, err: err}
	}
}

// Update handles messages for the panel
func (m *TreePanelModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CatalogChangedMsg:
		if !m.open {
			return nil
		}
		m.logger.Debug("rebuilding tree panel", "kind", msg.Event.Kind, "collection", msg.Event.CollectionID)
		return m.rebuild()

	case parentIndexMsg:
		if msg.gen != m.gen || !m.open {
			m.logger.Debug("discarding stale tree", "gen", msg.gen, "current", m.gen)
			return nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.root, m.rows = nil, nil
			return nil
		}
		m.rebuilds++
		m.library = msg.result.Library
		m.root = domain.BuildTree(msg.result.Index, func(id int64) bool { return m.expanded[id] })
		m.refreshRows()
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, PanelKeys.Cancel):
			return func() tea.Msg { return ClosePanelMsg{} }
		case key.Matches(msg, PanelKeys.Up):
			m.scroll.CursorUp()
		case key.Matches(msg, PanelKeys.Down):
			m.scroll.CursorDown()
		case key.Matches(msg, PanelKeys.PageUp):
			m.scroll.PageUp()
		case key.Matches(msg, PanelKeys.PageDown):
			m.scroll.PageDown()
		case key.Matches(msg, TreeKeys.Expand):
			if node := m.cursorNode(); node != nil && node.HasChildren() {
				m.setExpanded(node, true)
			}
		case key.Matches(msg, TreeKeys.Collapse):
			m.collapseOrParent()
		case key.Matches(msg, TreeKeys.Toggle):
			if node := m.cursorNode(); node != nil && node.HasChildren() {
				m.setExpanded(node, !node.IsExpanded)
			}
		case key.Matches(msg, PanelKeys.Select):
			return m.commit()
		}
	}
	return nil
}

// Click handles a left click on a panel line; a second click on the same
// row commits it
func (m *TreePanelModel) Click(line int, at time.Time) tea.Cmd {
	row, ok := m.scroll.RowAt(line - treeListTop)
	if !ok {
		return nil
	}
	m.scroll.SetCursor(row)
	if m.clicks.click(row, at) {
		return m.commit()
	}
	return nil
}

// Rows returns the visible nodes
func (m *TreePanelModel) Rows() []*domain.TreeNode {
	return m.rows
}

// SetCursor moves the cursor to a visible row
func (m *TreePanelModel) SetCursor(row int) {
	m.scroll.SetCursor(row)
}

func (m *TreePanelModel) cursorNode() *domain.TreeNode {
	c := m.scroll.Cursor()
	if c < 0 || c >= len(m.rows) {
		return nil
	}
	return m.rows[c]
}

func (m *TreePanelModel) setExpanded(node *domain.TreeNode, expanded bool) {
	if expanded {
		node.Expand()
		m.expanded[node.Record.ID] = true
	} else {
		node.Collapse()
		delete(m.expanded, node.Record.ID)
	}
	m.refreshRows()
}

func (m *TreePanelModel) collapseOrParent() {
	node := m.cursorNode()
	if node == nil {
		return
	}
	if node.IsExpanded {
		m.setExpanded(node, false)
		return
	}
	if node.Parent == nil || node.Parent.IsRoot() {
		return
	}
	for i, n := range m.rows {
		if n == node.Parent {
			m.scroll.SetCursor(i)
			return
		}
	}
}

func (m *TreePanelModel) refreshRows() {
	if m.root == nil {
		m.rows = nil
		m.scroll.SetTotal(0)
		return
	}
	m.rows = m.root.Flatten()[1:]
	m.scroll.SetTotal(len(m.rows))
}

func (m *TreePanelModel) commit() tea.Cmd {
	node := m.cursorNode()
	if node == nil {
		return nil
	}
	rec := node.Record
	return func() tea.Msg { return JumpRequestMsg{Raw: rec} }
}

// View renders the panel
func (m *TreePanelModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Browse collections"))
	if m.library.ID != 0 {
		b.WriteString("  ")
		b.WriteString(RenderLibrary(m.library))
	}
	b.WriteString("\n\n")

	height := m.scroll.Height()
	lines := 0
	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorMsg.Render("Could not load collections: " + m.err.Error()))
		b.WriteString("\n")
		lines = 1
	case m.root == nil && m.loading:
		b.WriteString(styles.MutedText.Render("Loading..."))
		b.WriteString("\n")
		lines = 1
	case len(m.rows) == 0:
		b.WriteString(styles.MutedText.Render("No collections"))
		b.WriteString("\n")
		lines = 1
	default:
		start, end := m.scroll.VisibleRange()
		for i := start; i < end; i++ {
			b.WriteString(m.renderNode(m.rows[i], i == m.scroll.Cursor()))
			b.WriteString("\n")
			lines++
		}
	}
	for ; lines < height; lines++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(PanelKeys.Up, PanelKeys.Down, TreeKeys.Expand, TreeKeys.Collapse, PanelKeys.Select, PanelKeys.Cancel))

	return styles.Panel.Render(b.String())
}

func (m *TreePanelModel) renderNode(node *domain.TreeNode, cursor bool) string {
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
	if cursor {
		text = styles.NodeSelected.Render(text)
	}
	return indent + styles.TreeBranch.Render(prefix) + text
}
