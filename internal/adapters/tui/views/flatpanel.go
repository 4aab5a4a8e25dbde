package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/application/commands"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// PanelKeyMap defines key bindings shared by the jump panels
type PanelKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Select   key.Binding
	CopyLink key.Binding
	Cancel   key.Binding
}

var PanelKeys = PanelKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "jump"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy link"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}

// flatListTop is the number of panel lines above the first list row:
// border, title, blank, bordered input, blank
const flatListTop = 7

type flatIndexMsg struct {
	gen    uint64
	result *commands.FlatIndexResult
	err    error
}

// FlatPanelModel lists every collection of the active library by full path
// with a substring filter
type FlatPanelModel struct {
	ViewState
	catalog ports.Catalog
	pane    ports.Pane
	logger  *log.Logger
	copy    func(string) error

	input   textinput.Model
	scroll  *Scroller
	library domain.Library
	entries []domain.PathEntry
	visible []domain.PathEntry
	clicks  clickTracker

	gen     uint64
	open    bool
	loading bool
	err     error
}

// NewFlatPanelModel creates a closed flat panel
func NewFlatPanelModel(catalog ports.Catalog, pane ports.Pane, logger *log.Logger) *FlatPanelModel {
	input := textinput.New()
	input.Placeholder = "Filter collections..."
	input.Prompt = "› "

	return &FlatPanelModel{
		catalog: catalog,
		pane:    pane,
		logger:  logging.OrDiscard(logger),
		copy:    clipboard.WriteAll,
		input:   input,
		scroll:  NewScroller(PanelRows(domain.DefaultPanelHeight)),
	}
}

// SetPanelHeight applies the panelHeight preference
func (m *FlatPanelModel) SetPanelHeight(px int) {
	m.scroll.SetHeight(PanelRows(px))
}

// IsOpen reports whether the panel is showing
func (m *FlatPanelModel) IsOpen() bool {
	return m.open
}

// Generation returns the current render generation
func (m *FlatPanelModel) Generation() uint64 {
	return m.gen
}

// Open shows the panel and fetches a fresh index
func (m *FlatPanelModel) Open() tea.Cmd {
	m.gen++
	m.open = true
	m.loading = true
	m.err = nil
	m.entries, m.visible = nil, nil
	m.scroll.Reset()
	m.input.SetValue("")
	m.input.Focus()
	return tea.Batch(textinput.Blink, m.load(m.gen))
}

// Close hides the panel. Results still in flight are discarded.
func (m *FlatPanelModel) Close() {
	m.gen++
	m.open = false
	m.loading = false
	m.input.Blur()
	m.entries, m.visible = nil, nil
}

func (m *FlatPanelModel) load(gen uint64) tea.Cmd {
	catalog, pane, logger := m.catalog, m.pane, m.logger
	return func() tea.Msg {
		res, err := commands.NewBuildFlatIndexCommand(catalog, pane, logger).Execute(context.Background())
		return flatIndexMsg{gen: gen, result: res, err: err}
	}
}

// Update handles messages for the panel
func (m *FlatPanelModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case flatIndexMsg:
		if msg.gen != m.gen || !m.open {
			m.logger.Debug("discarding stale flat index", "gen", msg.gen, "current", m.gen)
			return nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.library = msg.result.Library
		m.entries = msg.result.Entries
		m.refilter()
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, PanelKeys.Cancel):
			return func() tea.Msg { return ClosePanelMsg{} }
		case key.Matches(msg, PanelKeys.Up):
			m.scroll.CursorUp()
			return nil
		case key.Matches(msg, PanelKeys.Down):
			m.scroll.CursorDown()
			return nil
		case key.Matches(msg, PanelKeys.PageUp):
			m.scroll.PageUp()
			return nil
		case key.Matches(msg, PanelKeys.PageDown):
			m.scroll.PageDown()
			return nil
		case key.Matches(msg, PanelKeys.Select):
			return m.commit()
		case key.Matches(msg, PanelKeys.CopyLink):
			return m.copyLink()
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return cmd
}

// Click handles a left click on a panel line; a second click on the same
// row commits it
func (m *FlatPanelModel) Click(line int, at time.Time) tea.Cmd {
	row, ok := m.scroll.RowAt(line - flatListTop)
	if !ok {
		return nil
	}
	m.scroll.SetCursor(row)
	if m.clicks.click(row, at) {
		return m.commit()
	}
	return nil
}

// SetFilter replaces the filter text
func (m *FlatPanelModel) SetFilter(q string) {
	m.input.SetValue(q)
	m.refilter()
}

// Visible returns the entries matching the filter
func (m *FlatPanelModel) Visible() []domain.PathEntry {
	return m.visible
}

// Highlighted returns the entry under the cursor
func (m *FlatPanelModel) Highlighted() (domain.PathEntry, bool) {
	c := m.scroll.Cursor()
	if c < 0 || c >= len(m.visible) {
		return domain.PathEntry{}, false
	}
	return m.visible[c], true
}

func (m *FlatPanelModel) refilter() {
	m.visible = commands.FilterEntries(m.entries, m.input.Value())
	m.scroll.SetTotal(len(m.visible))
	m.scroll.SetCursor(0)
}

func (m *FlatPanelModel) commit() tea.Cmd {
	entry, ok := m.Highlighted()
	if !ok {
		return nil
	}
	// Rows carry their id the way a rendered attribute would: as text
	raw := entry.ID.String()
	return func() tea.Msg { return JumpRequestMsg{Raw: raw} }
}

func (m *FlatPanelModel) copyLink() tea.Cmd {
	entry, ok := m.Highlighted()
	if !ok {
		return nil
	}
	uri, err := domain.SelectURI(domain.ResolvedCollection{
		Record:  domain.CollectionRecord{Key: entry.Key, LibraryID: m.library.ID},
		Library: m.library,
	})
	if err == nil {
		err = m.copy(uri)
	}
	if err != nil {
		m.logger.Warn("copy link failed", "key", entry.Key, "err", err)
		return func() tea.Msg { return StatusMsg{Text: "Copy failed: " + err.Error(), Err: true} }
	}
	return func() tea.Msg { return StatusMsg{Text: "Copied " + uri} }
}

// View renders the panel
func (m *FlatPanelModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Jump to collection"))
	if m.library.ID != 0 {
		b.WriteString("  ")
		b.WriteString(RenderLibrary(m.library))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	height := m.scroll.Height()
	lines := 0
	switch {
	case m.loading:
		b.WriteString(styles.MutedText.Render("Loading..."))
		lines = 1
	case m.err != nil:
		b.WriteString(styles.ErrorMsg.Render("Could not load collections: " + m.err.Error()))
		lines = 1
	case len(m.visible) == 0:
		b.WriteString(styles.MutedText.Render("No matching collections"))
		lines = 1
	default:
		start, end := m.scroll.VisibleRange()
		for i := start; i < end; i++ {
			line := "  " + RenderPath(m.visible[i].Path)
			if i == m.scroll.Cursor() {
				line = styles.NodeSelected.Render("› " + m.visible[i].Path)
			}
			b.WriteString(line)
			b.WriteString("\n")
			lines++
		}
	}
	for ; lines < height; lines++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d of %d", len(m.visible), len(m.entries))))
	b.WriteString("\n")
	b.WriteString(RenderHelpLine(PanelKeys.Up, PanelKeys.Down, PanelKeys.Select, PanelKeys.CopyLink, PanelKeys.Cancel))

	return styles.Panel.Render(b.String())
}
