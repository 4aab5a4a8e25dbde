package views

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"colljump/internal/adapters/tui/styles"
	"colljump/internal/domain"
)

// DetailModel is the dependent pane that follows the sidebar selection. It
// only repaints on select events, so a programmatic selection without a
// dispatched event leaves it stale.
type DetailModel struct {
	viewport viewport.Model
	current  *CollectionSelectedMsg
	events   int
}

// NewDetailModel creates an empty detail pane
func NewDetailModel() *DetailModel {
	return &DetailModel{viewport: viewport.New(40, 10)}
}

// SetSize updates the view dimensions
func (m *DetailModel) SetSize(width, height int) {
	m.viewport.Width = max(width, 10)
	m.viewport.Height = max(height, 3)
}

// Current returns the collection shown, if any
func (m *DetailModel) Current() (domain.CollectionRecord, bool) {
	if m.current == nil {
		return domain.CollectionRecord{}, false
	}
	return m.current.Record, true
}

// Events returns how many select events the pane has received
func (m *DetailModel) Events() int {
	return m.events
}

// Update handles select events and scrolling
func (m *DetailModel) Update(msg tea.Msg) tea.Cmd {
	if sel, ok := msg.(CollectionSelectedMsg); ok {
		m.current = &sel
		m.events++
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *DetailModel) render() string {
	sel := m.current
	b := NewViewBuilder()
	b.Title(sel.Record.Name)
	if sel.Path != "" {
		b.Line(RenderPath(sel.Path)).BlankLine()
	}
	b.Line(RenderLabelValue("Library", RenderLibrary(sel.Library)))
	b.Line(RenderLabelValue("ID", strconv.FormatInt(sel.Record.ID, 10)))
	b.Line(RenderLabelValue("Key", sel.Record.Key))
	if sel.Record.ParentKey != "" {
		b.Line(RenderLabelValue("Parent", sel.Record.ParentKey))
	}

	uri, err := domain.SelectURI(domain.ResolvedCollection{Record: sel.Record, Library: sel.Library})
	if err == nil {
		b.BlankLine().Line(RenderLabelValue("Link", styles.MutedText.Render(uri)))
	}
	return b.String()
}

// View renders the pane
func (m *DetailModel) View() string {
	if m.current == nil {
		return styles.MutedText.Render("Select a collection, or press g to jump")
	}
	return m.viewport.View() + "\n" + styles.MutedText.Render(fmt.Sprintf("%d select events", m.events))
}
