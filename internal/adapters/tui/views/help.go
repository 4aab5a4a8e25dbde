package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"colljump/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpSection is a titled group of bindings. Disabled bindings are not listed.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpModel lists the window's key bindings by section
type HelpModel struct {
	ViewState
	sections []HelpSection
}

func NewHelpModel(sections ...HelpSection) *HelpModel {
	return &HelpModel{sections: sections}
}

// SetSections replaces the listed bindings
func (m *HelpModel) SetSections(sections ...HelpSection) {
	m.sections = sections
}

func (m *HelpModel) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, HelpKeys.Close) {
		return func() tea.Msg { return SwitchToBrowserMsg{} }
	}
	return nil
}

func (m *HelpModel) View() string {
	vb := NewViewBuilder().Title("colljump keys")

	width := 0
	for _, s := range m.sections {
		for _, b := range s.Bindings {
			width = max(width, len([]rune(b.Help().Key)))
		}
	}

	for _, s := range m.sections {
		vb.Line(styles.InputLabel.Render(s.Title))
		for _, b := range s.Bindings {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			pad := strings.Repeat(" ", width-len([]rune(h.Key))+2)
			vb.Line("  " + styles.HelpKey.Render(h.Key) + pad + styles.HelpDesc.Render(h.Desc))
		}
		vb.BlankLine()
	}

	vb.Help(HelpKeys.Close)
	return styles.App.Render(vb.String())
}
