package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFlatPanel(t *testing.T) *FlatPanelModel {
	t.Helper()
	sb, _ := loadedSidebar(t)
	m := NewFlatPanelModel(newMemCatalog(), sb, nil)
	m.Open()
	m.Update(m.load(m.Generation())())
	return m
}

func visiblePaths(m *FlatPanelModel) []string {
	var out []string
	for _, e := range m.Visible() {
		out = append(out, e.Path)
	}
	return out
}

func TestFlatPanel_LoadsActiveLibrary(t *testing.T) {
	m := openFlatPanel(t)

	assert.Equal(t, []string{
		"Research",
		"Research / Papers",
		"Research / Papers / 2024",
		"teaching",
	}, visiblePaths(m))
	assert.Contains(t, m.View(), "4 of 4")
}

func TestFlatPanel_Filter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"Research", "Research / Papers", "Research / Papers / 2024", "teaching"}},
		{query: "PAP", want: []string{"Research / Papers", "Research / Papers / 2024"}},
		{query: " 2024 ", want: []string{"Research / Papers / 2024"}},
		{query: "nothing", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m := openFlatPanel(t)
			m.SetFilter(tt.query)
			assert.Equal(t, tt.want, visiblePaths(m))
		})
	}
}

func TestFlatPanel_DiscardsStaleResults(t *testing.T) {
	sb, _ := loadedSidebar(t)
	m := NewFlatPanelModel(newMemCatalog(), sb, nil)

	m.Open()
	stale := m.load(m.Generation())()
	m.Close()
	m.Open()
	require.Equal(t, uint64(3), m.Generation())

	m.Update(stale)
	assert.Empty(t, m.Visible(), "results from an earlier open are dropped")

	m.Update(m.load(m.Generation())())
	assert.Len(t, m.Visible(), 4)

	m.Close()
	m.Update(m.load(m.Generation())())
	assert.Empty(t, m.Visible(), "results arriving after close are dropped")
}

func TestFlatPanel_ErrorRow(t *testing.T) {
	sb, _ := loadedSidebar(t)
	m := NewFlatPanelModel(newMemCatalog(), sb, nil)
	m.Open()
	m.Update(flatIndexMsg{gen: m.Generation(), err: errors.New("database is locked")})

	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), "database is locked")
}

func TestFlatPanel_EnterRequestsJump(t *testing.T) {
	m := openFlatPanel(t)
	m.SetFilter("2024")

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, JumpRequestMsg{Raw: "3"}, cmd())
}

func TestFlatPanel_DoubleClickRequestsJump(t *testing.T) {
	m := openFlatPanel(t)
	now := time.Now()

	assert.Nil(t, m.Click(flatListTop+1, now))
	entry, ok := m.Highlighted()
	require.True(t, ok)
	assert.Equal(t, "Research / Papers", entry.Path)

	cmd := m.Click(flatListTop+1, now.Add(100*time.Millisecond))
	require.NotNil(t, cmd)
	assert.Equal(t, JumpRequestMsg{Raw: "2"}, cmd())

	assert.Nil(t, m.Click(0, now), "clicks above the list are ignored")
}

func TestFlatPanel_CopyLink(t *testing.T) {
	m := openFlatPanel(t)
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}
	m.SetFilter("teaching")

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	status := cmd().(StatusMsg)
	assert.False(t, status.Err)
	assert.Equal(t, "zotero://select/library/collections/QRST7890", copied)

	m.copy = func(string) error { return errors.New("no clipboard") }
	status = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})().(StatusMsg)
	assert.True(t, status.Err)
}

func TestFlatPanel_EscapeCloses(t *testing.T) {
	m := openFlatPanel(t)
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ClosePanelMsg{}, cmd())
}
