package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colljump/internal/application/commands"
	"colljump/internal/domain"
	"colljump/internal/ports"
)

func TestSidebar_InitShowsUserLibraryRoots(t *testing.T) {
	sb, _ := loadedSidebar(t)

	id, ok := sb.ActiveLibraryID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	row, ok := sb.RowIndexByID(5)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	_, ok = sb.RowIndexByID(3)
	assert.False(t, ok, "nested rows start collapsed")
	_, ok = sb.SelectedID()
	assert.False(t, ok)
}

func TestSidebar_SelectByIDNeedsVisibleRow(t *testing.T) {
	sb, _ := loadedSidebar(t)
	ctx := context.Background()

	assert.Error(t, sb.SelectByID(ctx, 3))

	require.NoError(t, sb.ExpandToID(ctx, 3))
	row, ok := sb.RowIndexByID(3)
	require.True(t, ok)
	assert.Equal(t, 2, row)

	require.NoError(t, sb.SelectByID(ctx, 3))
	got, ok := sb.SelectedID()
	require.True(t, ok)
	assert.Equal(t, int64(3), got)
}

func TestSidebar_DispatchSelect(t *testing.T) {
	sb := NewSidebar(newMemCatalog(), nil)
	ctx := context.Background()
	require.NoError(t, sb.Init(ctx))
	require.NoError(t, sb.ExpandToID(ctx, 3))
	require.NoError(t, sb.SelectRow(ctx, 2))

	assert.ErrorIs(t, sb.DispatchSelect(ctx), ErrNoEventSink)

	out := &sink{}
	sb.SetEventSink(out.send)
	require.NoError(t, sb.DispatchSelect(ctx))

	sels := out.selections()
	require.Len(t, sels, 1)
	assert.Equal(t, "Research / Papers / 2024", sels[0].Path)
	assert.Equal(t, int64(1), sels[0].Library.ID)
}

func TestSidebar_SelectCollectionNotifies(t *testing.T) {
	sb, out := loadedSidebar(t)

	require.NoError(t, sb.SelectCollection(context.Background(), 3))

	got, _ := sb.SelectedID()
	assert.Equal(t, int64(3), got)
	require.Len(t, out.selections(), 1)
	assert.Equal(t, "2024", out.selections()[0].Record.Name)
}

func TestSidebar_SelectURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantLib int64
		wantID  int64
		wantErr bool
	}{
		{name: "user library", uri: "zotero://select/library/collections/IJKL9012", wantLib: 1, wantID: 3},
		{name: "group library", uri: "zotero://select/groups/2/collections/WXYZ9876", wantLib: 2, wantID: 20},
		{name: "unknown key", uri: "zotero://select/library/collections/ZZZZ0000", wantErr: true},
		{name: "unknown library", uri: "zotero://select/groups/99/collections/WXYZ9876", wantErr: true},
		{name: "not a select link", uri: "https://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, out := loadedSidebar(t)
			err := sb.SelectURI(context.Background(), tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, out.selections())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLib, sb.Library().ID)
			got, _ := sb.SelectedID()
			assert.Equal(t, tt.wantID, got)
			require.Len(t, out.selections(), 1)
		})
	}
}

func TestSidebar_SelectURIKeyInEachLibrary(t *testing.T) {
	cat := newMemCatalog()
	cat.records = append(cat.records,
		domain.CollectionRecord{ID: 30, Key: "DUPKEY01", Name: "Mine", LibraryID: 1},
		domain.CollectionRecord{ID: 31, Key: "DUPKEY01", Name: "Theirs", LibraryID: 2},
	)
	sb := NewSidebar(cat, nil)
	ctx := context.Background()
	require.NoError(t, sb.Init(ctx))

	require.NoError(t, sb.SelectURI(ctx, "zotero://select/groups/2/collections/DUPKEY01"))
	got, _ := sb.SelectedID()
	assert.Equal(t, int64(31), got)
	assert.Equal(t, int64(2), sb.Library().ID)

	require.NoError(t, sb.SelectURI(ctx, "zotero://select/library/collections/DUPKEY01"))
	got, _ = sb.SelectedID()
	assert.Equal(t, int64(30), got)
	assert.Equal(t, int64(1), sb.Library().ID)
}

func TestSidebar_ReloadKeepsExpansion(t *testing.T) {
	cat := newMemCatalog()
	sb := NewSidebar(cat, nil)
	ctx := context.Background()
	require.NoError(t, sb.Init(ctx))
	require.NoError(t, sb.SelectCollection(ctx, 3))

	cat.records = append(cat.records, domain.CollectionRecord{ID: 9, Key: "NEWW0001", Name: "Archive", LibraryID: 1})
	require.NoError(t, sb.Reload(ctx))

	_, ok := sb.RowIndexByID(3)
	assert.True(t, ok, "expanded ancestors survive a reload")
	_, ok = sb.RowIndexByID(9)
	assert.True(t, ok)
	got, ok := sb.SelectedID()
	require.True(t, ok)
	assert.Equal(t, int64(3), got)
}

func TestSidebar_KeysMoveSelection(t *testing.T) {
	sb, _ := loadedSidebar(t)

	cmd := sb.Update(keyRunes("j"))
	require.NotNil(t, cmd)
	sel, ok := cmd().(CollectionSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "teaching", sel.Record.Name)

	sb.Update(keyRunes("k"))
	sb.Update(keyRunes("l"))
	_, ok = sb.RowIndexByID(2)
	assert.True(t, ok, "expanding Research shows Papers")

	sb.Update(keyRunes("h"))
	_, ok = sb.RowIndexByID(2)
	assert.False(t, ok)
}

func TestSidebar_CycleLibrary(t *testing.T) {
	sb, _ := loadedSidebar(t)

	cmd := sb.Update(keyRunes("]"))
	require.NotNil(t, cmd)
	status, ok := cmd().(StatusMsg)
	require.True(t, ok)
	assert.False(t, status.Err)
	assert.Equal(t, int64(2), sb.Library().ID)

	sb.Update(keyRunes("]"))()
	assert.Equal(t, int64(1), sb.Library().ID)
}

func TestSidebar_AsSelectionHost(t *testing.T) {
	target := domain.ResolvedCollection{
		Record:  domain.CollectionRecord{ID: 3, Key: "IJKL9012", Name: "2024", LibraryID: 1},
		Library: domain.Library{ID: 1, Type: domain.LibraryTypeUser},
	}

	tests := []struct {
		name       string
		host       func(*Sidebar) ports.Host
		wantWinner string
	}{
		{
			name:       "uri router",
			host:       func(sb *Sidebar) ports.Host { return ports.Host{URISelector: sb, Pane: sb, View: sb} },
			wantWinner: commands.StrategyURI,
		},
		{
			name:       "pane",
			host:       func(sb *Sidebar) ports.Host { return ports.Host{Pane: sb, View: sb} },
			wantWinner: commands.StrategyPane,
		},
		{
			name:       "tree view only",
			host:       func(sb *Sidebar) ports.Host { return ports.Host{View: sb} },
			wantWinner: commands.StrategyRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, out := loadedSidebar(t)
			driver := commands.NewSelectionDriver(tt.host(sb), nil, commands.WithSettleDelay(0))

			report, err := driver.Select(context.Background(), target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWinner, report.Winner)

			got, _ := sb.SelectedID()
			assert.Equal(t, int64(3), got)
			row, ok := sb.RowIndexByID(3)
			require.True(t, ok)
			assert.Equal(t, 2, row)
			assert.NotEmpty(t, out.selections(), "dependent panes hear about the selection")
		})
	}
}

func TestSidebar_ViewRendersRows(t *testing.T) {
	sb, _ := loadedSidebar(t)
	require.NoError(t, sb.SelectCollection(context.Background(), 2))

	out := sb.View()
	assert.Contains(t, out, "My Library")
	assert.Contains(t, out, "Research")
	assert.Contains(t, out, "Papers")
	assert.Contains(t, out, "teaching")
}
