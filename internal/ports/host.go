package ports

import "context"

// URISelector navigates the host to a deep link using its own routing, which
// refreshes every dependent pane
type URISelector interface {
	SelectURI(ctx context.Context, uri string) error
}

// URLLauncher hands a URL to a generic opener
type URLLauncher interface {
	LaunchURL(ctx context.Context, url string) error
}

// Pane is the host's main pane
type Pane interface {
	// ActiveLibraryID returns the library selected in the UI; ok is false
	// when nothing is selected
	ActiveLibraryID() (id int64, ok bool)
	SwitchLibrary(ctx context.Context, libraryID int64) error
	SelectCollection(ctx context.Context, collectionID int64) error
}

// TreeView exposes the primitives of the host's collection tree
type TreeView interface {
	SelectByID(ctx context.Context, collectionID int64) error
	SelectedID() (id int64, ok bool)
	ExpandToID(ctx context.Context, collectionID int64) error
	RowIndexByID(collectionID int64) (row int, ok bool)
	SelectRow(ctx context.Context, row int) error
	EnsureRowVisible(row int)

	// DispatchSelect emits a select event so listeners of dependent panes
	// repaint even when the selection was changed programmatically
	DispatchSelect(ctx context.Context) error
}

// Host bundles the optional capabilities of a host window. A nil field means
// the capability is absent.
type Host struct {
	URISelector URISelector
	URLLauncher URLLauncher
	Pane        Pane
	View        TreeView
}
