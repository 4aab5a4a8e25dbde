package views

import (
	"colljump/internal/domain"
)

// CollectionSelectedMsg is the host's select event. It is sent whenever the
// sidebar selection changes, including programmatic selections.
type CollectionSelectedMsg struct {
	Record  domain.CollectionRecord
	Library domain.Library
	Path    string
}

// CatalogChangedMsg carries a collection add/modify/delete notification
type CatalogChangedMsg struct {
	Event domain.CollectionEvent
}

// PrefsChangedMsg carries the preferences after an observed change
type PrefsChangedMsg struct {
	Name  string
	Prefs domain.Preferences
}

// JumpRequestMsg asks the app to jump to the collection named by Raw. Raw
// is whatever value the panel row carried.
type JumpRequestMsg struct {
	Raw any
}

// ClosePanelMsg asks the app to close the open panel
type ClosePanelMsg struct{}

// StatusMsg shows a line in the status bar
type StatusMsg struct {
	Text string
	Err  bool
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// SwitchToBrowserMsg returns to the main window
type SwitchToBrowserMsg struct{}
