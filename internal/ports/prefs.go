package ports

import "colljump/internal/domain"

// PreferenceStore reads, writes and observes the user preferences
type PreferenceStore interface {
	Load() domain.Preferences
	SetEnableTreePane(enabled bool) error

	// SetPanelHeight stores the height clamped to the allowed range and
	// returns the stored value
	SetPanelHeight(px int) (int, error)

	// Observe calls fn with the full preference name whenever a preference
	// under prefix changes
	Observe(prefix string, fn func(fullName string)) (unsubscribe func())
}
