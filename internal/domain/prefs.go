package domain

// PrefPrefix namespaces every preference key
const PrefPrefix = "extensions.colljump."

// Preference keys, relative to PrefPrefix
const (
	PrefEnableTreePane = "enableTreePane"
	PrefPanelHeight    = "panelHeight"
)

// Panel height bounds and default, in pixels
const (
	DefaultPanelHeight = 420
	MinPanelHeight     = 200
	MaxPanelHeight     = 1200
)

// Preferences is a snapshot of the user preferences
type Preferences struct {
	EnableTreePane bool
	PanelHeight    int
}

// DefaultPreferences returns the values used when nothing is stored
func DefaultPreferences() Preferences {
	return Preferences{EnableTreePane: true, PanelHeight: DefaultPanelHeight}
}

// ClampPanelHeight forces a height into [MinPanelHeight, MaxPanelHeight]
func ClampPanelHeight(px int) int {
	return max(MinPanelHeight, min(px, MaxPanelHeight))
}

// PrefKey returns the fully qualified name of a preference
func PrefKey(name string) string {
	return PrefPrefix + name
}
