package views

import (
	"time"

	"colljump/internal/domain"
)

// RowHeightPx converts the panelHeight preference from pixels to rows
const RowHeightPx = 20

// DoubleClickInterval is the longest gap between two clicks on the same row
// that still counts as a double-click
const DoubleClickInterval = 400 * time.Millisecond

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// PanelRows converts a panel height in pixels to list rows
func PanelRows(px int) int {
	return max(domain.ClampPanelHeight(px)/RowHeightPx, 5)
}

// clickTracker detects double-clicks on list rows
type clickTracker struct {
	row int
	at  time.Time
}

// click records a click on row and reports whether it completes a
// double-click
func (c *clickTracker) click(row int, at time.Time) bool {
	double := !c.at.IsZero() && c.row == row && at.Sub(c.at) <= DoubleClickInterval
	if double {
		c.at = time.Time{}
		return true
	}
	c.row, c.at = row, at
	return false
}
