package views

// Scroller keeps a cursor inside a fixed-height window over a list.
// Unlike page-wise paging the window follows the cursor one row at a time.
type Scroller struct {
	height int
	offset int
	cursor int
	total  int
}

// NewScroller creates a scroller showing height rows
func NewScroller(height int) *Scroller {
	if height <= 0 {
		height = 10
	}
	return &Scroller{height: height}
}

// SetHeight changes the number of visible rows
func (s *Scroller) SetHeight(height int) {
	if height > 0 {
		s.height = height
	}
	s.ensureVisible()
}

// Height returns the number of visible rows
func (s *Scroller) Height() int {
	return s.height
}

// SetTotal sets the total number of items, clamping the cursor
func (s *Scroller) SetTotal(total int) {
	s.total = total
	if s.cursor >= total {
		s.cursor = total - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.ensureVisible()
}

// Total returns the number of items
func (s *Scroller) Total() int {
	return s.total
}

// Cursor returns the current cursor position (absolute index)
func (s *Scroller) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor to pos, clamped to the list
func (s *Scroller) SetCursor(pos int) {
	s.cursor = max(0, min(pos, s.total-1))
	s.ensureVisible()
}

// CursorUp moves the cursor up by one
func (s *Scroller) CursorUp() bool {
	if s.cursor > 0 {
		s.cursor--
		s.ensureVisible()
		return true
	}
	return false
}

// CursorDown moves the cursor down by one
func (s *Scroller) CursorDown() bool {
	if s.cursor < s.total-1 {
		s.cursor++
		s.ensureVisible()
		return true
	}
	return false
}

// PageDown moves the cursor one window down
func (s *Scroller) PageDown() {
	s.SetCursor(s.cursor + s.height)
}

// PageUp moves the cursor one window up
func (s *Scroller) PageUp() {
	s.SetCursor(s.cursor - s.height)
}

// VisibleRange returns the start and end indices of the window
func (s *Scroller) VisibleRange() (start, end int) {
	return s.offset, min(s.offset+s.height, s.total)
}

// RowAt maps a line inside the window to an absolute index
func (s *Scroller) RowAt(line int) (int, bool) {
	row := s.offset + line
	if line < 0 || line >= s.height || row >= s.total {
		return 0, false
	}
	return row, true
}

// Reset resets the scroller to its initial state
func (s *Scroller) Reset() {
	s.cursor = 0
	s.offset = 0
	s.total = 0
}

func (s *Scroller) ensureVisible() {
	if s.cursor < s.offset {
		s.offset = s.cursor
	} else if s.cursor >= s.offset+s.height {
		s.offset = s.cursor - s.height + 1
	}
	if s.offset > max(0, s.total-s.height) {
		s.offset = max(0, s.total-s.height)
	}
}
