package state

// List tracks the visible rows of the tree together with the cursor, the
// filter and the viewport.
type List struct {
	Rows           []Row
	Full           []Row
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
}

// NewList constructs a List over rows with the cursor on the first row.
func NewList(rows []Row) *List {
	l := &List{LastCursor: -1}
	l.UpdateRows(rows)
	return l
}

// IndexOf returns the index of the row with the given id among the filtered
// rows.
func (l *List) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, row := range l.Rows {
		if row.ID() == id {
			return i
		}
	}
	return -1
}

// Selected returns the row under the cursor.
func (l *List) Selected() (Row, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Rows) {
		return Row{}, false
	}
	return l.Rows[l.Cursor], true
}

// UpdateRows replaces the rows and keeps the cursor on the same row when it
// still exists.
func (l *List) UpdateRows(rows []Row) {
	var keep string
	if row, ok := l.Selected(); ok {
		keep = row.ID()
	}
	prevOffset := l.ViewportOffset
	l.Full = CloneRows(rows)
	l.applyFilter()
	if idx := l.IndexOf(keep); idx >= 0 {
		l.Cursor = idx
	}
	if len(l.Rows) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 || prevOffset > len(l.Rows)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}
