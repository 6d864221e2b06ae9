package state

import "github.com/atomicstack/vislevel/internal/printer"

// Kind distinguishes level rows from item rows.
type Kind int

const (
	KindLevel Kind = iota
	KindItem
)

// Row is one line of the inspector tree.
type Row struct {
	Kind    Kind
	Level   string
	Item    string
	Depth   int
	State   string
	Visible bool
	Current bool
	Child   string
}

// ID is unique within one snapshot: the level key for level rows and
// "level/item" for item rows.
func (r Row) ID() string {
	if r.Kind == KindLevel {
		return r.Level
	}
	return r.Level + "/" + r.Item
}

// Label is the text the filter matches against.
func (r Row) Label() string {
	return r.ID()
}

// Rows flattens a snapshot into display order: each level followed by its
// items, with nested levels indented one step below their parent level.
func Rows(snap printer.Snapshot) []Row {
	rows := make([]Row, 0, len(snap.Levels)*4)
	for _, lvl := range snap.Levels {
		rows = append(rows, Row{
			Kind:    KindLevel,
			Level:   lvl.Name,
			Depth:   lvl.Depth * 2,
			State:   lvl.State,
			Visible: lvl.Visible,
		})
		for _, it := range lvl.Items {
			rows = append(rows, Row{
				Kind:    KindItem,
				Level:   lvl.Name,
				Item:    it.Name,
				Depth:   lvl.Depth*2 + 1,
				State:   lvl.State,
				Visible: it.Visible,
				Current: it.Name == lvl.Current,
				Child:   it.Child,
			})
		}
	}
	return rows
}

// CloneRows produces a shallow copy of rows.
func CloneRows(rows []Row) []Row {
	dup := make([]Row, len(rows))
	copy(dup, rows)
	return dup
}
