// Package printer renders level trees for non-interactive use: one-shot
// dumps in several formats and a line-per-transition follower.
package printer

import (
	"sort"

	"github.com/atomicstack/vislevel/internal/vlevel"
)

// Snapshot is a point-in-time copy of a level tree.
type Snapshot struct {
	Root   string       `json:"root" yaml:"root" toml:"root"`
	Levels []LevelState `json:"levels" yaml:"levels" toml:"levels"`
}

type LevelState struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	ID      string      `json:"id" yaml:"id" toml:"id"`
	Depth   int         `json:"depth" yaml:"depth" toml:"depth"`
	Parent  string      `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	State   string      `json:"state" yaml:"state" toml:"state"`
	Visible bool        `json:"visible" yaml:"visible" toml:"visible"`
	Current string      `json:"current,omitempty" yaml:"current,omitempty" toml:"current,omitempty"`
	Items   []ItemState `json:"items" yaml:"items" toml:"items"`
}

type ItemState struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Visible bool   `json:"visible" yaml:"visible" toml:"visible"`
	Child   string `json:"child,omitempty" yaml:"child,omitempty" toml:"child,omitempty"`
}

// Capture walks the tree below root, then appends every other level in the
// registry at depth zero. It never creates levels or items.
func Capture(reg *vlevel.Registry[string], root string) Snapshot {
	snap := Snapshot{Root: root}
	seen := make(map[*vlevel.Level]bool)
	if level, ok := reg.Lookup(root); ok {
		walk(&snap, level, 0, seen)
	}
	keys := reg.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		if level, ok := reg.Lookup(key); ok && !seen[level] {
			walk(&snap, level, 0, seen)
		}
	}
	return snap
}

func walk(snap *Snapshot, level *vlevel.Level, depth int, seen map[*vlevel.Level]bool) {
	if seen[level] {
		return
	}
	seen[level] = true
	state := LevelState{
		Name:    level.Name(),
		ID:      level.ID(),
		Depth:   depth,
		Parent:  level.Parent().Path(),
		State:   level.State().String(),
		Visible: level.IsVisible(),
		Current: level.CurrentItem().Name(),
		Items:   []ItemState{},
	}
	var children []*vlevel.Level
	for _, name := range level.ItemNames() {
		entry := ItemState{Name: name}
		if item, ok := level.LookupItem(name); ok {
			entry.Visible = item.IsVisible()
			if child := item.ChildLevel(); child != nil {
				entry.Child = child.Name()
				children = append(children, child)
			}
		}
		state.Items = append(state.Items, entry)
	}
	snap.Levels = append(snap.Levels, state)
	for _, child := range children {
		walk(snap, child, depth+1, seen)
	}
}
