// Package mirror keeps a level tree in step with a tmux server: one level
// for the server, one per session and one per window.
package mirror

import (
	"github.com/atomicstack/vislevel/internal/backend"
	"github.com/atomicstack/vislevel/internal/logging/events"
	"github.com/atomicstack/vislevel/internal/tmux"
	"github.com/atomicstack/vislevel/internal/vlevel"
)

// ServerLevel is the key of the root level, whose items are session names.
const ServerLevel = "server"

// SessionLevel is the key of the level listing a session's windows.
func SessionLevel(session string) string { return "session:" + session }

// WindowLevel is the key of the level listing a window's panes. Linked
// windows get one level per session they appear in.
func WindowLevel(session, windowID string) string { return "window:" + session + ":" + windowID }

// Result summarises what one Apply changed.
type Result struct {
	Created    []string
	Removed    []string
	Rebuilt    []string
	Selections int
}

// Changed reports whether the level tree was touched at all.
func (r Result) Changed() bool {
	return len(r.Created) > 0 || len(r.Removed) > 0 || len(r.Rebuilt) > 0 || r.Selections > 0
}

type Mirror struct {
	reg   *vlevel.Registry[string]
	owned map[string]bool
}

func New(reg *vlevel.Registry[string]) *Mirror {
	return &Mirror{reg: reg, owned: make(map[string]bool)}
}

// Handle applies a watcher event. Failed polls leave the tree untouched.
func (m *Mirror) Handle(evt backend.Event) Result {
	if evt.Err != nil {
		events.Mirror.Error(evt.Err)
		return Result{}
	}
	return m.Apply(evt.Tree)
}

// Apply reshapes the registry to match tree. The server level is visible
// while a real client is attached; selection follows tmux's current session,
// active windows and active panes.
func (m *Mirror) Apply(tree tmux.Tree) Result {
	var res Result
	wanted := make(map[string]bool)

	sessions := make([]string, 0, len(tree.Sessions))
	for _, s := range tree.Sessions {
		sessions = append(sessions, s.Name)
	}
	server := m.sync(&res, wanted, ServerLevel, sessions, tree.Current, nil)

	for _, s := range tree.Sessions {
		windows := make([]string, 0, len(s.Windows))
		for _, w := range s.Windows {
			windows = append(windows, w.ID)
		}
		parent, _ := server.Item(s.Name)
		level := m.sync(&res, wanted, SessionLevel(s.Name), windows, s.ActiveWindow(), parent)

		for _, w := range s.Windows {
			panes := make([]string, 0, len(w.Panes))
			for _, p := range w.Panes {
				panes = append(panes, p.ID)
			}
			parent, _ := level.Item(w.ID)
			m.sync(&res, wanted, WindowLevel(s.Name, w.ID), panes, w.ActivePane(), parent)
		}
	}

	for key := range m.owned {
		if wanted[key] {
			continue
		}
		if m.reg.Remove(key) {
			res.Removed = append(res.Removed, key)
		}
		delete(m.owned, key)
	}

	server.SetVisible(tree.Attached)
	events.Mirror.Apply(len(tree.Sessions), len(res.Created), len(res.Removed), res.Selections)
	return res
}

// sync makes level key hold exactly items, selects current (or the first
// item) and nests the level under parent.
func (m *Mirror) sync(res *Result, wanted map[string]bool, key string, items []string, current string, parent *vlevel.Item) *vlevel.Level {
	wanted[key] = true
	level, ok := m.reg.Lookup(key)
	if !ok {
		level = m.reg.Get(key)
		res.Created = append(res.Created, key)
	}
	m.owned[key] = true

	existing := level.ItemNames()
	if !sameItems(existing, items) {
		if !subset(existing, items) {
			// items cannot be undeclared one by one
			level.Reset()
			res.Rebuilt = append(res.Rebuilt, key)
			events.Mirror.Rebuild(key, items)
		}
		if len(items) > 0 {
			if err := level.DeclareItems(items...); err != nil {
				events.Mirror.Error(err)
			}
		}
	}

	if current == "" && len(items) > 0 {
		current = level.CurrentItem().Name()
		if current == "" {
			current = items[0]
		}
	}
	if current != "" && level.CurrentItem().Name() != current {
		if err := level.SetCurrentItem(current); err != nil {
			events.Mirror.Error(err)
		} else {
			res.Selections++
		}
	}

	if parent != nil && !parent.IsEmpty() && level.Parent() != parent {
		if _, err := parent.SetChildLevel(level); err != nil {
			events.Mirror.Error(err)
		}
	}
	return level
}

// sameItems compares as sets; declaration order is not tracked.
func sameItems(a, b []string) bool {
	return len(a) == len(b) && subset(a, b)
}

// subset reports whether every name in have is still in want.
func subset(have, want []string) bool {
	set := make(map[string]bool, len(want))
	for _, w := range want {
		set[w] = true
	}
	for _, h := range have {
		if !set[h] {
			return false
		}
	}
	return true
}
