package mirror

import (
	"errors"
	"sort"
	"testing"

	"github.com/atomicstack/vislevel/internal/backend"
	"github.com/atomicstack/vislevel/internal/tmux"
	"github.com/atomicstack/vislevel/internal/vlevel"
)

func sampleTree() tmux.Tree {
	return tmux.Tree{
		Current:  "dev",
		Attached: true,
		Sessions: []tmux.Session{
			{Name: "dev", Attached: true, Windows: []tmux.Window{
				{ID: "@1", Index: 0, Panes: []tmux.Pane{{ID: "%1", Active: true}}},
				{ID: "@2", Index: 1, Active: true, Panes: []tmux.Pane{{ID: "%2"}, {ID: "%3", Active: true}}},
			}},
			{Name: "work", Windows: []tmux.Window{
				{ID: "@5", Active: true, Panes: []tmux.Pane{{ID: "%7", Active: true}}},
			}},
		},
	}
}

func mustLevel(t *testing.T, reg *vlevel.Registry[string], key string) *vlevel.Level {
	t.Helper()
	level, ok := reg.Lookup(key)
	if !ok {
		t.Fatalf("expected level %s to exist", key)
	}
	return level
}

func mustItem(t *testing.T, level *vlevel.Level, name string) *vlevel.Item {
	t.Helper()
	item, err := level.Item(name)
	if err != nil {
		t.Fatalf("item %s: %v", name, err)
	}
	return item
}

func TestApplyBuildsTree(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)

	res := m.Apply(sampleTree())
	sort.Strings(res.Created)
	want := []string{"server", "session:dev", "session:work", "window:dev:@1", "window:dev:@2", "window:work:@5"}
	if len(res.Created) != len(want) {
		t.Fatalf("expected %v created, got %v", want, res.Created)
	}
	for i := range want {
		if res.Created[i] != want[i] {
			t.Fatalf("expected %v created, got %v", want, res.Created)
		}
	}

	server := mustLevel(t, reg, ServerLevel)
	if !server.IsVisible() || server.CurrentItem().Name() != "dev" {
		t.Fatalf("expected visible server showing dev, got visible=%v current=%q", server.IsVisible(), server.CurrentItem().Name())
	}
	dev := mustLevel(t, reg, SessionLevel("dev"))
	if !dev.IsVisible() || dev.CurrentItem().Name() != "@2" {
		t.Fatalf("expected dev showing @2")
	}
	active := mustLevel(t, reg, WindowLevel("dev", "@2"))
	if !active.CurrentItem().IsVisible() || active.CurrentItem().Name() != "%3" {
		t.Fatalf("expected pane %%3 visible")
	}
	if mustLevel(t, reg, WindowLevel("dev", "@1")).IsVisible() {
		t.Fatalf("inactive window level must be hidden")
	}
	if mustLevel(t, reg, SessionLevel("work")).IsVisible() {
		t.Fatalf("non-current session must be hidden")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)
	m.Apply(sampleTree())

	if res := m.Apply(sampleTree()); res.Changed() {
		t.Fatalf("expected no changes on identical tree, got %+v", res)
	}
}

func TestApplyFollowsSelectionChanges(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)
	m.Apply(sampleTree())

	var seen []bool
	pane := mustItem(t, mustLevel(t, reg, WindowLevel("dev", "@2")), "%3")
	pane.Subscribe(func(_ *vlevel.Item, visible bool) { seen = append(seen, visible) })

	tree := sampleTree()
	tree.Current = "work"
	res := m.Apply(tree)
	if res.Selections != 1 {
		t.Fatalf("expected one selection change, got %d", res.Selections)
	}
	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Fatalf("expected pane to be told visible then hidden, got %v", seen)
	}
	if !mustItem(t, mustLevel(t, reg, WindowLevel("work", "@5")), "%7").IsVisible() {
		t.Fatalf("expected work pane to become visible")
	}
}

func TestApplyShrinkRebuildsAndRemoves(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)
	m.Apply(sampleTree())
	oldWork := mustLevel(t, reg, SessionLevel("work"))

	tree := sampleTree()
	tree.Sessions = tree.Sessions[:1]
	tree.Sessions[0].Windows = tree.Sessions[0].Windows[1:]
	res := m.Apply(tree)

	sort.Strings(res.Removed)
	if len(res.Removed) != 3 || res.Removed[0] != "session:work" || res.Removed[1] != "window:dev:@1" || res.Removed[2] != "window:work:@5" {
		t.Fatalf("unexpected removals %v", res.Removed)
	}
	if !oldWork.IsRemoved() {
		t.Fatalf("expected old work level to be removed")
	}
	server := mustLevel(t, reg, ServerLevel)
	if names := server.ItemNames(); len(names) != 1 || names[0] != "dev" {
		t.Fatalf("expected server rebuilt with dev only, got %v", names)
	}
	if !server.IsVisible() {
		t.Fatalf("expected server visible after rebuild")
	}
	dev := mustLevel(t, reg, SessionLevel("dev"))
	if dev.Parent() != mustItem(t, server, "dev") {
		t.Fatalf("expected dev level re-nested under the rebuilt server item")
	}
	if !dev.IsVisible() || !mustItem(t, mustLevel(t, reg, WindowLevel("dev", "@2")), "%3").IsVisible() {
		t.Fatalf("expected dev subtree visible again")
	}
}

func TestApplyHidesWhenDetached(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)
	m.Apply(sampleTree())

	tree := sampleTree()
	tree.Attached = false
	m.Apply(tree)
	if mustLevel(t, reg, ServerLevel).IsVisible() {
		t.Fatalf("expected server hidden without clients")
	}
	if mustLevel(t, reg, WindowLevel("dev", "@2")).IsVisible() {
		t.Fatalf("expected cascade to hide window levels")
	}
}

func TestHandleSkipsErrors(t *testing.T) {
	reg := vlevel.NewRegistry[string](nil)
	m := New(reg)
	if res := m.Handle(backend.Event{Err: errors.New("no server")}); res.Changed() {
		t.Fatalf("expected error event to be ignored")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected no levels after error")
	}
	if res := m.Handle(backend.Event{Tree: sampleTree()}); !res.Changed() {
		t.Fatalf("expected tree event to build levels")
	}
}
