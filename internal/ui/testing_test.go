package ui

import (
	"testing"

	"github.com/atomicstack/vislevel/internal/layout"
	"github.com/atomicstack/vislevel/internal/vlevel"
)

// newLayoutHarness builds the default layout (home → live, me) and wraps a
// model over it.
func newLayoutHarness(t *testing.T, opts Options) (*Harness, *vlevel.Registry[string]) {
	t.Helper()
	lay := layout.Default()
	feed := NewFeed(0)
	t.Cleanup(feed.Close)
	reg := vlevel.NewRegistry(lay.Definitions(feed.Hook))
	if _, err := lay.Build(reg); err != nil {
		t.Fatalf("build layout: %v", err)
	}
	opts.Registry = reg
	opts.Root = lay.Root
	opts.Feed = feed
	return NewHarness(NewModel(opts)), reg
}

func mustLevel(t *testing.T, reg *vlevel.Registry[string], key string) *vlevel.Level {
	t.Helper()
	level, ok := reg.Lookup(key)
	if !ok {
		t.Fatalf("expected level %s to exist", key)
	}
	return level
}

func selectedID(h *Harness) string {
	row, ok := h.Model().list.Selected()
	if !ok {
		return ""
	}
	return row.ID()
}

func rowIDs(h *Harness) []string {
	rows := h.Model().list.Rows
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
	}
	return ids
}
