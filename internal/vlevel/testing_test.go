package vlevel

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder collects "level/item:visible" lines in delivery order.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) OnItemVisibility(item *Item, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf("%s:%t", item.Path(), visible))
}

func (r *recorder) add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.lines
	r.lines = nil
	return out
}

func (r *recorder) count(line string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if l == line {
			n++
		}
	}
	return n
}

// fixture builds a registry where every key declares the given items.
func fixture(t *testing.T, items map[string][]string) *Registry[string] {
	t.Helper()
	return NewRegistry[string](func(key string) Definition {
		names, ok := items[key]
		if !ok {
			return nil
		}
		return Items(names...)
	})
}

func watch(t *testing.T, rec *recorder, level *Level, names ...string) {
	t.Helper()
	for _, name := range names {
		item, err := level.Item(name)
		require.NoError(t, err)
		item.AddCallback(rec)
	}
}

func mustItem(t *testing.T, level *Level, name string) *Item {
	t.Helper()
	item, err := level.Item(name)
	require.NoError(t, err)
	return item
}
