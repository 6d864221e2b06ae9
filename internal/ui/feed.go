package ui

import (
	"sync"
	"time"

	"github.com/atomicstack/vislevel/internal/vlevel"
)

const defaultFeedLimit = 200

// FeedEntry is one item visibility transition.
type FeedEntry struct {
	At      time.Time
	Path    string
	Visible bool
}

// Feed keeps the most recent item transitions. It is safe for concurrent
// use.
type Feed struct {
	mu      sync.Mutex
	limit   int
	entries []FeedEntry
	now     func() time.Time
	scope   vlevel.Scope
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return &Feed{limit: limit, now: time.Now}
}

// Hook follows item. Install it as the registry's item hook.
func (f *Feed) Hook(item *vlevel.Item) {
	f.scope.Subscribe(item, f.record)
}

// Close stops following every item.
func (f *Feed) Close() {
	f.scope.Close()
}

func (f *Feed) record(item *vlevel.Item, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, FeedEntry{At: f.now(), Path: item.Path(), Visible: visible})
	if over := len(f.entries) - f.limit; over > 0 {
		f.entries = append(f.entries[:0], f.entries[over:]...)
	}
}

// Recent returns up to n entries, oldest first.
func (f *Feed) Recent(n int) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || n > len(f.entries) {
		n = len(f.entries)
	}
	return append([]FeedEntry(nil), f.entries[len(f.entries)-n:]...)
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
