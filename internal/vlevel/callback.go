package vlevel

import (
	"reflect"
	"sync"
	"weak"
)

// Callback observes visibility transitions of one or more items.
type Callback interface {
	OnItemVisibility(item *Item, visible bool)
}

// CallbackFunc adapts a plain function to Callback. Function values are not
// comparable, so every registration of a CallbackFunc is distinct.
type CallbackFunc func(item *Item, visible bool)

func (f CallbackFunc) OnItemVisibility(item *Item, visible bool) { f(item, visible) }

// expirer is implemented by callbacks whose owner may disappear underneath
// them. Expired callbacks are pruned instead of invoked.
type expirer interface {
	expired() bool
}

type weakCallback[T any] struct {
	owner weak.Pointer[T]
	fn    func(owner *T, item *Item, visible bool)
}

// WeakCallback returns a Callback that does not keep owner alive. Once owner
// has been collected the callback is skipped and dropped from every item it
// was registered on. fn receives the owner on each call and must not capture
// it, or the owner can never be collected.
func WeakCallback[T any](owner *T, fn func(owner *T, item *Item, visible bool)) Callback {
	return &weakCallback[T]{owner: weak.Make(owner), fn: fn}
}

func (w *weakCallback[T]) OnItemVisibility(item *Item, visible bool) {
	if owner := w.owner.Value(); owner != nil {
		w.fn(owner, item, visible)
	}
}

func (w *weakCallback[T]) expired() bool {
	return w.owner.Value() == nil
}

func expired(cb Callback) bool {
	e, ok := cb.(expirer)
	return ok && e.expired()
}

// sameCallback reports whether a and b are the same registration target.
// Callbacks of non-comparable dynamic types never match.
func sameCallback(a, b Callback) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Subscription is the handle returned when registering an observer.
type Subscription struct {
	once   sync.Once
	cancel func()
	live   func() bool
}

// Active reports whether the observer is still registered. It turns false
// after Cancel and once the item or level it observes has been discarded.
func (s *Subscription) Active() bool {
	return s != nil && s.live != nil && s.live()
}

// Cancel unregisters the observer. It is safe to call more than once and on
// a nil subscription.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

const minScopePrune = 16

// Scope collects subscriptions owned by one consumer so they can all be
// cancelled together when the consumer goes away. Subscriptions whose item
// or level was reset or removed are dropped as the scope grows.
type Scope struct {
	mu      sync.Mutex
	subs    []*Subscription
	pruneAt int
	closed  bool
}

// Track adds sub to the scope and returns it. Subscriptions tracked after
// Close are cancelled immediately.
func (s *Scope) Track(sub *Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return sub
	}
	if len(s.subs) >= s.pruneAt {
		s.pruneLocked()
		s.pruneAt = max(2*len(s.subs), minScopePrune)
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// pruneLocked forgets subscriptions that no longer observe anything, so the
// scope stops pinning discarded items and their levels.
func (s *Scope) pruneLocked() {
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.Active() {
			kept = append(kept, sub)
		}
	}
	clear(s.subs[len(kept):])
	s.subs = kept
}

// Subscribe registers fn on item and tracks the subscription.
func (s *Scope) Subscribe(item *Item, fn func(*Item, bool)) *Subscription {
	return s.Track(item.Subscribe(fn))
}

// Len returns the number of subscriptions that are still active.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.subs)
}

// Close cancels every tracked subscription.
func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}
