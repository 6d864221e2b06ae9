package vlevel

import (
	"sync"

	"github.com/atomicstack/vislevel/internal/logging/events"
)

// emptyItem is handed out by levels that are not active. All of its methods
// are inert.
var emptyItem = &Item{}

type registration struct {
	cb        Callback
	delivered bool
	removed   bool
}

// Item is one named selectable entry of a Level.
type Item struct {
	name  string
	level *Level

	mu        sync.Mutex
	visible   bool
	notifying bool
	resync    bool
	detached  bool
	child     *Level
	callbacks []*registration
}

func newItem(name string, level *Level) *Item {
	return &Item{name: name, level: level}
}

func (it *Item) Name() string {
	if it == nil {
		return ""
	}
	return it.name
}

// Level returns the owning level, or nil for the empty item.
func (it *Item) Level() *Level {
	if it == nil {
		return nil
	}
	return it.level
}

// IsEmpty reports whether it is the placeholder returned by inactive levels.
func (it *Item) IsEmpty() bool {
	return it == nil || it.level == nil
}

// IsVisible returns the item's last notified visibility.
func (it *Item) IsVisible() bool {
	if it.IsEmpty() {
		return false
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.visible
}

// ChildLevel returns the level nested under the item, if any.
func (it *Item) ChildLevel() *Level {
	if it.IsEmpty() {
		return nil
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.child
}

// Path renders the item as "level/item".
func (it *Item) Path() string {
	if it.IsEmpty() {
		return ""
	}
	return it.level.name + "/" + it.name
}

// AddCallback registers cb. Registering a callback that is already present
// returns a subscription for the existing registration. When the item is
// visible the callback is told so right away.
func (it *Item) AddCallback(cb Callback) *Subscription {
	return it.AddCallbackAssuming(cb, false)
}

// AddCallbackAssuming registers cb for a caller that already believes the
// item's visibility is assumed. cb is told right away only when that belief
// is out of date.
func (it *Item) AddCallbackAssuming(cb Callback, assumed bool) *Subscription {
	if cb == nil || it.IsEmpty() {
		return &Subscription{}
	}
	it.mu.Lock()
	if it.detached {
		it.mu.Unlock()
		return &Subscription{}
	}
	for _, reg := range it.callbacks {
		if sameCallback(reg.cb, cb) {
			it.mu.Unlock()
			return it.subscriptionFor(reg)
		}
	}
	reg := &registration{cb: cb, delivered: assumed}
	it.callbacks = append(it.callbacks, reg)
	value := it.visible
	deliver := false
	if value != assumed {
		if it.notifying {
			// the running loop picks the new registration up on its next round
			it.resync = true
		} else {
			reg.delivered = value
			deliver = true
		}
	}
	it.mu.Unlock()
	if deliver {
		cb.OnItemVisibility(it, value)
	}
	return it.subscriptionFor(reg)
}

// Subscribe registers fn as a callback.
func (it *Item) Subscribe(fn func(item *Item, visible bool)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	return it.AddCallback(CallbackFunc(fn))
}

// RemoveCallback unregisters cb. Only comparable callbacks can be found this
// way; use the Subscription for everything else.
func (it *Item) RemoveCallback(cb Callback) {
	if cb == nil || it.IsEmpty() {
		return
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	for _, reg := range it.callbacks {
		if sameCallback(reg.cb, cb) {
			it.dropLocked(reg)
			return
		}
	}
}

// CallbackCount returns the number of live registrations.
func (it *Item) CallbackCount() int {
	if it.IsEmpty() {
		return 0
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	n := 0
	for _, reg := range it.callbacks {
		if !expired(reg.cb) {
			n++
		}
	}
	return n
}

func (it *Item) subscriptionFor(reg *registration) *Subscription {
	return &Subscription{
		cancel: func() {
			it.mu.Lock()
			it.dropLocked(reg)
			it.mu.Unlock()
		},
		live: func() bool {
			it.mu.Lock()
			defer it.mu.Unlock()
			return !reg.removed
		},
	}
}

func (it *Item) dropLocked(reg *registration) {
	reg.removed = true
	for i, candidate := range it.callbacks {
		if candidate == reg {
			it.callbacks = append(it.callbacks[:i:i], it.callbacks[i+1:]...)
			return
		}
	}
}

// snapshotLocked copies the live registrations, pruning expired weak ones.
func (it *Item) snapshotLocked() []*registration {
	live := it.callbacks[:0:0]
	kept := it.callbacks[:0]
	for _, reg := range it.callbacks {
		if expired(reg.cb) {
			reg.removed = true
			continue
		}
		kept = append(kept, reg)
		live = append(live, reg)
	}
	for i := len(kept); i < len(it.callbacks); i++ {
		it.callbacks[i] = nil
	}
	it.callbacks = kept
	return live
}

// SetChildLevel nests child under the item, replacing and returning the
// previous child. The child is detached from any other item first and then
// synced to this item's visibility. A nil child only detaches.
func (it *Item) SetChildLevel(child *Level) (*Level, error) {
	if it.IsEmpty() {
		return nil, nil
	}
	if child != nil && it.level.within(child) {
		return nil, &CyclicNestingError{Parent: it.Path(), Child: child.name}
	}
	it.mu.Lock()
	if it.detached {
		it.mu.Unlock()
		return nil, nil
	}
	previous := it.child
	it.child = child
	visible := it.visible
	it.mu.Unlock()

	if previous == child {
		if child != nil {
			child.SetVisible(visible)
		}
		return nil, nil
	}
	if previous != nil {
		previous.detachFrom(it)
	}
	if child != nil {
		if other := child.attachTo(it); other != nil && other != it {
			other.clearChild(child)
		}
		events.Item.Child(it.level.name, it.name, child.name)
		child.SetVisible(visible)
	} else {
		events.Item.Child(it.level.name, it.name, "")
	}
	return previous, nil
}

// clearChild forgets child without touching the child's own state.
func (it *Item) clearChild(child *Level) {
	it.mu.Lock()
	if it.child == child {
		it.child = nil
	}
	it.mu.Unlock()
}

// discard drops the item from its level: callbacks are released and the
// nested child, if any, is detached and hidden.
func (it *Item) discard() {
	it.mu.Lock()
	it.detached = true
	for _, reg := range it.callbacks {
		reg.removed = true
	}
	it.callbacks = nil
	child := it.child
	it.child = nil
	it.mu.Unlock()
	if child != nil {
		child.detachFrom(it)
		child.SetVisible(false)
	}
}

// notifyVisibility runs the delivery loop for a new effective visibility.
// A call arriving while the loop is running only records the new value; the
// running loop notices and starts another round from a fresh snapshot, so
// every callback and the child level end on the final value.
func (it *Item) notifyVisibility(visible bool) {
	if it.IsEmpty() {
		return
	}
	it.mu.Lock()
	if it.visible == visible {
		it.mu.Unlock()
		return
	}
	it.visible = visible
	if it.notifying {
		it.resync = true
		it.mu.Unlock()
		events.Item.Resync(it.level.name, it.name, visible)
		return
	}
	it.notifying = true

	finished := false
	defer func() {
		if !finished {
			it.mu.Lock()
			it.notifying = false
			it.resync = false
			it.mu.Unlock()
		}
	}()

	for round := 1; ; round++ {
		it.resync = false
		pending := it.snapshotLocked()
		value := it.visible
		it.mu.Unlock()

		events.Item.Notify(it.level.name, it.name, value, round)
		if !it.deliver(pending) {
			it.mu.Lock()
			child, current := it.child, it.visible
			it.mu.Unlock()
			if child != nil {
				child.SetVisible(current)
			}
		}

		it.mu.Lock()
		if !it.resync {
			it.notifying = false
			finished = true
			it.mu.Unlock()
			return
		}
	}
}

// deliver hands the current value to every registration that has not seen
// it yet. It reports true when a reentrant change interrupted the round.
func (it *Item) deliver(pending []*registration) bool {
	for _, reg := range pending {
		it.mu.Lock()
		value := it.visible
		if reg.removed || reg.delivered == value {
			it.mu.Unlock()
			continue
		}
		reg.delivered = value
		it.mu.Unlock()

		reg.cb.OnItemVisibility(it, value)

		it.mu.Lock()
		interrupted := it.resync
		it.mu.Unlock()
		if interrupted {
			return true
		}
	}
	return false
}
