package vlevel

import (
	"sync"

	"github.com/google/uuid"

	"github.com/atomicstack/vislevel/internal/logging/events"
)

// State is the lifecycle stage of a Level.
type State int

const (
	// StateUninitialized levels have no declared items and ignore visibility.
	StateUninitialized State = iota
	// StateActive levels have at least one declared item.
	StateActive
	// StateRemoved levels were dropped from their registry. Terminal.
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

type levelObserver struct {
	fn      func(*Level, bool)
	removed bool
}

// Level is a visibility scope holding named items, at most one of which is
// current.
type Level struct {
	name string
	id   string
	def  Definition

	mu        sync.Mutex
	state     State
	visible   bool
	items     map[string]*Item
	order     []string
	current   *Item
	parent    *Item
	observers []*levelObserver
}

func newLevel(name string, def Definition) *Level {
	return &Level{
		name: name,
		id:   uuid.NewString(),
		def:  def,
	}
}

// Name returns the registry key the level was created for, formatted as text.
func (l *Level) Name() string { return l.name }

// ID identifies this level instance. A level recreated under the same key
// gets a new ID.
func (l *Level) ID() string { return l.id }

func (l *Level) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Level) IsRemoved() bool { return l.State() == StateRemoved }

// IsVisible reports the level's own visibility flag.
func (l *Level) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// Parent returns the item the level is nested under, or nil.
func (l *Level) Parent() *Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.parent
}

// ItemNames returns the declared item names in declaration order.
func (l *Level) ItemNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

// CurrentItem returns the selected item, or the empty item when nothing is
// selected.
func (l *Level) CurrentItem() *Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return emptyItem
	}
	return l.current
}

// DeclareItems registers item names. Every name is validated before any is
// added; duplicates are ignored. The first successful declaration activates
// the level, and a level nested under an item picks up that item's
// visibility at that point.
func (l *Level) DeclareItems(names ...string) error {
	for _, name := range names {
		if !validName(name) {
			return &InvalidNameError{Level: l.name, Name: name}
		}
	}
	l.mu.Lock()
	if l.state == StateRemoved {
		l.mu.Unlock()
		return nil
	}
	if l.items == nil {
		l.items = make(map[string]*Item, len(names))
	}
	added := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := l.items[name]; ok {
			continue
		}
		l.items[name] = nil
		l.order = append(l.order, name)
		added = append(added, name)
	}
	activated := l.state == StateUninitialized && len(l.items) > 0
	if activated {
		l.state = StateActive
	}
	parent := l.parent
	l.mu.Unlock()

	if len(added) > 0 {
		events.Level.Declare(l.name, l.id, added)
	}
	if activated && parent != nil {
		l.SetVisible(parent.IsVisible())
	}
	return nil
}

// Item returns the named item, creating it on first use. Inactive and
// removed levels return the empty item and no error.
func (l *Level) Item(name string) (*Item, error) {
	if !validName(name) {
		return nil, &InvalidNameError{Level: l.name, Name: name}
	}
	l.mu.Lock()
	if l.state != StateActive {
		l.mu.Unlock()
		return emptyItem, nil
	}
	item, ok := l.items[name]
	if !ok {
		err := &UnknownItemError{Level: l.name, Name: name, Suggestion: suggest(name, l.order)}
		l.mu.Unlock()
		return nil, err
	}
	if item != nil {
		l.mu.Unlock()
		return item, nil
	}
	item = newItem(name, l)
	l.items[name] = item
	l.mu.Unlock()

	events.Item.Create(l.name, name)
	if l.def != nil {
		l.def.OnCreateItem(item)
	}
	return item, nil
}

// LookupItem returns the named item only if it has already been created.
// Unlike Item it never creates items or runs hooks.
func (l *Level) LookupItem(name string) (*Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.items[name]
	return item, item != nil
}

// SetVisible changes the level's visibility and re-syncs its current item.
// It does nothing unless the level is active.
func (l *Level) SetVisible(visible bool) {
	l.mu.Lock()
	if l.state != StateActive || l.visible == visible {
		l.mu.Unlock()
		return
	}
	l.visible = visible
	current := l.current
	observers := append([]*levelObserver(nil), l.observers...)
	l.mu.Unlock()

	events.Level.Visible(l.name, l.id, visible)
	l.notifyObservers(observers, visible)
	if current != nil {
		l.sync(current)
	}
}

// SetCurrentItem selects name. The previous item is told it is hidden,
// including its whole nested subtree, before the new item is told it is
// shown. Selecting the current item again is a no-op.
func (l *Level) SetCurrentItem(name string) error {
	item, err := l.Item(name)
	if err != nil {
		return err
	}
	if item.IsEmpty() {
		return nil
	}
	l.mu.Lock()
	if l.state != StateActive || l.current == item || l.items[name] != item {
		l.mu.Unlock()
		return nil
	}
	previous := l.current
	l.current = item
	visible := l.visible
	l.mu.Unlock()

	events.Level.Current(l.name, l.id, previous.Name(), name, visible)
	if previous != nil {
		l.sync(previous)
	}
	l.sync(item)
	return nil
}

// Reset hides the current item, discards every item and returns the level to
// the uninitialized state. Items must be declared again before use.
func (l *Level) Reset() {
	l.reset(StateUninitialized)
}

func (l *Level) reset(next State) {
	l.mu.Lock()
	if l.state == StateRemoved {
		l.mu.Unlock()
		return
	}
	l.state = next
	wasVisible := l.visible
	l.visible = false
	previous := l.current
	l.current = nil
	discarded := make([]*Item, 0, len(l.items))
	for _, name := range l.order {
		if item := l.items[name]; item != nil {
			discarded = append(discarded, item)
		}
	}
	l.items = nil
	l.order = nil
	var observers []*levelObserver
	if wasVisible {
		observers = append(observers, l.observers...)
	}
	l.mu.Unlock()

	events.Level.Reset(l.name, l.id, len(discarded))
	l.notifyObservers(observers, false)
	if previous != nil {
		l.sync(previous)
	}
	for _, item := range discarded {
		item.discard()
	}
}

// remove makes the level permanently inert and detaches it from its parent.
func (l *Level) remove() {
	l.reset(StateRemoved)
	l.mu.Lock()
	parent := l.parent
	l.parent = nil
	for _, o := range l.observers {
		o.removed = true
	}
	l.observers = nil
	l.mu.Unlock()
	if parent != nil {
		parent.clearChild(l)
	}
}

// OnVisibilityChanged registers fn to hear about the level's own visibility
// flag. Observers run before the current item is re-synced.
func (l *Level) OnVisibilityChanged(fn func(level *Level, visible bool)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	o := &levelObserver{fn: fn}
	l.mu.Lock()
	if l.state == StateRemoved {
		l.mu.Unlock()
		return &Subscription{}
	}
	l.observers = append(l.observers, o)
	l.mu.Unlock()
	return &Subscription{
		cancel: func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			o.removed = true
			for i, candidate := range l.observers {
				if candidate == o {
					l.observers = append(l.observers[:i:i], l.observers[i+1:]...)
					return
				}
			}
		},
		live: func() bool {
			l.mu.Lock()
			defer l.mu.Unlock()
			return !o.removed
		},
	}
}

// notifyObservers stops as soon as an observer flips the level again; the
// nested SetVisible has already told everyone the newer value. Observers
// cancelled along the way are skipped.
func (l *Level) notifyObservers(observers []*levelObserver, visible bool) {
	for _, o := range observers {
		l.mu.Lock()
		superseded := l.visible != visible
		removed := o.removed
		l.mu.Unlock()
		if superseded {
			return
		}
		if removed {
			continue
		}
		o.fn(l, visible)
	}
}

// sync tells item its effective visibility as of now.
func (l *Level) sync(item *Item) {
	item.notifyVisibility(l.effective(item))
}

func (l *Level) effective(item *Item) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateActive && l.visible && l.current == item
}

// attachTo records item as the parent and returns the previous parent.
func (l *Level) attachTo(item *Item) *Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	previous := l.parent
	l.parent = item
	return previous
}

func (l *Level) detachFrom(item *Item) {
	l.mu.Lock()
	if l.parent == item {
		l.parent = nil
	}
	l.mu.Unlock()
}

// within reports whether l is candidate or nested anywhere beneath it.
func (l *Level) within(candidate *Level) bool {
	seen := make(map[*Level]bool)
	for cur := l; cur != nil && !seen[cur]; {
		if cur == candidate {
			return true
		}
		seen[cur] = true
		parent := cur.Parent()
		if parent.IsEmpty() {
			return false
		}
		cur = parent.level
	}
	return false
}
