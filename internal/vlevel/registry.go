package vlevel

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/atomicstack/vislevel/internal/logging"
	"github.com/atomicstack/vislevel/internal/logging/events"
)

// Definition supplies the construction hooks for a level.
type Definition interface {
	// OnCreate runs once, right after the level is constructed and before any
	// caller can see it. It usually declares the level's items.
	OnCreate(level *Level) error
	// OnCreateItem runs once per item, the first time it is looked up.
	OnCreateItem(item *Item)
}

// DefinitionFuncs adapts plain functions to Definition. Nil fields are skipped.
type DefinitionFuncs struct {
	Create     func(level *Level) error
	CreateItem func(item *Item)
}

func (d DefinitionFuncs) OnCreate(level *Level) error {
	if d.Create == nil {
		return nil
	}
	return d.Create(level)
}

func (d DefinitionFuncs) OnCreateItem(item *Item) {
	if d.CreateItem != nil {
		d.CreateItem(item)
	}
}

// Items returns a Definition that declares names and nothing else.
func Items(names ...string) Definition {
	return DefinitionFuncs{Create: func(level *Level) error {
		return level.DeclareItems(names...)
	}}
}

// Registry hands out one Level per key.
type Registry[K comparable] struct {
	define func(K) Definition
	group  singleflight.Group

	mu     sync.RWMutex
	levels map[K]*Level
}

// NewRegistry returns an empty registry. define is consulted once per level
// construction; it may be nil, and may return nil, for levels whose items are
// declared by the caller.
func NewRegistry[K comparable](define func(K) Definition) *Registry[K] {
	return &Registry[K]{
		define: define,
		levels: make(map[K]*Level),
	}
}

// Get returns the level for key, constructing it on first use. Concurrent
// callers for the same key share a single construction and never observe the
// level before its OnCreate hook returned. OnCreate may Get other keys, but
// must not Get its own key: that call never returns.
func (r *Registry[K]) Get(key K) *Level {
	for {
		if level, ok := r.Lookup(key); ok {
			return level
		}
		v, _, _ := r.group.Do(flightKey(key), func() (interface{}, error) {
			if level, ok := r.Lookup(key); ok {
				return level, nil
			}
			level := r.construct(key)
			r.mu.Lock()
			r.levels[key] = level
			r.mu.Unlock()
			return level, nil
		})
		// a removal racing the construction, or a key whose flight name
		// collides with another key, sends us around again
		if current, ok := r.Lookup(key); ok && current == v.(*Level) {
			return current
		}
	}
}

func (r *Registry[K]) construct(key K) *Level {
	var def Definition
	if r.define != nil {
		def = r.define(key)
	}
	level := newLevel(fmt.Sprint(key), def)
	events.Registry.Create(level.name, level.id)
	if def == nil {
		return level
	}
	if err := def.OnCreate(level); err != nil {
		events.Registry.CreateError(level.name, err)
		logging.Error(fmt.Errorf("create level %s: %w", level.name, err))
	}
	return level
}

// Lookup returns the level for key without creating it.
func (r *Registry[K]) Lookup(key K) (*Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	level, ok := r.levels[key]
	return level, ok
}

// Remove drops the level for key and makes it permanently inert. It reports
// whether a level was present.
func (r *Registry[K]) Remove(key K) bool {
	r.mu.Lock()
	level, ok := r.levels[key]
	delete(r.levels, key)
	r.mu.Unlock()
	if !ok {
		return false
	}
	level.remove()
	events.Registry.Remove(level.name, level.id)
	return true
}

// Clear removes every level.
func (r *Registry[K]) Clear() {
	r.mu.Lock()
	levels := r.levels
	r.levels = make(map[K]*Level)
	r.mu.Unlock()
	for _, level := range levels {
		level.remove()
		events.Registry.Remove(level.name, level.id)
	}
	events.Registry.Clear(len(levels))
}

// Keys returns the keys of every live level in no particular order.
func (r *Registry[K]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.levels))
	for key := range r.levels {
		keys = append(keys, key)
	}
	return keys
}

func (r *Registry[K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.levels)
}

// Nest nests the level for key under item and returns it.
func (r *Registry[K]) Nest(item *Item, key K) (*Level, error) {
	level := r.Get(key)
	if _, err := item.SetChildLevel(level); err != nil {
		return nil, err
	}
	return level, nil
}

func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%T\x00%v", key, key)
}
