// Package vlevel tracks which screen, tab or sub-view of an application is
// currently showing.
//
// A Registry hands out Levels by key, constructing each one exactly once. A
// Level owns a fixed set of named Items and at most one current item. An item
// is visible exactly when its level is visible and it is the level's current
// item. Every Item may carry a nested child Level; when the item's visibility
// changes the child's level visibility follows, so toggling one level cascades
// down the whole tree.
//
// Observers register with AddCallback or Subscribe on an Item and are told
// about every externally observable transition. Callbacks run without any
// engine lock held and may call back into the engine: a change made from
// inside a callback is folded into the notification already in progress, and
// every observer ends up having seen the item's final state.
//
// All entry points are meant to be driven from one goroutine, the one owning
// the UI. The engine guards its state with mutexes so that misuse from other
// goroutines fails safe, but cross-goroutine interleavings carry no ordering
// guarantees.
package vlevel
