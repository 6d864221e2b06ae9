// Package ui contains the Bubble Tea program that inspects a level tree.
// The Model type focuses on message orchestration, while dedicated helpers
// own navigation, filter input, rendering and the event feed.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, resizes, command results, backend updates).
//   - Key handling (navigation.go) turns the row under the cursor into a
//     level operation: select the item, toggle or reset its level, or remove
//     the level from the registry.
//   - Filter editing (input.go) narrows the rows with a fuzzy match while the
//     filter prompt is open.
//
// State ownership:
//   - The rows, cursor, filter and viewport live in internal/ui/state.List.
//     Rows are rebuilt from a printer snapshot of the registry after anything
//     that may have changed the tree.
//   - Operations run through internal/ui/command on the update goroutine, the
//     same one that applies backend events, and report back through a tea.Cmd
//     carrying a command.Result.
//   - The Feed records item visibility transitions. It is installed as the
//     registry's item hook before any level exists, so every item is followed
//     from the moment it is created.
//
// Backend interactions:
//   - When the tree mirrors tmux, a backend.Watcher streams snapshots; Update
//     waits for those events and hands them to the mirror, then refreshes the
//     rows.
package ui
