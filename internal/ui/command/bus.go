// Package command runs level tree operations on the Bubble Tea update loop
// and reports their outcome as messages.
package command

import (
	"github.com/atomicstack/vislevel/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Action mutates the level tree.
type Action func() error

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler Action
}

// Result is delivered to the model once a request has run.
type Result struct {
	ID    string
	Label string
	Err   error
}

// Bus coordinates the execution of actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute runs the action on the calling goroutine, which must be the one
// that owns the level tree, and returns a command that only delivers the
// Result. Requests without a handler produce no command.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	if req.Handler == nil {
		events.Command.Skip(req.ID, req.Label)
		return nil
	}
	err := req.Handler()
	events.Command.Result(req.ID, req.Label, err)
	res := Result{ID: req.ID, Label: req.Label, Err: err}
	return func() tea.Msg { return res }
}
