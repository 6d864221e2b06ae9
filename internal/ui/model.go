package ui

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/atomicstack/vislevel/internal/backend"
	"github.com/atomicstack/vislevel/internal/mirror"
	"github.com/atomicstack/vislevel/internal/printer"
	"github.com/atomicstack/vislevel/internal/theme"
	"github.com/atomicstack/vislevel/internal/ui/command"
	"github.com/atomicstack/vislevel/internal/ui/state"
	"github.com/atomicstack/vislevel/internal/vlevel"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

var errLevelGone = errors.New("level no longer exists")

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model. Registry and Root are required; Watcher and
// Mirror are set together when the tree follows tmux.
type Options struct {
	Registry   *vlevel.Registry[string]
	Root       string
	Feed       *Feed
	Watcher    *backend.Watcher
	Mirror     *mirror.Mirror
	Width      int
	Height     int
	ShowFooter bool
}

// Model implements the Bubble Tea model for the level inspector.
type Model struct {
	list           *state.List
	filtering      bool
	errMsg         string
	infoMsg        string
	infoExpire     time.Time
	width          int
	height         int
	fixedWidth     bool
	fixedHeight    bool
	showFooter     bool
	backend        *backend.Watcher
	backendLastErr string

	handlers map[reflect.Type]msgHandler

	keys     keyMap
	bus      *command.Bus
	registry *vlevel.Registry[string]
	root     string
	feed     *Feed
	mirror   *mirror.Mirror
}

// NewModel initialises the UI state from the registry's current tree.
func NewModel(opts Options) *Model {
	feed := opts.Feed
	if feed == nil {
		feed = NewFeed(defaultFeedLimit)
	}
	m := &Model{
		list:       state.NewList(nil),
		showFooter: opts.ShowFooter,
		backend:    opts.Watcher,
		keys:       defaultKeyMap(),
		bus:        command.New(),
		registry:   opts.Registry,
		root:       opts.Root,
		feed:       feed,
		mirror:     opts.Mirror,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.registerHandlers()
	m.refresh()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(command.Result{}):    m.handleCommandResult,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// refresh rebuilds the rows from the registry, keeping the cursor on the
// same row when it survives.
func (m *Model) refresh() {
	if m.registry == nil {
		return
	}
	m.list.UpdateRows(state.Rows(printer.Capture(m.registry, m.root)))
	m.syncViewport()
}

func (m *Model) lookup(key string) (*vlevel.Level, error) {
	level, ok := m.registry.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errLevelGone, key)
	}
	return level, nil
}

// Feed returns the event feed shown under the tree.
func (m *Model) Feed() *Feed {
	return m.feed
}
