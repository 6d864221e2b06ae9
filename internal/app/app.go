// Package app wires a level tree source to one of the front ends: a one-shot
// dump, a plain transition follower, or the interactive inspector.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomicstack/vislevel/internal/backend"
	"github.com/atomicstack/vislevel/internal/layout"
	"github.com/atomicstack/vislevel/internal/logging"
	"github.com/atomicstack/vislevel/internal/logging/events"
	"github.com/atomicstack/vislevel/internal/mirror"
	"github.com/atomicstack/vislevel/internal/printer"
	"github.com/atomicstack/vislevel/internal/tmux"
	"github.com/atomicstack/vislevel/internal/ui"
	"github.com/atomicstack/vislevel/internal/vlevel"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Sources of the level tree.
const (
	SourceLayout = "layout"
	SourceTmux   = "tmux"
)

// Dump formats.
const (
	DumpTable = printer.FormatTable
	DumpYAML  = printer.FormatYAML
	DumpTOML  = printer.FormatTOML
	DumpJSON  = printer.FormatJSON
)

// Config describes user-provided application options.
type Config struct {
	Source     string
	LayoutPath string
	SocketPath string
	Interval   time.Duration
	Width      int
	Height     int
	ShowFooter bool
	Dump       string
	Plain      bool
}

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run builds the level tree and hands it to the front end the configuration
// asks for. Without a terminal on stdout the plain follower is used.
func Run(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := run(ctx, cfg, os.Stdout)
	events.App.Exit(err)
	return err
}

// Front ends Run can hand the tree to.
const (
	ModeDump      = "dump"
	ModePlain     = "plain"
	ModeInspector = "inspector"
)

func mode(cfg Config) string {
	switch {
	case cfg.Dump != "":
		return ModeDump
	case cfg.Plain || !stdoutIsTerminal():
		return ModePlain
	default:
		return ModeInspector
	}
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	switch mode(cfg) {
	case ModeDump:
		return runDump(cfg, out)
	case ModePlain:
		return runPlain(ctx, cfg, out)
	default:
		return runInspector(cfg)
	}
}

// Startup describes what Run is about to do with a configuration.
type Startup struct {
	Mode   string `json:"mode"`
	Source string `json:"source"`
	Layout string `json:"layout,omitempty"`
	Socket string `json:"socket,omitempty"`
	Root   string `json:"root,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Describe resolves the source cfg points at without building anything:
// the socket for tmux, or the layout file and its root level.
func Describe(cfg Config) Startup {
	st := Startup{Mode: mode(cfg), Source: cfg.Source}
	if cfg.Source == SourceTmux {
		st.Root = mirror.ServerLevel
		socket, err := tmux.ResolveSocketPath(cfg.SocketPath)
		if err != nil {
			st.Error = err.Error()
			return st
		}
		st.Socket = socket
		return st
	}
	st.Source = SourceLayout
	lay := layout.Default()
	st.Layout = "default"
	if cfg.LayoutPath != "" {
		st.Layout = cfg.LayoutPath
		loaded, err := layout.Load(cfg.LayoutPath)
		if err != nil {
			st.Error = err.Error()
			return st
		}
		lay = loaded
	}
	st.Root = lay.Root
	return st
}

// source is a populated registry plus what is needed to keep it current.
type source struct {
	reg    *vlevel.Registry[string]
	root   string
	mirror *mirror.Mirror
	socket string
}

func openSource(cfg Config, hook func(*vlevel.Item)) (*source, error) {
	if cfg.Source == SourceTmux {
		socket, err := tmux.ResolveSocketPath(cfg.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("resolve socket path: %w", err)
		}
		reg := vlevel.NewRegistry(func(string) vlevel.Definition {
			return vlevel.DefinitionFuncs{CreateItem: hook}
		})
		events.App.Source(SourceTmux, socket)
		return &source{reg: reg, root: mirror.ServerLevel, mirror: mirror.New(reg), socket: socket}, nil
	}

	lay := layout.Default()
	detail := "default"
	if cfg.LayoutPath != "" {
		loaded, err := layout.Load(cfg.LayoutPath)
		if err != nil {
			return nil, err
		}
		lay, detail = loaded, cfg.LayoutPath
	}
	reg := vlevel.NewRegistry(lay.Definitions(hook))
	if _, err := lay.Build(reg); err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	events.App.Source(SourceLayout, detail)
	return &source{reg: reg, root: lay.Root}, nil
}

func (s *source) watcher(interval time.Duration) *backend.Watcher {
	if s.mirror == nil {
		return nil
	}
	return backend.NewWatcher(s.socket, interval)
}

func runDump(cfg Config, out io.Writer) error {
	src, err := openSource(cfg, nil)
	if err != nil {
		return err
	}
	if src.mirror != nil {
		defer tmux.Shutdown()
		tree, err := tmux.FetchTree(src.socket)
		if err != nil {
			return fmt.Errorf("fetch tmux tree: %w", err)
		}
		src.mirror.Apply(tree)
	}
	snap := printer.Capture(src.reg, src.root)
	events.App.Dump(cfg.Dump, len(snap.Levels))
	return printer.Dump(out, cfg.Dump, snap)
}

// runPlain prints transitions as they happen. A layout tree is static, so it
// returns once the tree is built; a tmux tree is followed until ctx ends.
func runPlain(ctx context.Context, cfg Config, out io.Writer) error {
	plain := printer.NewPlain(out)
	defer plain.Close()
	src, err := openSource(cfg, plain.Hook)
	if err != nil {
		return err
	}
	w := src.watcher(cfg.Interval)
	if w == nil {
		return nil
	}
	defer tmux.Shutdown()
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events():
			if !ok {
				return nil
			}
			if evt.Err != nil {
				logging.Error(evt.Err)
			}
			src.mirror.Handle(evt)
		}
	}
}

func runInspector(cfg Config) error {
	feed := ui.NewFeed(0)
	defer feed.Close()
	src, err := openSource(cfg, feed.Hook)
	if err != nil {
		return err
	}
	w := src.watcher(cfg.Interval)
	if w != nil {
		defer tmux.Shutdown()
		defer w.Stop()
	}
	model := ui.NewModel(ui.Options{
		Registry:   src.reg,
		Root:       src.root,
		Feed:       feed,
		Watcher:    w,
		Mirror:     src.mirror,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
