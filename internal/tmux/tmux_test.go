package tmux

import (
	"errors"
	"os/user"
	"path/filepath"
	"testing"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

func withStubTmux(t *testing.T, fn func(string) (tmuxClient, error)) {
	t.Helper()
	prev := newTmux
	prevClient := cachedClient
	prevSocket := cachedSocket
	cachedClient = nil
	cachedSocket = ""
	newTmux = fn
	t.Cleanup(func() {
		newTmux = prev
		cachedClient = prevClient
		cachedSocket = prevSocket
	})
}

type fakeClient struct {
	sessions    []*gotmux.Session
	sessionsErr error
	windows     []*gotmux.Window
	windowsErr  error
	clients     []*gotmux.Client
	clientsErr  error
	closed      int

	displayMessageFn       func(target, format string) (string, error)
	listWindowsFormatLines []string
	listWindowsFormatErr   error
	listPanesFormatLines   []string
	listPanesFormatErr     error
}

func (f *fakeClient) ListSessions() ([]*gotmux.Session, error) {
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	return f.sessions, nil
}

func (f *fakeClient) ListAllWindows() ([]*gotmux.Window, error) {
	if f.windowsErr != nil {
		return nil, f.windowsErr
	}
	return f.windows, nil
}

func (f *fakeClient) ListClients() ([]*gotmux.Client, error) {
	if f.clientsErr != nil {
		return nil, f.clientsErr
	}
	return f.clients, nil
}

func (f *fakeClient) DisplayMessage(target, format string) (string, error) {
	if f.displayMessageFn != nil {
		return f.displayMessageFn(target, format)
	}
	return "", nil
}

func (f *fakeClient) ListWindowsFormat(target, filter, format string) ([]string, error) {
	if f.listWindowsFormatErr != nil {
		return nil, f.listWindowsFormatErr
	}
	return f.listWindowsFormatLines, nil
}

func (f *fakeClient) ListPanesFormat(target, filter, format string) ([]string, error) {
	if f.listPanesFormatErr != nil {
		return nil, f.listPanesFormatErr
	}
	return f.listPanesFormatLines, nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func sampleClient() *fakeClient {
	return &fakeClient{
		sessions: []*gotmux.Session{{Name: "work"}, {Name: "dev"}},
		clients: []*gotmux.Client{
			{Name: "ctl", Session: "work", ControlMode: true},
			{Name: "/dev/pts/3", Session: "dev"},
		},
		listWindowsFormatLines: []string{
			"dev\t@2\t1\t1\tlogs",
			"dev\t@1\t0\t0\teditor",
			"work\t@5\t0\t1\tmail",
			"ghost\t@9\t0\t1\tstale",
			"",
		},
		listPanesFormatLines: []string{
			"dev\t@1\t%1\t0\t1\tnvim\ttitle one",
			"dev\t@2\t%3\t1\t1\ttail\tlogs",
			"dev\t@2\t%2\t0\t0\tzsh\tshell\twith tab",
			"work\t@5\t%7\t0\t1\tmutt\t",
			"broken",
		},
	}
}

func TestFetchTree(t *testing.T) {
	fake := sampleClient()
	withStubTmux(t, func(string) (tmuxClient, error) { return fake, nil })
	t.Setenv("TMUX_PANE", "")

	tree, err := FetchTree("sock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Current != "dev" {
		t.Fatalf("expected current dev, got %q", tree.Current)
	}
	if !tree.Attached {
		t.Fatalf("expected a real client to be attached")
	}
	if len(tree.Sessions) != 2 || tree.Sessions[0].Name != "dev" || tree.Sessions[1].Name != "work" {
		t.Fatalf("expected sessions sorted by name, got %+v", tree.Sessions)
	}
	dev := tree.Sessions[0]
	if !dev.Attached || len(dev.Clients) != 1 {
		t.Fatalf("expected dev attached by one client, got %+v", dev)
	}
	if tree.Sessions[1].Attached {
		t.Fatalf("control-mode client must not count as attached")
	}
	if len(dev.Windows) != 2 || dev.Windows[0].ID != "@1" || dev.Windows[1].ID != "@2" {
		t.Fatalf("expected windows sorted by index, got %+v", dev.Windows)
	}
	if dev.ActiveWindow() != "@2" {
		t.Fatalf("expected active window @2, got %q", dev.ActiveWindow())
	}
	logs := dev.Windows[1]
	if len(logs.Panes) != 2 || logs.Panes[0].ID != "%2" || logs.Panes[1].ID != "%3" {
		t.Fatalf("expected panes sorted by index, got %+v", logs.Panes)
	}
	if logs.Panes[0].Title != "shell\twith tab" {
		t.Fatalf("expected title to keep embedded tabs, got %q", logs.Panes[0].Title)
	}
	if logs.ActivePane() != "%3" {
		t.Fatalf("expected active pane %%3, got %q", logs.ActivePane())
	}
	if _, ok := tree.Find("ghost"); ok {
		t.Fatalf("windows of unknown sessions must be dropped")
	}
}

func TestFetchTreeCurrentFromTmuxPane(t *testing.T) {
	fake := sampleClient()
	fake.displayMessageFn = func(target, format string) (string, error) {
		if target != "%7" {
			t.Fatalf("unexpected target %q", target)
		}
		return "work\n", nil
	}
	withStubTmux(t, func(string) (tmuxClient, error) { return fake, nil })
	t.Setenv("TMUX_PANE", "%7")

	tree, err := FetchTree("sock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Current != "work" {
		t.Fatalf("expected current work, got %q", tree.Current)
	}
}

func TestFetchTreeFallsBackToWindowList(t *testing.T) {
	fake := sampleClient()
	fake.listWindowsFormatErr = errors.New("format unsupported")
	fake.windows = []*gotmux.Window{
		{Id: "@1", Index: 0, Name: "editor", Active: true, ActiveSessionsList: []string{"dev"}},
		{Id: "@5", Index: 0, Name: "mail", Active: true, Session: "work"},
	}
	withStubTmux(t, func(string) (tmuxClient, error) { return fake, nil })
	t.Setenv("TMUX_PANE", "")

	tree, err := FetchTree("sock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	work, _ := tree.Find("work")
	if len(work.Windows) != 1 || work.Windows[0].Name != "mail" {
		t.Fatalf("expected fallback window for work, got %+v", work.Windows)
	}
}

func TestFetchTreePropagatesErrors(t *testing.T) {
	t.Run("connect", func(t *testing.T) {
		withStubTmux(t, func(string) (tmuxClient, error) { return nil, errors.New("no server") })
		if _, err := FetchTree("sock"); err == nil {
			t.Fatalf("expected connect error")
		}
	})
	t.Run("sessions", func(t *testing.T) {
		fake := sampleClient()
		fake.sessionsErr = errors.New("boom")
		withStubTmux(t, func(string) (tmuxClient, error) { return fake, nil })
		if _, err := FetchTree("sock"); err == nil {
			t.Fatalf("expected sessions error")
		}
	})
	t.Run("panes", func(t *testing.T) {
		fake := sampleClient()
		fake.listPanesFormatErr = errors.New("boom")
		withStubTmux(t, func(string) (tmuxClient, error) { return fake, nil })
		if _, err := FetchTree("sock"); err == nil {
			t.Fatalf("expected panes error")
		}
	})
}

func TestResolveSocketPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		got, err := ResolveSocketPath("/tmp/flag")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/flag" {
			t.Fatalf("expected /tmp/flag, got %q", got)
		}
	})
	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("VISLEVEL_SOCKET", "/tmp/env")
		got, err := ResolveSocketPath("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/env" {
			t.Fatalf("expected /tmp/env, got %q", got)
		}
	})
	t.Run("tmux env fallback", func(t *testing.T) {
		t.Setenv("VISLEVEL_SOCKET", "")
		t.Setenv("TMUX", "/tmp/socket,123,0")
		got, err := ResolveSocketPath("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/tmp/socket" {
			t.Fatalf("expected /tmp/socket, got %q", got)
		}
	})
	t.Run("default path", func(t *testing.T) {
		t.Setenv("VISLEVEL_SOCKET", "")
		t.Setenv("TMUX", "")
		t.Setenv("TMUX_TMPDIR", "/tmp")
		u, _ := user.Current()
		got, err := ResolveSocketPath("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join("/tmp", "tmux-"+u.Uid, "default")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}

func TestShutdownClosesClient(t *testing.T) {
	fake := &fakeClient{}
	prevClient := cachedClient
	prevSocket := cachedSocket
	cachedClient = fake
	cachedSocket = "/tmp/test"
	t.Cleanup(func() {
		cachedClient = prevClient
		cachedSocket = prevSocket
	})

	Shutdown()
	if fake.closed != 1 {
		t.Fatalf("expected client to be closed once, got %d", fake.closed)
	}
	if cachedClient != nil || cachedSocket != "" {
		t.Fatalf("expected cache to be cleared after Shutdown")
	}
}
