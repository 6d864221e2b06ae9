package tmux

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// Tree is one snapshot of the server: sessions, their windows and the panes
// inside each window.
type Tree struct {
	Sessions []Session
	// Current is the session the user is looking at, if it can be told.
	Current string
	// Attached is set when at least one real (non control-mode) client is
	// attached anywhere.
	Attached bool
}

type Session struct {
	Name     string
	Attached bool
	Clients  []string
	Windows  []Window
}

type Window struct {
	ID     string
	Index  int
	Name   string
	Active bool
	Panes  []Pane
}

type Pane struct {
	ID      string
	Index   int
	Title   string
	Command string
	Active  bool
}

// Find returns the named session.
func (t Tree) Find(name string) (Session, bool) {
	for _, s := range t.Sessions {
		if s.Name == name {
			return s, true
		}
	}
	return Session{}, false
}

// ActiveWindow returns the ID of the session's active window.
func (s Session) ActiveWindow() string {
	for _, w := range s.Windows {
		if w.Active {
			return w.ID
		}
	}
	return ""
}

// ActivePane returns the ID of the window's active pane.
func (w Window) ActivePane() string {
	for _, p := range w.Panes {
		if p.Active {
			return p.ID
		}
	}
	return ""
}

const (
	windowFormat = "#{session_name}\t#{window_id}\t#{window_index}\t#{window_active}\t#{window_name}"
	paneFormat   = "#{session_name}\t#{window_id}\t#{pane_id}\t#{pane_index}\t#{pane_active}\t#{pane_current_command}\t#{pane_title}"
)

// FetchTree reads the whole session tree from the server at socketPath.
func FetchTree(socketPath string) (Tree, error) {
	client, err := newTmux(socketPath)
	if err != nil {
		return Tree{}, err
	}
	sessions, err := client.ListSessions()
	if err != nil {
		return Tree{}, fmt.Errorf("list sessions: %w", err)
	}

	windows, err := fetchWindowLines(client)
	if err != nil {
		all, listErr := client.ListAllWindows()
		if listErr != nil {
			return Tree{}, fmt.Errorf("list windows: %w", err)
		}
		windows = fallbackWindowLines(all)
	}
	panes, err := fetchPaneLines(client)
	if err != nil {
		return Tree{}, fmt.Errorf("list panes: %w", err)
	}

	clients := realAttachedClients(client)
	tree := Tree{Current: currentSessionName(client)}
	index := make(map[string]*Session, len(sessions))
	for _, s := range sessions {
		if s == nil || s.Name == "" {
			continue
		}
		tree.Sessions = append(tree.Sessions, Session{
			Name:     s.Name,
			Clients:  clients[s.Name],
			Attached: len(clients[s.Name]) > 0,
		})
	}
	sort.Slice(tree.Sessions, func(i, j int) bool { return tree.Sessions[i].Name < tree.Sessions[j].Name })
	for i := range tree.Sessions {
		index[tree.Sessions[i].Name] = &tree.Sessions[i]
		if tree.Sessions[i].Attached {
			tree.Attached = true
		}
	}

	for _, line := range windows {
		s := index[line.session]
		if s == nil {
			continue
		}
		s.Windows = append(s.Windows, Window{ID: line.id, Index: line.index, Name: line.name, Active: line.active})
	}
	for _, line := range panes {
		s := index[line.session]
		if s == nil {
			continue
		}
		for i := range s.Windows {
			if s.Windows[i].ID == line.window {
				s.Windows[i].Panes = append(s.Windows[i].Panes, line.pane)
				break
			}
		}
	}
	for _, s := range tree.Sessions {
		sort.SliceStable(s.Windows, func(i, j int) bool { return s.Windows[i].Index < s.Windows[j].Index })
		for _, w := range s.Windows {
			sort.SliceStable(w.Panes, func(i, j int) bool { return w.Panes[i].Index < w.Panes[j].Index })
		}
	}
	return tree, nil
}

type windowLine struct {
	session string
	id      string
	index   int
	name    string
	active  bool
}

type paneLine struct {
	session string
	window  string
	pane    Pane
}

func fetchWindowLines(client tmuxClient) ([]windowLine, error) {
	rawLines, err := client.ListWindowsFormat("", "", windowFormat)
	if err != nil {
		return nil, err
	}
	result := make([]windowLine, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 5)
		if len(parts) < 4 {
			continue
		}
		index, _ := strconv.Atoi(strings.TrimSpace(parts[2]))
		entry := windowLine{
			session: strings.TrimSpace(parts[0]),
			id:      strings.TrimSpace(parts[1]),
			index:   index,
			active:  strings.TrimSpace(parts[3]) == "1",
		}
		if len(parts) > 4 {
			entry.name = strings.TrimSpace(parts[4])
		}
		result = append(result, entry)
	}
	return result, nil
}

func fallbackWindowLines(windows []*gotmux.Window) []windowLine {
	lines := make([]windowLine, 0, len(windows))
	for _, w := range windows {
		if w == nil {
			continue
		}
		lines = append(lines, windowLine{
			session: firstSession(w),
			id:      w.Id,
			index:   w.Index,
			name:    w.Name,
			active:  w.Active,
		})
	}
	return lines
}

func firstSession(w *gotmux.Window) string {
	if len(w.ActiveSessionsList) > 0 {
		return w.ActiveSessionsList[0]
	}
	if len(w.LinkedSessionsList) > 0 {
		return w.LinkedSessionsList[0]
	}
	return strings.TrimSpace(w.Session)
}

func fetchPaneLines(client tmuxClient) ([]paneLine, error) {
	rawLines, err := client.ListPanesFormat("", "", paneFormat)
	if err != nil {
		return nil, err
	}
	result := make([]paneLine, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 7)
		if len(parts) < 5 {
			continue
		}
		index, _ := strconv.Atoi(strings.TrimSpace(parts[3]))
		pane := Pane{
			ID:     strings.TrimSpace(parts[2]),
			Index:  index,
			Active: strings.TrimSpace(parts[4]) == "1",
		}
		if len(parts) > 5 {
			pane.Command = strings.TrimSpace(parts[5])
		}
		if len(parts) > 6 {
			pane.Title = strings.TrimSpace(parts[6])
		}
		result = append(result, paneLine{
			session: strings.TrimSpace(parts[0]),
			window:  strings.TrimSpace(parts[1]),
			pane:    pane,
		})
	}
	return result, nil
}

// realAttachedClients maps session names to the non-control-mode clients
// attached to them. gotmuxcc's own control-mode connection is skipped, or
// every session it touches would look attached.
func realAttachedClients(client tmuxClient) map[string][]string {
	clients, err := client.ListClients()
	if err != nil {
		return nil
	}
	result := make(map[string][]string)
	for _, c := range clients {
		if c == nil || c.ControlMode || c.Session == "" {
			continue
		}
		result[c.Session] = append(result[c.Session], c.Name)
	}
	return result
}

func currentSessionName(client tmuxClient) string {
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		if name, err := client.DisplayMessage(pane, "#{session_name}"); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	if clients, err := client.ListClients(); err == nil {
		for _, c := range clients {
			if c != nil && !c.ControlMode && c.Session != "" {
				return c.Session
			}
		}
	}
	return ""
}
