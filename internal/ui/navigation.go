package ui

import (
	"fmt"

	"github.com/atomicstack/vislevel/internal/logging/events"
	"github.com/atomicstack/vislevel/internal/ui/command"
	"github.com/atomicstack/vislevel/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.filtering {
		if handled, cmd := m.handleTextInput(keyMsg); handled {
			return cmd
		}
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Escape):
		return m.handleEscapeKey()
	case key.Matches(keyMsg, m.keys.Filter):
		m.filtering = true
	case key.Matches(keyMsg, m.keys.Select):
		return m.handleSelect()
	case key.Matches(keyMsg, m.keys.Toggle):
		return m.handleToggle()
	case key.Matches(keyMsg, m.keys.Reset):
		return m.handleReset()
	case key.Matches(keyMsg, m.keys.Remove):
		return m.handleRemove()
	case key.Matches(keyMsg, m.keys.Up):
		m.moveCursorUp(keyMsg.String())
	case key.Matches(keyMsg, m.keys.Down):
		m.moveCursorDown(keyMsg.String())
	case key.Matches(keyMsg, m.keys.PageUp):
		m.moveCursor(m.list.MoveCursorPageUp(m.maxVisibleRows()), keyMsg.String())
	case key.Matches(keyMsg, m.keys.PageDown):
		m.moveCursor(m.list.MoveCursorPageDown(m.maxVisibleRows()), keyMsg.String())
	case key.Matches(keyMsg, m.keys.Home):
		m.moveCursor(m.list.MoveCursorHome(), keyMsg.String())
	case key.Matches(keyMsg, m.keys.End):
		m.moveCursor(m.list.MoveCursorEnd(), keyMsg.String())
	}
	return nil
}

// handleEscapeKey closes the filter first and quits only when there is
// nothing left to close.
func (m *Model) handleEscapeKey() tea.Cmd {
	if m.filtering || m.list.Filter != "" {
		m.filtering = false
		if m.list.Filter != "" {
			m.list.SetFilter("", 0)
			events.Filter.Cleared(m.root)
		}
		m.errMsg = ""
		m.syncViewport()
		return nil
	}
	return tea.Quit
}

func (m *Model) moveCursorUp(keyName string) {
	n := len(m.list.Rows)
	if n == 0 {
		return
	}
	if m.list.Cursor > 0 {
		m.list.Cursor--
	} else {
		m.list.Cursor = n - 1
	}
	m.moveCursor(true, keyName)
}

func (m *Model) moveCursorDown(keyName string) {
	n := len(m.list.Rows)
	if n == 0 {
		return
	}
	if m.list.Cursor < n-1 {
		m.list.Cursor++
	} else {
		m.list.Cursor = 0
	}
	m.moveCursor(true, keyName)
}

func (m *Model) moveCursor(moved bool, keyName string) {
	if moved {
		events.UI.Cursor(m.list.Cursor, keyName)
	}
	m.syncViewport()
}

func (m *Model) syncViewport() {
	m.list.EnsureCursorVisible(m.maxVisibleRows())
}

func (m *Model) selectedRow() (state.Row, bool) {
	return m.list.Selected()
}

// handleSelect makes the item under the cursor current in its level.
func (m *Model) handleSelect() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Kind != state.KindItem {
		m.setInfo("Pick an item row to make it current")
		return nil
	}
	events.UI.Select(row.Level, row.Item, m.list.Filter)
	return m.run("select", row.ID(), func() error {
		level, err := m.lookup(row.Level)
		if err != nil {
			return err
		}
		return level.SetCurrentItem(row.Item)
	})
}

// handleToggle flips the visibility flag of the row's level.
func (m *Model) handleToggle() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return m.run("toggle", row.Level, func() error {
		level, err := m.lookup(row.Level)
		if err != nil {
			return err
		}
		visible := !level.IsVisible()
		events.UI.Toggle(row.Level, visible)
		level.SetVisible(visible)
		return nil
	})
}

func (m *Model) handleReset() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return m.run("reset", row.Level, func() error {
		level, err := m.lookup(row.Level)
		if err != nil {
			return err
		}
		events.UI.Reset(row.Level)
		level.Reset()
		return nil
	})
}

func (m *Model) handleRemove() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return m.run("remove", row.Level, func() error {
		events.UI.Remove(row.Level)
		if !m.registry.Remove(row.Level) {
			return fmt.Errorf("%w: %s", errLevelGone, row.Level)
		}
		return nil
	})
}

func (m *Model) run(id, label string, fn command.Action) tea.Cmd {
	m.errMsg = ""
	return m.bus.Execute(command.Request{ID: id, Label: label, Handler: fn})
}

func (m *Model) handleCommandResult(msg tea.Msg) tea.Cmd {
	res, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	if res.Err != nil {
		events.Action.Error(res.Err)
		m.errMsg = res.Err.Error()
	} else {
		events.Action.Success(res.ID + " " + res.Label)
		m.errMsg = ""
		m.setInfo(fmt.Sprintf("%s %s", res.ID, res.Label))
	}
	m.refresh()
	return nil
}
