package ui

import (
	"unicode"

	"github.com/atomicstack/vislevel/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// handleTextInput edits the filter while the prompt is open. Keys it does not
// consume fall through to navigation.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	list := m.list
	switch msg.String() {
	case "ctrl+u":
		if list.Filter == "" {
			return true, nil
		}
		list.SetFilter("", 0)
		m.errMsg = ""
		events.Filter.Cleared(m.root)
		m.syncViewport()
		return true, nil
	case "ctrl+w":
		if list.DeleteFilterWordBackward() {
			events.Filter.WordBackspace(m.root, list.Filter)
			m.syncViewport()
		}
		return true, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		return true, nil
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.removeFilterRune()
		return true, nil
	case tea.KeyLeft:
		list.MoveFilterCursorRuneBackward()
		return true, nil
	case tea.KeyRight:
		list.MoveFilterCursorRuneForward()
		return true, nil
	case tea.KeySpace:
		m.appendToFilter(" ")
		return true, nil
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false, nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		m.appendToFilter(string(msg.Runes))
		return true, nil
	}
	return false, nil
}

func (m *Model) appendToFilter(text string) bool {
	if !m.list.InsertFilterText(text) {
		return false
	}
	m.forceClearInfo()
	m.errMsg = ""
	events.Filter.Append(m.root, m.list.Filter)
	m.syncViewport()
	return true
}

func (m *Model) removeFilterRune() bool {
	if !m.list.DeleteFilterRuneBackward() {
		return false
	}
	m.forceClearInfo()
	m.errMsg = ""
	events.Filter.Backspace(m.root, m.list.Filter)
	m.syncViewport()
	return true
}

func (m *Model) showFilterPrompt() bool {
	return m.filtering || m.list.Filter != ""
}

// filterPrompt renders the filter line with a block cursor when the prompt
// has focus.
func (m *Model) filterPrompt() string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	prompt := render(styles.FilterPrompt, "/ ")
	text := m.list.Filter
	if text == "" {
		if !m.filtering {
			return prompt
		}
		return prompt + m.renderFilterCursor(" ") + render(styles.FilterPlaceholder, "type to filter")
	}
	runes := []rune(text)
	pos := m.list.FilterCursorPos()
	if !m.filtering {
		return prompt + render(styles.Filter, text)
	}
	before := render(styles.Filter, string(runes[:pos]))
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if styles.Cursor == nil {
		return lipgloss.NewStyle().Reverse(true).Render(char)
	}
	return styles.Cursor.Copy().Inline(true).Render(char)
}
