package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/vislevel/internal/format/table"
	"github.com/atomicstack/vislevel/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const feedDisplayLines = 5

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 32)
	lines = append(lines, styledLine{text: m.header(), style: styles.Header})

	m.syncViewport()
	start, rows := m.visibleRows()
	if len(m.list.Rows) == 0 {
		msg := "(no levels)"
		if m.list.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", m.list.Filter)
		}
		lines = append(lines, styledLine{text: msg, style: styles.Info})
	} else {
		texts := rowTexts(rows)
		for i, row := range rows {
			lines = append(lines, m.buildRowLine(row, texts[i], start+i))
		}
	}

	lines = append(lines, m.feedLines()...)
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.keys.footer(), style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-m.bottomRows(), m.width)
	lines = applyWidth(lines, m.width)

	var status styledLine
	switch {
	case m.errMsg != "":
		status = styledLine{text: "Error: " + m.errMsg, style: styles.Error}
	case m.backendLastErr != "":
		status = styledLine{text: "tmux: " + m.backendLastErr, style: styles.Error}
	}
	bottom := applyWidth([]styledLine{status}, m.width)
	out := renderLines(append(lines, bottom...))
	if m.showFilterPrompt() {
		out += "\n" + m.filterPrompt()
	}
	return out
}

func (m *Model) header() string {
	if m.registry == nil {
		return "vislevel"
	}
	return fmt.Sprintf("vislevel · %s · %d levels", m.root, m.registry.Len())
}

// visibleRows returns the slice of filtered rows inside the viewport and the
// index of the first one.
func (m *Model) visibleRows() (int, []state.Row) {
	rows := m.list.Rows
	maxRows := m.maxVisibleRows()
	if maxRows <= 0 || len(rows) <= maxRows {
		return 0, rows
	}
	start := m.list.ViewportOffset
	if start < 0 {
		start = 0
	}
	if start+maxRows > len(rows) {
		start = len(rows) - maxRows
		m.list.ViewportOffset = start
	}
	return start, rows[start : start+maxRows]
}

// rowTexts lays rows out as aligned columns: name, state, visibility and the
// nested level.
func rowTexts(rows []state.Row) []string {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		indent := strings.Repeat("  ", row.Depth)
		if row.Kind == state.KindLevel {
			visibility := "hidden"
			if row.Visible {
				visibility = "visible"
			}
			cells[i] = []string{indent + "▾ " + row.Level, row.State, visibility, ""}
			continue
		}
		glyph, current := "○ ", ""
		if row.Current {
			glyph, current = "● ", "current"
		}
		visibility, child := "", ""
		if row.Visible {
			visibility = "visible"
		}
		if row.Child != "" {
			child = "→ " + row.Child
		}
		cells[i] = []string{indent + glyph + row.Item, current, visibility, child}
	}
	return table.Format(cells, nil)
}

// buildRowLine styles one tree row. The cursor row spans the full width so
// its background reaches the edge.
func (m *Model) buildRowLine(row state.Row, text string, idx int) styledLine {
	lineStyle := styles.Item
	switch {
	case row.Kind == state.KindLevel && row.State != "active":
		lineStyle = styles.Inactive
	case row.Kind == state.KindLevel:
		lineStyle = styles.Level
	case row.Visible:
		lineStyle = styles.VisibleItem
	}
	indicatorStyle := styles.ItemIndicator
	if idx == m.list.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := "▌ " + text
	if m.width > 0 {
		if pad := m.width - runewidth.StringWidth(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func (m *Model) feedLines() []styledLine {
	if m.feed == nil || m.feed.Len() == 0 {
		return nil
	}
	entries := m.feed.Recent(feedDisplayLines)
	lines := make([]styledLine, 0, len(entries)+2)
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: "events", style: styles.EventTitle})
	for _, e := range entries {
		mark, style := "-", styles.EventHidden
		if e.Visible {
			mark, style = "+", styles.EventShown
		}
		lines = append(lines, styledLine{
			text:  fmt.Sprintf("%s %s %s", e.At.Format("15:04:05"), mark, e.Path),
			style: style,
		})
	}
	return lines
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport()
	return nil
}

func (m *Model) bottomRows() int {
	if m.showFilterPrompt() {
		return 2
	}
	return 1
}

func (m *Model) maxVisibleRows() int {
	if m.height <= 0 {
		return -1
	}
	used := 1 + m.bottomRows()
	if m.feed != nil {
		if n := m.feed.Len(); n > 0 {
			used += 2 + min(n, feedDisplayLines)
		}
	}
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil && text != "" {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText shortens text to width terminal cells, ending with an
// ellipsis when anything was cut.
func truncateText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return truncate.String(text, 1)
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
