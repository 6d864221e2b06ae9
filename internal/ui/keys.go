package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding
	Toggle   key.Binding
	Reset    key.Binding
	Remove   key.Binding
	Filter   key.Binding
	Escape   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		Home:     key.NewBinding(key.WithKeys("home", "g")),
		End:      key.NewBinding(key.WithKeys("end", "G")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Toggle:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "visibility")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// footerBindings lists the bindings advertised in the footer.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Toggle, k.Reset, k.Remove, k.Filter, k.Escape, k.Quit}
}

func (k keyMap) footer() string {
	parts := make([]string, 0, 9)
	for _, b := range k.footerBindings() {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		keyText := h.Key
		if styles.FooterKey != nil {
			keyText = styles.FooterKey.Render(keyText)
		}
		parts = append(parts, keyText+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
