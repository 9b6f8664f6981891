package shell

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the shell's global bindings.
type KeyMap struct {
	Quit    key.Binding
	Focus   key.Binding
	Goto    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Dismiss key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Focus:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		Goto:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "go to")),
		Left:    key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev")),
		Right:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
	}
}
