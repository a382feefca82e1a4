package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle key.Binding
	Prev   key.Binding
	Next   key.Binding
	Help   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	Prev:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous")),
	Next:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Prev, k.Next, k.Help, k.Quit}
}
