package ui

import (
	"charm.land/bubbles/v2/key"
)

// KeyMap lists the bindings of the formula bar. It satisfies help.KeyMap.
type KeyMap struct {
	Commit      key.Binding
	Delete      key.Binding
	Up          key.Binding
	Down        key.Binding
	Cancel      key.Binding
	PrevToken   key.Binding
	NextToken   key.Binding
	InsertAfter key.Binding
	EditToken   key.Binding
	DeleteToken key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "commit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "remove last"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "prev"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		PrevToken: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", "select token"),
		),
		NextToken: key.NewBinding(
			key.WithKeys("alt+right"),
			key.WithHelp("alt+→", "select token"),
		),
		InsertAfter: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "insert after"),
		),
		EditToken: key.NewBinding(
			key.WithKeys("alt+e"),
			key.WithHelp("alt+e", "edit"),
		),
		DeleteToken: key.NewBinding(
			key.WithKeys("alt+d"),
			key.WithHelp("alt+d", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Down, k.Delete, k.Cancel, k.PrevToken, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Commit, k.Up, k.Down, k.Cancel},
		{k.Delete, k.PrevToken, k.NextToken},
		{k.InsertAfter, k.EditToken, k.DeleteToken, k.Quit},
	}
}
