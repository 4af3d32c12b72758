package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the shoot view's key bindings.
type keyMap struct {
	Shoot      key.Binding
	Switch     key.Binding
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Shoot: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "Capture and generate"),
		),
		Switch: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Switch camera"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Shoot, k.Switch, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Shoot, k.Switch},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
