package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle        key.Binding
	OnAndNext     key.Binding
	OffAndNext    key.Binding
	Down          key.Binding
	Up            key.Binding
	Group         key.Binding
	Search        key.Binding
	Delete        key.Binding
	Sort          key.Binding
	ToggleConfirm key.Binding
	Back          key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "toggle"),
		),
		OnAndNext: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "select & next"),
		),
		OffAndNext: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "unselect & next"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Group: key.NewBinding(
			key.WithKeys("tab", "a"),
			key.WithHelp("a", "all/none"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Delete: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter/d", "delete selected"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		ToggleConfirm: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter/quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Group, k.Search, k.Delete, k.Sort, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.OnAndNext, k.OffAndNext, k.Group},
		{k.Search, k.Back, k.Delete, k.Sort, k.ToggleConfirm, k.Help, k.Quit},
	}
}
