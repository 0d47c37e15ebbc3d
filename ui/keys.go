package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Clear    key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
	Dismiss  key.Binding

	// Shortcuts are dispatched to the coordinator; these bindings only
	// describe them.
	Toggle     key.Binding
	Pause      key.Binding
	Resume     key.Binding
	Stop       key.Binding
	Listen     key.Binding
	StopListen key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "press/select")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		Left:     key.NewBinding(key.WithKeys("left", "h")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		Clear:    key.NewBinding(key.WithKeys("backspace", "delete")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Dismiss:  key.NewBinding(key.WithKeys("enter", "esc", " ")),

		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "speak/stop")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Stop:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Listen:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "listen")),
		StopListen: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "stop listening")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Pause, k.Resume, k.Stop, k.Listen, k.StopListen, k.Next, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Pause, k.Resume, k.Stop},
		{k.Listen, k.StopListen},
		{k.Next, k.Prev, k.Activate, k.Copy, k.Help, k.Quit},
	}
}
