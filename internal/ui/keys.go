package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the shell's key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Play     key.Binding
	Skip     key.Binding
	Mute     key.Binding
	Minimize key.Binding
	Copy     key.Binding
	Replay   key.Binding
	Close    key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Play: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "skip"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "minimize"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy narration"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		Close: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// hints renders bindings as a single line of key hints.
func (s *Styles) hints(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += s.FormatKey(h.Key, h.Desc)
	}
	return out
}
