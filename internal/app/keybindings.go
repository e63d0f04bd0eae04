package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/vidyasagar/framehop/internal/ui"
)

// KeyMap defines all keybindings for framehop.
type KeyMap struct {
	// Cursor
	Up         key.Binding
	Down       key.Binding
	GotoTop    key.Binding
	GotoBottom key.Binding

	// Host document
	Select      key.Binding
	Deselect    key.Binding
	DeleteNode  key.Binding
	SwitchFocus key.Binding

	// History
	HopBackward key.Binding
	HopForward  key.Binding
	Jump        key.Binding

	// Favorites
	ToggleFavorite key.Binding
	RemoveFavorite key.Binding
	MoveUp         key.Binding
	MoveDown       key.Binding

	// Settings
	CycleCapacity key.Binding
	PageLabels    key.Binding
	Theme         key.Binding
	Policy        key.Binding
	ClearHistory  key.Binding
	ClearAll      key.Binding

	// Actions
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("Enter", "select element / switch page"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "clear selection"),
		),
		DeleteNode: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete element from the document"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch between outline and panel"),
		),
		HopBackward: key.NewBinding(
			key.WithKeys("H", "["),
			key.WithHelp("H/[", "hop backward"),
		),
		HopForward: key.NewBinding(
			key.WithKeys("L", "]"),
			key.WithHelp("L/]", "hop forward"),
		),
		Jump: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter (panel)", "jump to entry"),
		),
		ToggleFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite / unfavorite selection"),
		),
		RemoveFavorite: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x (panel)", "remove favorite"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K (panel)", "move favorite up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J (panel)", "move favorite down"),
		),
		CycleCapacity: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle history size 4/8/16/20"),
		),
		PageLabels: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle page labels"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle light/dark theme"),
		),
		Policy: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "switch revisit policy (append / move-to-front)"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear history, keep favorites"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear history and favorites"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// HelpBindings lists the bindings shown in the help overlay.
func (k KeyMap) HelpBindings() []ui.HelpBinding {
	all := []key.Binding{
		k.Up, k.Down, k.GotoTop, k.GotoBottom,
		k.Select, k.Deselect, k.DeleteNode, k.SwitchFocus,
		k.HopBackward, k.HopForward, k.Jump,
		k.ToggleFavorite, k.RemoveFavorite, k.MoveUp, k.MoveDown,
		k.CycleCapacity, k.PageLabels, k.Theme, k.Policy, k.ClearHistory, k.ClearAll,
		k.Help, k.Quit,
	}
	out := make([]ui.HelpBinding, 0, len(all))
	for _, b := range all {
		h := b.Help()
		out = append(out, ui.HelpBinding{Keys: h.Key, Desc: h.Desc})
	}
	return out
}
