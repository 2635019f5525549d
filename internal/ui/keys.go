package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap documents the key bindings for the help line and help pager. The
// input modes do the actual dispatch.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Search      key.Binding
	Clear       key.Binding
	SwitchTab   key.Binding
	New         key.Binding
	Rename      key.Binding
	CycleStatus key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Details     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the bindings handled by the normal mode
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("gg", "top")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		SwitchTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new customer")),
		Rename:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename customer")),
		CycleStatus: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next invoice status")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Details:     key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "details")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.SwitchTab, k.Details, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap. Each group is one section of the help
// pager, in the order of helpSections.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Search, k.Clear, k.SwitchTab},
		{k.New, k.Rename, k.CycleStatus, k.Delete, k.Refresh, k.Details},
		{k.Help, k.Quit},
	}
}
