package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Dashboard key.Binding
	Invoices  key.Binding
	Expenses  key.Binding
	Templates key.Binding
	Settings  key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Export  key.Binding
	Advance key.Binding
	AddItem key.Binding
	Filter  key.Binding
	Search  key.Binding
	Confirm key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Dashboard: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
	Invoices:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoices")),
	Expenses:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expenses")),
	Templates: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "templates")),
	Settings:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "modify")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Export:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export pdf")),
	Advance:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
	AddItem:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
