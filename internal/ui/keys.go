package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"tasklist/internal/config"
)

type keyMap struct {
	Quit    key.Binding
	Add     key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Edit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Reload  key.Binding
	Dismiss key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys(k.Quit, "ctrl+c"), key.WithHelp(keyName(k.Quit), "quit")),
		Add:     key.NewBinding(key.WithKeys(k.Add), key.WithHelp(keyName(k.Add), "add")),
		Up:      key.NewBinding(key.WithKeys(k.Up, "up"), key.WithHelp(keyName(k.Up)+"/↑", "up")),
		Down:    key.NewBinding(key.WithKeys(k.Down, "down"), key.WithHelp(keyName(k.Down)+"/↓", "down")),
		Toggle:  key.NewBinding(key.WithKeys(k.Toggle), key.WithHelp(keyName(k.Toggle), "toggle")),
		Delete:  key.NewBinding(key.WithKeys(k.Delete), key.WithHelp(keyName(k.Delete), "delete")),
		Edit:    key.NewBinding(key.WithKeys(k.Edit), key.WithHelp(keyName(k.Edit), "edit")),
		Confirm: key.NewBinding(key.WithKeys(k.Confirm), key.WithHelp(keyName(k.Confirm), "submit")),
		Cancel:  key.NewBinding(key.WithKeys(k.Cancel), key.WithHelp(keyName(k.Cancel), "cancel")),
		Reload:  key.NewBinding(key.WithKeys(k.Reload), key.WithHelp(keyName(k.Reload), "reload")),
		Dismiss: key.NewBinding(key.WithKeys(k.Dismiss), key.WithHelp(keyName(k.Dismiss), "dismiss")),
	}
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

// listKeys is shown while browsing the list.
type listKeys keyMap

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Toggle, k.Edit, k.Delete, k.Reload, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Add, k.Edit, k.Toggle, k.Delete},
		{k.Reload, k.Dismiss, k.Quit},
	}
}

// inputKeys is shown while the input has focus.
type inputKeys keyMap

func (k inputKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

func (k inputKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}
