package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"chatbuf/config"
)

type keyMap struct {
	Send            key.Binding
	Newline         key.Binding
	NewConversation key.Binding
	YankLast        key.Binding
	ScrollUp        key.Binding
	ScrollDown      key.Binding
	PageUp          key.Binding
	PageDown        key.Binding
	Help            key.Binding
	Quit            key.Binding
}

func binding(kb *config.KeyBindingsConfig, action string) key.Binding {
	return key.NewBinding(
		key.WithKeys(kb.GetActionKey(action)),
		key.WithHelp(kb.DisplayActionKey(action), config.ActionDescription(action)),
	)
}

// newKeyMap resolves every action against the user's keybinding config.
func newKeyMap(kb *config.KeyBindingsConfig) keyMap {
	if kb == nil {
		kb = config.DefaultKeybindings()
	}
	return keyMap{
		Send:            binding(kb, "send"),
		Newline:         binding(kb, "newline"),
		NewConversation: binding(kb, "new_conversation"),
		YankLast:        binding(kb, "yank_last_response"),
		ScrollUp:        binding(kb, "scroll_up"),
		ScrollDown:      binding(kb, "scroll_down"),
		PageUp:          binding(kb, "page_up"),
		PageDown:        binding(kb, "page_down"),
		Help:            binding(kb, "help"),
		Quit:            binding(kb, "quit"),
	}
}

// bindings returns the map in help order.
func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Send, k.Newline, k.NewConversation, k.YankLast,
		k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown,
		k.Help, k.Quit,
	}
}
