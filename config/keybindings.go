package config

import (
	"strings"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions,omitempty"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary string `toml:"primary"` // e.g., "alt", "ctrl", "meta", "super"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary" or "none"
	key      string
}

// Actions lists every bindable action in help order.
var Actions = []string{
	"send",
	"newline",
	"new_conversation",
	"yank_last_response",
	"scroll_up",
	"scroll_down",
	"page_up",
	"page_down",
	"help",
	"quit",
}

// actionRegistry maps action names to their default keybindings.
// Users can override any of these in [keybindings.actions].
var actionRegistry = map[string]actionDef{
	"send":               {"none", "enter"},
	"newline":            {"primary", "enter"},
	"new_conversation":   {"primary", "n"},
	"yank_last_response": {"primary", "y"},
	"scroll_up":          {"primary", "k"},
	"scroll_down":        {"primary", "j"},
	"page_up":            {"none", "pgup"},
	"page_down":          {"none", "pgdown"},
	"help":               {"primary", "h"},
	"quit":               {"none", "ctrl+c"},
}

var actionDescriptions = map[string]string{
	"send":               "Send (starts a conversation if none is open)",
	"newline":            "Insert newline",
	"new_conversation":   "Start a new conversation with the composed text",
	"yank_last_response": "Copy last reply",
	"scroll_up":          "Scroll up",
	"scroll_down":        "Scroll down",
	"page_up":            "Page up",
	"page_down":          "Page down",
	"help":               "Toggle help",
	"quit":               "Quit",
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary: "alt",
		},
	}
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("n") returns "alt+n" (or "ctrl+n" if primary is "ctrl")
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// GetActionKey returns the keybinding for a specific action
// Checks user overrides first, then falls back to action registry defaults
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	if def, exists := actionRegistry[action]; exists {
		switch def.modifier {
		case "primary":
			return kb.PrimaryKey(def.key)
		case "none":
			return def.key
		}
	}

	return ""
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+shift+j" -> "Ctrl+Shift+J"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// ActionDescription returns the help text for an action.
func ActionDescription(action string) string {
	return actionDescriptions[action]
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	var result []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()

	if primary == "shift" {
		return false, "Shift alone conflicts with typing"
	}

	if strings.Contains(primary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
