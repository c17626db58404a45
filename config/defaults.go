package config

const (
	DefaultProvider              = "openai"
	DefaultRequestTimeoutSeconds = 120
)

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider:              DefaultProvider,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		RenderMarkdown:        true,
		Credentials: CredentialsConfig{
			Method: SecurityPlainText,
		},
		KeyBindings: *DefaultKeybindings(),
	}
}

func GenerateUserConfigTemplate() string {
	return `# chatbuf configuration
# Location: ~/.config/chatbuf/config.toml
# This file uses TOML format: https://toml.io

# Directory for credentials and the debug log (default: ~/.local/share/chatbuf)
# data_directory = "~/.local/share/chatbuf"

# Chat backend: "openai", "openrouter", "ollama" or "anthropic"
provider = "openai"

# Model to use. Leave unset for the provider default (openai: gpt-4o)
# model = "gpt-4o"

# Override the API endpoint (e.g. an OpenAI-compatible proxy)
# base_url = "https://api.openai.com/v1"

# Seconds to wait for a reply before giving up (0 = wait forever)
request_timeout_seconds = 120

# Render assistant replies as markdown in the conversation view
render_markdown = true

[credentials]
# "plaintext" stores API keys in <data_directory>/credentials.toml (0600)
# "ssh_key" encrypts them with a key derived from an SSH private key
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

[keybindings.modifiers]
primary = "alt"          # Options: alt, ctrl, meta, super

[keybindings.actions]
# Per-action overrides, for example:
#   send = "ctrl+s"
#   new_conversation = "ctrl+n"
#   yank_last_response = "ctrl+y"
`
}
