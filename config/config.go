package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type CredentialsConfig struct {
	Method     SecurityMethod `toml:"method"`
	SSHKeyPath string         `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	DataDirectory         string            `toml:"data_directory"`
	Provider              string            `toml:"provider"`
	Model                 string            `toml:"model"`
	BaseURL               string            `toml:"base_url,omitempty"`
	RequestTimeoutSeconds int               `toml:"request_timeout_seconds"`
	RenderMarkdown        bool              `toml:"render_markdown"`
	Credentials           CredentialsConfig `toml:"credentials"`
	KeyBindings           KeyBindingsConfig `toml:"keybindings"`
}

type Config struct {
	DataDirectory   string
	Provider        string
	Model           string
	BaseURL         string
	RequestTimeout  time.Duration
	RenderMarkdown  bool
	CredentialStore *CredentialStore
	KeyBindings     *KeyBindingsConfig
}

var Debug = false

// DebugLog is a no-op until InitDebugLog opens the log file. The terminal
// belongs to the UI, so nothing is ever logged to stderr.
var DebugLog = zerolog.Nop()

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if provider := os.Getenv("CHATBUF_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if model := os.Getenv("CHATBUF_MODEL"); model != "" {
		c.Model = model
	}
	if baseURL := os.Getenv("CHATBUF_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}
	if dataDir := os.Getenv("CHATBUF_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if timeout := os.Getenv("CHATBUF_REQUEST_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs >= 0 {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("CHATBUF_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog points DebugLog at <dataDir>/debug.log when debugging is
// enabled by CHATBUF_DEBUG or force.
func InitDebugLog(dataDir string, force bool) {
	if !force && !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: prompts and replies end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = zerolog.New(f).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	DebugLog.Info().Str("path", logPath).Msg("debug logging started")
}

// Load reads config.toml (writing the template on first run) and applies
// environment overrides on top of it.
func Load() (*Config, error) {
	userCfg, err := LoadUserConfig(GetSettingsFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{
		DataDirectory:  userCfg.DataDirectory,
		Provider:       userCfg.Provider,
		Model:          userCfg.Model,
		BaseURL:        userCfg.BaseURL,
		RequestTimeout: time.Duration(userCfg.RequestTimeoutSeconds) * time.Second,
		RenderMarkdown: userCfg.RenderMarkdown,
		KeyBindings:    &userCfg.KeyBindings,
	}
	cfg.applyEnvOverrides()

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDir()
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	method := userCfg.Credentials.Method
	if method == "" {
		method = SecurityPlainText
	}
	sshKeyPath := ExpandPath(userCfg.Credentials.SSHKeyPath)
	if method == SecuritySSHKey && sshKeyPath == "" {
		if keys, err := FindSSHKeys(); err == nil && len(keys) > 0 {
			sshKeyPath = keys[0]
		}
	}
	store := NewCredentialStore(method, sshKeyPath)
	store.SetPassphrase(os.Getenv("CHATBUF_SSH_PASSPHRASE"))
	// A failed load is kept on the store and reported by Lookup, so a broken
	// credentials file only matters once a key is actually needed.
	_ = store.Load(dataDir)
	cfg.CredentialStore = store

	return cfg, nil
}
