package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// SecurityMethod defines the credential storage method
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// ErrCredentialNotFound is returned when no API key is stored for a service.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialError reports that the API key for Service could not be
// retrieved. Err is ErrCredentialNotFound or the reason the store failed to
// load.
type CredentialError struct {
	Service string
	Err     error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("no API key available for %q: %v", e.Service, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// Instructions tells the user how to provision the missing key.
func (e *CredentialError) Instructions() string {
	return fmt.Sprintf("Store a key with:\n  chatbuf auth set %s <api-key>\n\nor export %s before starting chatbuf.",
		e.Service, EnvVarForService(e.Service))
}

// EnvVarForService returns the environment variable consulted before the
// store for service, e.g. OPENAI_API_KEY for "openai".
func EnvVarForService(service string) string {
	name := strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
	return name + "_API_KEY"
}

// CredentialStore manages encrypted or plain-text API credentials
type CredentialStore struct {
	method      SecurityMethod
	credentials map[string]string // service → API key
	sshKeyPath  string            // path to SSH key (ssh_key method only)
	passphrase  string            // Optional passphrase for encrypted keys
	encManager  *EncryptionManager
	loadErr     error
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
		sshKeyPath:  sshKeyPath,
	}
}

// SetPassphrase sets the passphrase for decrypting the SSH key
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.passphrase = passphrase
	if c.encManager != nil {
		c.encManager.SetPassphrase(passphrase)
	}
}

// Load loads credentials from disk based on the configured security method.
// The error is also remembered and returned by later Lookup calls.
func (c *CredentialStore) Load(dataDir string) error {
	var creds map[string]string
	var err error

	switch c.method {
	case SecurityPlainText:
		creds, err = loadPlainText(dataDir)
	case SecuritySSHKey:
		creds, err = c.loadSSHEncrypted(dataDir)
	default:
		err = fmt.Errorf("unknown security method: %s", c.method)
	}

	c.loadErr = err
	if err != nil {
		return err
	}
	if creds == nil {
		creds = make(map[string]string)
	}
	c.credentials = creds
	return nil
}

// Save saves credentials to disk based on the configured security method
func (c *CredentialStore) Save(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		return savePlainText(dataDir, c.credentials)
	case SecuritySSHKey:
		return c.saveSSHEncrypted(dataDir)
	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Lookup returns the API key for service. The environment variable named by
// EnvVarForService wins over the store. Failures are *CredentialError.
func (c *CredentialStore) Lookup(service string) (string, error) {
	if key := os.Getenv(EnvVarForService(service)); key != "" {
		return key, nil
	}
	if c.loadErr != nil {
		return "", &CredentialError{Service: service, Err: c.loadErr}
	}
	if key := c.credentials[service]; key != "" {
		return key, nil
	}
	return "", &CredentialError{Service: service, Err: ErrCredentialNotFound}
}

// Get retrieves a stored credential, ignoring the environment
func (c *CredentialStore) Get(service string) string {
	return c.credentials[service]
}

// Set stores a credential for a service
func (c *CredentialStore) Set(service string, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key for %s cannot be empty", service)
	}
	c.credentials[service] = apiKey
	c.loadErr = nil
	return nil
}

// Delete removes a credential for a service
func (c *CredentialStore) Delete(service string) error {
	delete(c.credentials, service)
	return nil
}

// Services returns the services that have a stored key, sorted.
func (c *CredentialStore) Services() []string {
	services := make([]string, 0, len(c.credentials))
	for s := range c.credentials {
		services = append(services, s)
	}
	sort.Strings(services)
	return services
}

// GetMethod returns the current security method
func (c *CredentialStore) GetMethod() SecurityMethod {
	return c.method
}

// credentialsPath returns the path to the plain text credentials file
func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

// encryptedCredentialsPath returns the path to the encrypted credentials file
func encryptedCredentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.enc")
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

// ===== Plain Text Storage =====

func loadPlainText(dataDir string) (map[string]string, error) {
	path := credentialsPath(dataDir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return cf.Credentials, nil
}

// savePlainText saves credentials to plain text TOML file with 0600 permissions
func savePlainText(dataDir string, creds map[string]string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(credentialsPath(dataDir), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(credentialsFile{Credentials: creds}); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	return nil
}

// ===== SSH Key Encrypted Storage =====

func (c *CredentialStore) ensureEncryption() error {
	// Reinitialize if manager doesn't exist OR if we now have a passphrase
	if c.encManager != nil && c.passphrase == "" {
		return nil
	}
	c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
	c.encManager.SetPassphrase(c.passphrase)
	if err := c.encManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize encryption: %w", err)
	}
	return nil
}

func (c *CredentialStore) loadSSHEncrypted(dataDir string) (map[string]string, error) {
	path := encryptedCredentialsPath(dataDir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	if err := c.ensureEncryption(); err != nil {
		return nil, err
	}

	encryptedData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted credentials: %w", err)
	}

	decryptedData, err := c.encManager.Decrypt(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(decryptedData, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}

	return creds, nil
}

func (c *CredentialStore) saveSSHEncrypted(dataDir string) error {
	if err := c.ensureEncryption(); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(c.credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encryptedData, err := c.encManager.Encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(encryptedCredentialsPath(dataDir), encryptedData, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}

	return nil
}
