// Package config handles the XDG configuration directory, its files, and config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "automator"

	// ConfigFile is the settings filename.
	ConfigFile = "config.yaml"

	// DatabaseFile is the default SQLite database filename.
	DatabaseFile = "automator.db"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Settings is the content of config.yaml.
type Settings struct {
	// OwnerID is the registered user every command acts as.
	OwnerID string `yaml:"owner_id"`

	// Timezone is the IANA zone used to resolve "today". "Local" or empty means the system zone.
	Timezone string `yaml:"timezone"`

	Store StoreConfig `yaml:"store"`
	Model ModelConfig `yaml:"model"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path,omitempty"`
	MongoURL string `yaml:"mongo_url,omitempty"`
	Database string `yaml:"database"`
}

// ModelConfig configures the generative model used for extraction.
type ModelConfig struct {
	APIKey      string        `yaml:"api_key,omitempty"`
	Name        string        `yaml:"name"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		Timezone: "Local",
		Store: StoreConfig{
			Driver:   DriverSQLite,
			Database: "todo_app",
		},
		Model: ModelConfig{
			Name:        "gemini-2.0-flash",
			Temperature: 0.7,
			Timeout:     30 * time.Second,
		},
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are the effective settings: config.yaml plus environment overrides.
	Settings

	// file holds what config.yaml says, so Save never persists environment values.
	file Settings
}

// New creates a Config for the default or specified config directory and loads
// config.yaml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/automator or $HOME/.config/automator.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	c := &Config{Dir: dir}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) load() error {
	c.file = DefaultSettings()

	data, err := os.ReadFile(c.Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c.file); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	c.Settings = c.file
	c.applyEnvOverrides()
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if url := os.Getenv("MONGO_URL"); url != "" {
		c.Store.MongoURL = url
		c.Store.Driver = DriverMongo
	}
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		c.Store.Database = name
	}
	if owner := os.Getenv("AUTOMATOR_OWNER"); owner != "" {
		c.OwnerID = owner
	}
}

// Validate checks the effective settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverMongo:
		if c.Store.MongoURL == "" {
			return fmt.Errorf("store.mongo_url is required for the mongo driver (or set MONGO_URL)")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2")
	}
	return nil
}

// SetOwner records the registered user in both the effective and the saved settings.
func (c *Config) SetOwner(id string) {
	c.OwnerID = id
	c.file.OwnerID = id
}

// Save writes config.yaml with mode 0600.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c.file)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Path returns the path to config.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DatabasePath returns the SQLite database path.
func (c *Config) DatabasePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
