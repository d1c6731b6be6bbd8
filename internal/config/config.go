package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Storage backends understood by the CLI.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Backends lists every valid backend name.
var Backends = []string{BackendLevelDB, BackendBolt, BackendSQLite, BackendMemory}

// Config represents the greminder configuration
type Config struct {
	Backend     string `yaml:"backend" json:"backend"`
	DBPath      string `yaml:"db_path,omitempty" json:"db_path,omitempty"`
	LogLevel    string `yaml:"log_level" json:"log_level"`
	ResultLimit int    `yaml:"result_limit" json:"result_limit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendLevelDB,
		LogLevel:    "warn",
		ResultLimit: 0,
	}
}

// Validate checks the configuration values. Field errors are keyed by
// their json tag.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendLevelDB, BackendBolt, BackendSQLite, BackendMemory)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.ResultLimit, validation.Min(0), validation.Max(10000)),
	)
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// ResolveDBPath returns DBPath, or the default location for the backend.
func (c *Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return DefaultDBPath(c.Backend)
}

// DataDir returns $XDG_DATA_HOME/greminder, falling back to
// ~/.local/share/greminder.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "greminder"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "greminder"), nil
}

// DefaultDBPath returns the default database location for backend.
func DefaultDBPath(backend string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}

	switch backend {
	case BackendBolt:
		return filepath.Join(dir, "greminder.bolt"), nil
	case BackendSQLite:
		return filepath.Join(dir, "greminder.sqlite"), nil
	default:
		return filepath.Join(dir, "greminder.db"), nil
	}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "greminder")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	config, err := cm.Read()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Read is Load without validation, so that a file holding bad values can
// still be inspected and corrected. Empty fields get their defaults.
func (cm *ConfigManager) Read() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	setDefaults(config)
	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateAndSetDefaults fills empty fields with defaults, then validates.
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	setDefaults(config)
	return config.Validate()
}

func setDefaults(config *Config) {
	defaults := DefaultConfig()
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Read()
	if err != nil {
		return err
	}

	switch key {
	case "backend":
		config.Backend = value
	case "db-path":
		config.DBPath = value
	case "log-level":
		config.LogLevel = value
	case "result-limit":
		limit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for result-limit: %s", value)
		}
		config.ResultLimit = limit
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Read()
	if err != nil {
		return "", err
	}

	values := listValues(config)
	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Read()
	if err != nil {
		return nil, err
	}
	return listValues(config), nil
}

func listValues(config *Config) map[string]string {
	result := map[string]string{
		"backend":      config.Backend,
		"db-path":      config.DBPath,
		"log-level":    config.LogLevel,
		"result-limit": strconv.Itoa(config.ResultLimit),
	}

	if result["db-path"] == "" {
		result["db-path"] = "[default]"
	}

	return result
}
