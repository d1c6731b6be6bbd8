package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Backend != BackendLevelDB {
		t.Errorf("Expected default backend %s, got %s", BackendLevelDB, config.Backend)
	}

	if config.LogLevel != "warn" {
		t.Errorf("Expected default log level warn, got %s", config.LogLevel)
	}

	if config.DBPath != "" {
		t.Errorf("Expected default db path empty, got %s", config.DBPath)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfigManager_LoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	config, err := cm.Load()
	if err != nil {
		t.Fatalf("Expected no error loading non-existent config, got: %v", err)
	}

	expectedDefault := DefaultConfig()
	if *config != *expectedDefault {
		t.Errorf("Expected default config %+v, got %+v", expectedDefault, config)
	}
}

func TestConfigManager_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	testConfig := &Config{
		Backend:     BackendBolt,
		DBPath:      "/custom/path.bolt",
		LogLevel:    "debug",
		ResultLimit: 25,
	}

	if err := cm.Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedConfig, err := cm.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loadedConfig != *testConfig {
		t.Errorf("Expected %+v, got %+v", testConfig, loadedConfig)
	}
}

func TestConfigManager_LoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("backend: sqlite\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := NewConfigManagerWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Backend != BackendSQLite {
		t.Errorf("Expected backend sqlite, got %s", config.Backend)
	}
	if config.LogLevel != "warn" {
		t.Errorf("Expected default log level warn, got %s", config.LogLevel)
	}
}

func TestConfigManager_LoadInvalidFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("backend: [unclosed\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := NewConfigManagerWithPath(configPath).Load(); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}

func TestConfigManager_Validation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		config      *Config
		expectError bool
		field       string
	}{
		{
			name:        "valid config",
			config:      &Config{Backend: BackendSQLite, LogLevel: "info", ResultLimit: 10},
			expectError: false,
		},
		{
			name:        "empty fields use defaults",
			config:      &Config{},
			expectError: false,
		},
		{
			name:        "unknown backend",
			config:      &Config{Backend: "redis"},
			expectError: true,
			field:       "backend",
		},
		{
			name:        "unknown log level",
			config:      &Config{LogLevel: "verbose"},
			expectError: true,
			field:       "log_level",
		},
		{
			name:        "negative result limit",
			config:      &Config{ResultLimit: -5},
			expectError: true,
			field:       "result_limit",
		},
		{
			name:        "excessive result limit",
			config:      &Config{ResultLimit: 20000},
			expectError: true,
			field:       "result_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Save(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				} else if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("Expected error mentioning %s, got '%s'", tt.field, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestConfigManager_Update(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		key         string
		value       string
		expectError bool
	}{
		{"valid backend", "backend", "bolt", false},
		{"valid db-path", "db-path", "/custom/path", false},
		{"valid log-level", "log-level", "debug", false},
		{"valid result-limit", "result-limit", "100", false},
		{"invalid key", "invalid-key", "value", true},
		{"invalid backend", "backend", "redis", true},
		{"invalid result-limit", "result-limit", "not-a-number", true},
		{"invalid log-level", "log-level", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Update(tt.key, tt.value)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", tt.name, err)
			}

			retrievedValue, err := cm.Get(tt.key)
			if err != nil {
				t.Errorf("Failed to get value after update: %v", err)
			} else if retrievedValue != tt.value {
				t.Errorf("Expected retrieved value %s, got %s", tt.value, retrievedValue)
			}
		})
	}
}

func TestConfigManager_UpdateRepairsInvalidFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("backend: foo\nresult_limit: 7\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	cm := NewConfigManagerWithPath(configPath)

	if _, err := cm.Load(); err == nil {
		t.Fatal("Expected Load to reject backend foo")
	}
	if value, err := cm.Get("backend"); err != nil || value != "foo" {
		t.Errorf("Get(backend) = %q, %v, want foo", value, err)
	}

	// A change that leaves the file invalid is refused.
	if err := cm.Update("log-level", "debug"); err == nil {
		t.Error("Expected Update to fail while backend is still invalid")
	}

	if err := cm.Update("backend", BackendBolt); err != nil {
		t.Fatalf("Update(backend) failed: %v", err)
	}
	config, err := cm.Load()
	if err != nil {
		t.Fatalf("Load after repair failed: %v", err)
	}
	if config.Backend != BackendBolt || config.ResultLimit != 7 {
		t.Errorf("Expected bolt with result limit 7, got %+v", config)
	}
}

func TestConfigManager_List(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	values, err := cm.List()
	if err != nil {
		t.Fatalf("Failed to list default config: %v", err)
	}

	expectedKeys := []string{"backend", "db-path", "log-level", "result-limit"}
	for _, key := range expectedKeys {
		if _, exists := values[key]; !exists {
			t.Errorf("Expected key %s to exist in list output", key)
		}
	}

	if values["db-path"] != "[default]" {
		t.Errorf("Expected default db-path [default], got %s", values["db-path"])
	}
	if values["result-limit"] != "0" {
		t.Errorf("Expected default result-limit 0, got %s", values["result-limit"])
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelWarn},
	}

	for _, tt := range tests {
		config := &Config{LogLevel: tt.level}
		if got := config.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%s) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	tests := []struct {
		backend string
		file    string
	}{
		{BackendLevelDB, "greminder.db"},
		{BackendBolt, "greminder.bolt"},
		{BackendSQLite, "greminder.sqlite"},
	}

	for _, tt := range tests {
		path, err := DefaultDBPath(tt.backend)
		if err != nil {
			t.Fatalf("DefaultDBPath(%s) error: %v", tt.backend, err)
		}
		want := filepath.Join(dataHome, "greminder", tt.file)
		if path != want {
			t.Errorf("DefaultDBPath(%s) = %s, want %s", tt.backend, path, want)
		}
	}

	config := &Config{Backend: BackendBolt, DBPath: "/explicit"}
	if path, _ := config.ResolveDBPath(); path != "/explicit" {
		t.Errorf("ResolveDBPath() = %s, want /explicit", path)
	}
}

func TestConfigManager_GetConfigPath(t *testing.T) {
	configPath := "/test/config/path.yaml"
	cm := NewConfigManagerWithPath(configPath)

	if cm.GetConfigPath() != configPath {
		t.Errorf("Expected config path %s, got %s", configPath, cm.GetConfigPath())
	}
}

func TestNewConfigManager(t *testing.T) {
	cm, err := NewConfigManager()
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	configPath := cm.GetConfigPath()
	if !filepath.IsAbs(configPath) {
		t.Errorf("Expected absolute config path, got %s", configPath)
	}

	if !strings.HasSuffix(configPath, filepath.Join(".config", "greminder", "config.yaml")) {
		t.Errorf("Expected config path to end with .config/greminder/config.yaml, got %s", configPath)
	}
}
