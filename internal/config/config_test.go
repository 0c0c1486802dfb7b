package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeServer {
		t.Errorf("Expected default mode to be 'server', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.ServerName != "cardkit" {
		t.Errorf("Expected default server name to be 'cardkit', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 10*1024*1024 {
		t.Errorf("Expected default max file size to be 10MB, got %d", cfg.MaxFileSize)
	}

	if cfg.AIProvider != ProviderOpenAI {
		t.Errorf("Expected default provider to be 'openai', got '%s'", cfg.AIProvider)
	}

	if cfg.AIEnabled() {
		t.Error("Expected AI to be disabled without an API key")
	}

	currentDir, _ := os.Getwd()
	if cfg.WorkDirectory != currentDir {
		t.Errorf("Expected default work directory to be '%s', got '%s'", currentDir, cfg.WorkDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid stdio mode ignores port",
			mutate: func(c *Config) { c.Mode = ModeStdio; c.Port = 0 },
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "grpc" },
			wantErr: "mode must be either",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:    "empty directory",
			mutate:  func(c *Config) { c.WorkDirectory = "" },
			wantErr: "working directory cannot be empty",
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.AIProvider = "anthropic" },
			wantErr: "invalid ai provider",
		},
		{
			name:   "gemini provider",
			mutate: func(c *Config) { c.AIProvider = ProviderGemini },
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WorkDirectory = tempDir
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "cards", "out")

	cfg := DefaultConfig()
	cfg.WorkDirectory = newDir

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() should create missing directory, got: %v", err)
	}

	if _, err := os.Stat(newDir); err != nil {
		t.Errorf("Expected directory %s to exist: %v", newDir, err)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9000

	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %s, want 0.0.0.0:9000", got)
	}
}

func TestConfigModes(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("default config should be in server mode")
	}

	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("stdio config should report stdio mode")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug() should be true for debug level")
	}
}

func TestConfigStringHidesAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AIAPIKey = "sk-secret-value"

	s := cfg.String()
	if strings.Contains(s, "sk-secret-value") {
		t.Errorf("String() leaked the API key: %s", s)
	}
	if !strings.Contains(s, "AIEnabled: true") {
		t.Errorf("String() = %s, want AIEnabled: true", s)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	tests := []struct {
		name     string
		provider string
		explicit string
		want     string
	}{
		{"openai fallback", ProviderOpenAI, "", "openai-key"},
		{"gemini fallback", ProviderGemini, "", "gemini-key"},
		{"explicit wins", ProviderOpenAI, "explicit", "explicit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AIProvider = tt.provider
			cfg.AIAPIKey = tt.explicit
			cfg.ResolveAPIKey()
			if cfg.AIAPIKey != tt.want {
				t.Errorf("ResolveAPIKey() = %q, want %q", cfg.AIAPIKey, tt.want)
			}
		})
	}
}
