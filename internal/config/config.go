package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// AI provider constants
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
	DefaultProvider    = ProviderOpenAI
	DefaultCORSOrigins = "http://localhost:3000"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "CARDKIT"
)

// Config holds all configuration for the card service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Working directory for file based MCP tools
	WorkDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum upload size in bytes
	CORSOrigins string

	// Completion service configuration. An empty APIKey disables AI and
	// forces the deterministic extraction paths.
	AIProvider string
	AIAPIKey   string
	AIModel    string
	AIBaseURL  string

	// SQLite file for templates and cards; empty keeps them in memory
	TemplatesDB string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeServer,
		Host:          DefaultHost,
		Port:          DefaultPort,
		WorkDirectory: currentDir,
		Version:       "1.0.0",
		ServerName:    "cardkit",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
		CORSOrigins:   DefaultCORSOrigins,
		AIProvider:    DefaultProvider,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.ResolveAPIKey()

	if cfg.WorkDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.WorkDirectory); err == nil {
			cfg.WorkDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.WorkDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("cors.origins", cfg.CORSOrigins)
	viper.SetDefault("ai.provider", cfg.AIProvider)
	viper.SetDefault("ai.apikey", "")
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.baseurl", "")
	viper.SetDefault("templates.db", "")
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.WorkDirectory, "Directory MCP file tools may read from and write to")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
	pflag.String("cors-origins", cfg.CORSOrigins, "Comma separated list of allowed CORS origins")
	pflag.String("ai-provider", cfg.AIProvider, "Completion provider: 'openai' or 'gemini'")
	pflag.String("ai-model", "", "Completion model (provider default when empty)")
	pflag.String("ai-base-url", "", "Override the completion API base URL")
	pflag.String("templates-db", "", "SQLite file for templates and cards (in-memory when empty)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("cors.origins", pflag.Lookup("cors-origins"))
	_ = viper.BindPFlag("ai.provider", pflag.Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", pflag.Lookup("ai-model"))
	_ = viper.BindPFlag("ai.baseurl", pflag.Lookup("ai-base-url"))
	_ = viper.BindPFlag("templates.db", pflag.Lookup("templates-db"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ncardkit - business card ingestion and re-typesetting service\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # HTTP API on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=9000         # HTTP API on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/cards  # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_DIR           Working directory\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_MAXFILESIZE   Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_AI_PROVIDER   Completion provider\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_AI_APIKEY     Completion API key (falls back to OPENAI_API_KEY / GEMINI_API_KEY)\n")
		fmt.Fprintf(os.Stderr, "  CARDKIT_TEMPLATES_DB  SQLite file for templates\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.WorkDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.CORSOrigins = viper.GetString("cors.origins")
	cfg.AIProvider = strings.ToLower(viper.GetString("ai.provider"))
	cfg.AIAPIKey = viper.GetString("ai.apikey")
	cfg.AIModel = viper.GetString("ai.model")
	cfg.AIBaseURL = viper.GetString("ai.baseurl")
	cfg.TemplatesDB = viper.GetString("templates.db")
}

// ResolveAPIKey fills an empty key from the provider's conventional variable
func (c *Config) ResolveAPIKey() {
	if c.AIAPIKey != "" {
		return
	}
	switch c.AIProvider {
	case ProviderOpenAI:
		c.AIAPIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderGemini:
		c.AIAPIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.WorkDirectory == "" {
		return errors.New("working directory cannot be empty")
	}

	if _, err := os.Stat(c.WorkDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.WorkDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create working directory %s: %w", c.WorkDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access working directory %s: %w", c.WorkDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.AIProvider != ProviderOpenAI && c.AIProvider != ProviderGemini {
		return fmt.Errorf("invalid ai provider: %s (must be one of: openai, gemini)", c.AIProvider)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// AIEnabled reports whether a completion credential is configured
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

// String returns a string representation of the configuration. The API key
// is never printed.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, WorkDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"AIProvider: %s, AIEnabled: %t, TemplatesDB: %q}",
		c.Mode, c.Host, c.Port, c.WorkDirectory, c.LogLevel, c.MaxFileSize,
		c.AIProvider, c.AIEnabled(), c.TemplatesDB)
}

// IsServerMode returns true if the service runs the HTTP API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service runs as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
