package app

import (
	"os"

	"github.com/agentstation/signalmap/internal/config"
)

// Config holds the CLI settings. Engine settings are loaded separately
// once the --config flag is known.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string

	// Engine is the loaded engine configuration.
	Engine *config.Config
}

// LoadConfig reads the CLI settings from the environment.
func LoadConfig() *Config {
	return &Config{
		Format:      os.Getenv("SIGNALMAP_FORMAT"),
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		Engine:      config.Default(),
	}
}

// UpdateFromFlags updates config values from parsed command flags, which
// take precedence over the environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
