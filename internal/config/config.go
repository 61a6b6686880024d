package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for ScanHub
type Config struct {
	// Directory containing raw scanner reports
	ReportsDir string `mapstructure:"reports_dir"`

	// Storage configuration for the run archive
	StorageDir string `mapstructure:"storage_dir"`

	// Risk score threshold for CI/CD failure
	FailThreshold int `mapstructure:"fail_threshold"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Number of last runs to analyze
	LastRuns int `mapstructure:"last_runs"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ReportsDir:    "reports",
		StorageDir:    ".scanhub",
		FailThreshold: 0, // 0 means no threshold check
		Format:        "text",
		LastRuns:      7,
		Verbose:       false,
		Debug:         false,
	}
}

// LoadFromFile loads configuration from a specific file path with the
// following precedence (lowest to highest): defaults, config file,
// environment variables (SCANHUB_*), CLI flags (handled by caller).
// If path is empty, it searches for config in standard locations.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("reports_dir", defaults.ReportsDir)
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("fail_threshold", defaults.FailThreshold)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("last_runs", defaults.LastRuns)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	// Set config file settings
	v.SetConfigName("scanhub")
	v.SetConfigType("yaml")

	if configPath != "" {
		// Use explicit config file path
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. Home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// 3. XDG config directory
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "scanhub"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("SCANHUB")
	v.AutomaticEnv()

	// Try to read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		// Only return error if it's not a "file not found" error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate format
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	// Validate threshold (can't be negative)
	if c.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold cannot be negative")
	}

	// Validate last_runs (must be positive)
	if c.LastRuns <= 0 {
		return fmt.Errorf("last_runs must be positive")
	}

	// Validate storage_dir is not empty
	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	// Validate reports_dir is not empty
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir cannot be empty")
	}

	return nil
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	// Expand ~ to home directory
	if len(c.StorageDir) >= 2 && c.StorageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// ShouldFailOnThreshold checks if the risk score exceeds the threshold
func (c *Config) ShouldFailOnThreshold(riskScore int) bool {
	if c.FailThreshold == 0 {
		return false // No threshold check
	}
	return riskScore > c.FailThreshold
}

// ConfigPath returns the path where the config file is expected,
// preferring an existing file in the standard search locations.
func ConfigPath() string {
	if _, err := os.Stat("scanhub.yaml"); err == nil {
		return "scanhub.yaml"
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		candidate := filepath.Join(xdgConfig, "scanhub", "scanhub.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "scanhub.yaml")
	}

	return "scanhub.yaml"
}

// WriteDefaultConfig writes the sample configuration to the given path.
// Refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GenerateSampleConfig()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# ScanHub Configuration
# Save this file as ~/scanhub.yaml or ./scanhub.yaml

# Directory containing raw scanner reports
reports_dir: reports

# Directory to store normalized reports for trend analysis
storage_dir: .scanhub

# Fail threshold for CI/CD (exit code 1 if the risk score exceeds this number)
# Set to 0 to disable threshold checking
fail_threshold: 0

# Output format: text, json, or both
format: text

# Number of last runs to analyze in summarize command
last_runs: 7

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
