package slidegen

import (
	"os"
	"strconv"
	"sync"
)

// Config contains all configuration options for the slidegen generator
type Config struct {
	// RowsPerPage is the number of ranked rows per summary page. It must match
	// the row count of the template's summary table.
	RowsPerPage int
	// UnitSuffix is appended to every formatted group total.
	UnitSuffix string
	// LogLevel controls the verbosity of logging (debug, info, warn, error)
	LogLevel string
	// KeepIntermediates disables deletion of split and part files, which is
	// useful when inspecting a misbehaving template.
	KeepIntermediates bool
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	// Initialize global config from environment on first use
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RowsPerPage:       9,
		UnitSuffix:        "万",
		LogLevel:          "info",
		KeepIntermediates: false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// SLIDEGEN_ROWS_PER_PAGE
	if val := os.Getenv("SLIDEGEN_ROWS_PER_PAGE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			config.RowsPerPage = n
		}
	}

	// SLIDEGEN_UNIT_SUFFIX
	if val := os.Getenv("SLIDEGEN_UNIT_SUFFIX"); val != "" {
		config.UnitSuffix = val
	}

	// SLIDEGEN_LOG_LEVEL
	if val := os.Getenv("SLIDEGEN_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// SLIDEGEN_KEEP_INTERMEDIATES
	if val := os.Getenv("SLIDEGEN_KEEP_INTERMEDIATES"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.KeepIntermediates = b
		}
	}

	return config
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent accidental modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig replaces the global configuration
func SetGlobalConfig(config *Config) {
	if config == nil {
		config = DefaultConfig()
	}

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}
