package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// Hard floors for the dispatch settings. Values below these are bumped
// up rather than rejected.
const (
	MinConcurrency          = 1
	MinTimeoutSeconds       = 1
	DefaultMaxConcurrency   = 10
	DefaultConnectTimeout   = 30
	DefaultTotalTimeout     = 60
	DefaultRetryMaxAttempts = 1
)

// The global, read-only config variable.
var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads the config file, parses it, and initializes the global cfg variable.
// It ensures that the configuration is set only once.
func LoadConfig(configFile string) (*Config, error) {
	var err error
	once.Do(func() {
		cfg, err = Parse(configFile)
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

// Parse reads and validates a config file without touching the global state.
func Parse(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	v.SetDefault("dispatch.max_concurrency", DefaultMaxConcurrency)
	v.SetDefault("dispatch.connect_timeout_seconds", DefaultConnectTimeout)
	v.SetDefault("dispatch.total_timeout_seconds", DefaultTotalTimeout)
	v.SetDefault("dispatch.user_agent", "quiver/1.0")
	v.SetDefault("client.connect_timeout_seconds", DefaultConnectTimeout)
	v.SetDefault("client.total_timeout_seconds", DefaultTotalTimeout)
	v.SetDefault("client.user_agent", "quiver/1.0")
	v.SetDefault("client.retry.max_attempts", DefaultRetryMaxAttempts)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("batch", []BatchEntry{})

	// Read in the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal the config into the Config struct
	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyFloors(&configuration)

	return &configuration, nil
}

// applyFloors clamps every tunable to its documented minimum.
func applyFloors(c *Config) {
	if c.Dispatch.MaxConcurrency < MinConcurrency {
		c.Dispatch.MaxConcurrency = MinConcurrency
	}
	if c.Dispatch.ConnectTimeoutSeconds < MinTimeoutSeconds {
		c.Dispatch.ConnectTimeoutSeconds = MinTimeoutSeconds
	}
	if c.Dispatch.TotalTimeoutSeconds < MinTimeoutSeconds {
		c.Dispatch.TotalTimeoutSeconds = MinTimeoutSeconds
	}
	if c.Client.ConnectTimeoutSeconds < MinTimeoutSeconds {
		c.Client.ConnectTimeoutSeconds = MinTimeoutSeconds
	}
	if c.Client.TotalTimeoutSeconds < MinTimeoutSeconds {
		c.Client.TotalTimeoutSeconds = MinTimeoutSeconds
	}
	if c.Client.Retry.MaxAttempts < 1 {
		c.Client.Retry.MaxAttempts = 1
	}
}

// Current returns the loaded configuration, or nil if LoadConfig has not
// run. Callers that can degrade gracefully use this instead of GetConfig.
func Current() *Config {
	return cfg
}

// GetConfig returns the loaded configuration.
// It panics if the configuration has not been set.
func GetConfig() *Config {
	if cfg == nil {
		panic("Config has not been set! Call LoadConfig first.")
	}
	return cfg
}
