// Package config provides configuration management for the ball-tree builder.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all tunable configuration for the ball-tree builder.
// The three mandatory build parameters (n_dims, n_points, seed) are CLI
// positional arguments, not config - their contract is fixed by the output
// spec and isn't meant to be overridden by a file or environment variable.
type Config struct {
	Build BuildConfig `mapstructure:"build"`
	Log   LogConfig   `mapstructure:"log"`
}

// BuildConfig holds tree-construction tuning knobs that don't belong on the
// CLI line (process/thread counts do - see cmd/cli/cmd).
type BuildConfig struct {
	// PSRSSampleFactor is an oversampling multiplier applied on top of the
	// per-rank regular sample count, to smooth pivot selection on skewed
	// projection distributions.
	PSRSSampleFactor int `mapstructure:"psrs_sample_factor"`

	// PoolBufferSize is passed to point generation as the worker-pool
	// TaskBufferSize (0 keeps the pool's default). Point generation runs on
	// parallel.ChunkProcessor, which starts one goroutine per chunk and has
	// no task channel, so the value does not change how points are generated.
	PoolBufferSize int `mapstructure:"pool_buffer_size"`

	// ProjectionPoolInitialCap is the initial capacity handed to the
	// per-recursion-frame projection buffer pool.
	ProjectionPoolInitialCap int `mapstructure:"projection_pool_initial_cap"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load reads configuration from the specified file path, falling back to
// built-in defaults when no file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ballalg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/ballalg")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file, defaults stand
		} else if os.IsNotExist(err) {
			// explicit path doesn't exist, defaults stand
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("build.psrs_sample_factor", 1)
	v.SetDefault("build.pool_buffer_size", 0)
	v.SetDefault("build.projection_pool_initial_cap", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Build.PSRSSampleFactor < 1 {
		return fmt.Errorf("build.psrs_sample_factor must be at least 1")
	}
	if c.Build.ProjectionPoolInitialCap < 1 {
		return fmt.Errorf("build.projection_pool_initial_cap must be at least 1")
	}
	return nil
}
