package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Store backends
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// AppConfig is the process configuration assembled from flags, the
// environment and an optional config file
type AppConfig struct {
	ConfigName    string `mapstructure:"config-name"`
	Store         string `mapstructure:"store"`
	ConfigDir     string `mapstructure:"config-dir"`
	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPrefix   string `mapstructure:"redis-prefix"`
	LogDir        string `mapstructure:"log-dir"`
	LogLevel      string `mapstructure:"log-level"`
	AdapterURL    string `mapstructure:"adapter-url"`
	LiveSplitHost string `mapstructure:"livesplit-host"`
	LiveSplitPort int    `mapstructure:"livesplit-port"`
	HealthAddr    string `mapstructure:"health-addr"`
	Segments      int    `mapstructure:"segments"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("config-name", "")
	v.SetDefault("store", StoreFile)
	v.SetDefault("config-dir", "./configs/splits")
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("redis-prefix", "jumpking:splits:")
	v.SetDefault("log-dir", "./logs")
	v.SetDefault("log-level", "info")
	v.SetDefault("adapter-url", "ws://localhost:35000/autosplitter")
	v.SetDefault("livesplit-host", "localhost")
	v.SetDefault("livesplit-port", 1990)
	v.SetDefault("health-addr", "localhost:50051")
	v.SetDefault("segments", 0)
}

// LoadAppConfig decodes and validates the process configuration
func LoadAppConfig(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be defaulted sensibly
func (c *AppConfig) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.ConfigDir == "" {
			return fmt.Errorf("store 'file' requires 'config-dir'")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("store 'redis' requires 'redis-addr'")
		}
	default:
		return fmt.Errorf("unknown store '%s' (want '%s' or '%s')", c.Store, StoreFile, StoreRedis)
	}

	if c.AdapterURL == "" {
		return fmt.Errorf("'adapter-url' is required")
	}
	if c.LiveSplitPort <= 0 || c.LiveSplitPort > 65535 {
		return fmt.Errorf("invalid 'livesplit-port' %d", c.LiveSplitPort)
	}
	if c.Segments < 0 {
		return fmt.Errorf("'segments' cannot be negative")
	}
	return nil
}
