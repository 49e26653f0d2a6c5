package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/tidyfiles/chronosort/chronosort"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Organize OrganizeConfig `mapstructure:"organize"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// OrganizeConfig stores settings for the organize and reverse passes.
type OrganizeConfig struct {
	WorkerCount  int    `mapstructure:"workerCount"`
	UseExifDates bool   `mapstructure:"useExifDates"`
	IgnoreFile   string `mapstructure:"ignoreFile"`
}

// WatchConfig stores settings for watch mode.
type WatchConfig struct {
	DebounceMs    int `mapstructure:"debounceMs"`
	MaxDebounceMs int `mapstructure:"maxDebounceMs"`
	QueueCapacity int `mapstructure:"queueCapacity"`
}

// DebounceDelay returns the quiet window as a duration.
func (w WatchConfig) DebounceDelay() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// MaxDebounceDelay returns the forced-flush window as a duration.
func (w WatchConfig) MaxDebounceDelay() time.Duration {
	return time.Duration(w.MaxDebounceMs) * time.Millisecond
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("organize.workerCount", 0)
	viper.SetDefault("organize.useExifDates", false)
	viper.SetDefault("organize.ignoreFile", internal.DefaultIgnoreFile)
	viper.SetDefault("watch.debounceMs", 500)
	viper.SetDefault("watch.maxDebounceMs", 5000)
	viper.SetDefault("watch.queueCapacity", 100)

	viper.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
