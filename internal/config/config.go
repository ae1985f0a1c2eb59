// Package config loads the immutable Configuration every component takes
// at construction. There are no process-wide mutable globals: the struct
// is built once from defaults, an optional YAML file, and environment
// variables, then passed by value.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the CLI.
type Config struct {
	Project      string        `mapstructure:"project"`
	Region       string        `mapstructure:"region"`
	CachePath    string        `mapstructure:"cache_path"`
	ArtifactPath string        `mapstructure:"artifact_path"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	LogLevel     string        `mapstructure:"log_level"`
	Direct       DirectConfig  `mapstructure:"direct"`
	Gateway      GatewayConfig `mapstructure:"gateway"`
}

// DirectConfig holds direct-API family settings.
type DirectConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	ThinkingBudget int    `mapstructure:"thinking_budget"`
}

// GatewayConfig holds gateway family settings.
type GatewayConfig struct {
	MaxTokens int `mapstructure:"max_tokens"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("region", "global")
	v.SetDefault("cache_path", filepath.Join(defaultStateDir(), "models.json"))
	v.SetDefault("artifact_path", filepath.Join(defaultStateDir(), "last-response.json"))
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("direct.model", "gemini-3-pro-preview")
	v.SetDefault("direct.max_tokens", 65536)
	v.SetDefault("direct.thinking_budget", 0)
	v.SetDefault("gateway.max_tokens", 32000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ask")
	}

	v.SetEnvPrefix("ASK")
	v.AutomaticEnv()

	_ = v.BindEnv("project", "GOOGLE_CLOUD_PROJECT")
	_ = v.BindEnv("direct.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("region", "ASK_REGION")
	_ = v.BindEnv("log_level", "ASK_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ask")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ask")
	}
	return filepath.Join(home, ".local", "state", "ask")
}
