package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Player  PlayerConfig  `mapstructure:"player"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Keys    KeysConfig    `mapstructure:"keys"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig points at the trace generation service.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlayerConfig holds playback defaults.
type PlayerConfig struct {
	PredictionMode bool   `mapstructure:"prediction_mode"`
	StickyHover    bool   `mapstructure:"sticky_hover"`
	FramePath      string `mapstructure:"frame_path"`
}

// CatalogConfig holds the sqlite catalog location.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// KeysConfig points at an optional key override file.
type KeysConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig holds zap settings. The TUI owns the terminal so logs go to a file.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

// Path returns the config file location: explicit, then $STEPTHROUGH_CONFIG,
// then ~/.config/stepthrough/config.toml.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("STEPTHROUGH_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "stepthrough", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// STEPTHROUGH_. A missing config file is not an error; a malformed one is.
func Load(explicit string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("player.prediction_mode", true)
	v.SetDefault("player.sticky_hover", false)
	v.SetDefault("player.frame_path", "state.call_stack_state")
	v.SetDefault("catalog.path", filepath.Join(home, ".local", "share", "stepthrough", "catalog.db"))
	v.SetDefault("keys.file", filepath.Join(home, ".config", "stepthrough", "keys.toml"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "stepthrough", "stepthrough.log"))
	v.SetDefault("log.development", false)

	v.SetConfigType("toml")
	v.SetConfigFile(Path(explicit))

	v.SetEnvPrefix("STEPTHROUGH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isMissing(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func isMissing(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

// Validate rejects settings the player cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		errs = append(errs, errors.New("server.base_url is empty"))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if strings.TrimSpace(c.Player.FramePath) == "" {
		errs = append(errs, errors.New("player.frame_path is empty"))
	}
	return errors.Join(errs...)
}
