package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Secrets may live in the file for
// local development but environment variables always win.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Mode    string `yaml:"mode"` // "live" or "simulation"
	} `yaml:"app"`

	Binance struct {
		WSURL     string `yaml:"ws_url"`
		RestURL   string `yaml:"rest_url"`
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"binance"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID string `yaml:"chat_id"`
		// PollIntervalSec spaces getUpdates long-polls for the command surface.
		PollIntervalSec int `yaml:"poll_interval_sec"`
	} `yaml:"telegram"`

	Notify struct {
		// DebounceMS is the quiet window collecting a burst of fills.
		DebounceMS int `yaml:"debounce_ms"`
		// Multiplier scales displayed quantities/PnL. "1" for real numbers.
		Multiplier string `yaml:"multiplier"`
	} `yaml:"notify"`

	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DebounceWindow returns the configured quiet window.
func (c *Config) DebounceWindow() time.Duration {
	if c.Notify.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Notify.DebounceMS) * time.Millisecond
}

// LoadConfig reads and parses the config file, applies environment variable
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity. Missing required startup
// configuration is the one fatal condition in the whole system.
func (c *Config) Validate() error {
	if c.Binance.WSURL == "" || (!strings.HasPrefix(c.Binance.WSURL, "ws://") && !strings.HasPrefix(c.Binance.WSURL, "wss://")) {
		return fmt.Errorf("invalid Binance WS URL: %s", c.Binance.WSURL)
	}
	if c.Binance.RestURL == "" {
		return fmt.Errorf("binance rest_url is required")
	}
	if c.Binance.APIKey == "" || c.Binance.SecretKey == "" {
		return fmt.Errorf("binance API credentials are required (BOT_BINANCE_KEY / BOT_BINANCE_SECRET)")
	}
	if c.Telegram.Token == "" || c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram credentials are required (BOT_TELEGRAM_TOKEN / BOT_TELEGRAM_CHAT)")
	}
	if c.Notify.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0")
	}
	return nil
}

// overrideWithEnv applies environment variables over file values. Secrets in
// the config file work but are discouraged.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("BOT_BINANCE_KEY"); key != "" {
		cfg.Binance.APIKey = key
	}
	if secret := os.Getenv("BOT_BINANCE_SECRET"); secret != "" {
		cfg.Binance.SecretKey = secret
	}
	if token := os.Getenv("BOT_TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if chat := os.Getenv("BOT_TELEGRAM_CHAT"); chat != "" {
		cfg.Telegram.ChatID = chat
	}
}
