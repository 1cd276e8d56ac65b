package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/internal/keychain"
)

// EnvPrefix prefixes every environment override (ARES_STATS_URL -> stats_url).
const EnvPrefix = "ARES_"

// TokenEnv is the variable holding the bot token in deployed environments.
const TokenEnv = "TELEGRAM_TOKEN"

// ErrMissingToken is the configuration error raised at startup when no bot
// token can be found.
var ErrMissingToken = errors.New("the TELEGRAM_TOKEN must be set")

// Config is the process configuration.
type Config struct {
	TelegramToken    string        `koanf:"telegram_token" yaml:"telegram_token,omitempty"`
	TelegramEndpoint string        `koanf:"telegram_endpoint" yaml:"telegram_endpoint"`
	TelegramTimeout  time.Duration `koanf:"telegram_timeout" yaml:"telegram_timeout"`
	KeychainAccount  string        `koanf:"keychain_account" yaml:"keychain_account"`

	StatsURL     string        `koanf:"stats_url" yaml:"stats_url"`
	StatsTimeout time.Duration `koanf:"stats_timeout" yaml:"stats_timeout"`

	ListenAddr string `koanf:"listen_addr" yaml:"listen_addr"`
	Stage      string `koanf:"stage" yaml:"stage"`

	LogLevel  string `koanf:"log_level" yaml:"log_level"`
	LogPretty bool   `koanf:"log_pretty" yaml:"log_pretty"`

	ReplyErrors bool `koanf:"reply_errors" yaml:"reply_errors"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		TelegramEndpoint: tgbotapi.APIEndpoint,
		TelegramTimeout:  10 * time.Second,
		KeychainAccount:  "telegram",
		StatsURL:         "https://api.godsunchained.com/v0",
		StatsTimeout:     10 * time.Second,
		ListenAddr:       ":8080",
		Stage:            "dev",
		LogLevel:         "info",
	}
}

// Load reads configuration from the optional YAML file at path, then
// overlays ARES_* environment variables and finally TELEGRAM_TOKEN.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// The provider matches by prefix; only the exact variable is taken.
	if err := k.Load(env.Provider(TokenEnv, ".", func(s string) string {
		if s != TokenEnv {
			return ""
		}
		return "telegram_token"
	}), nil); err != nil {
		return nil, fmt.Errorf("loading %s: %w", TokenEnv, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains usable values.
// The bot token is checked separately by ResolveToken.
func (c *Config) Validate() error {
	if c.StatsURL == "" {
		return fmt.Errorf("stats_url is required")
	}
	if !strings.HasPrefix(c.StatsURL, "http://") && !strings.HasPrefix(c.StatsURL, "https://") {
		return fmt.Errorf("invalid stats_url %q: must be an http(s) URL", c.StatsURL)
	}
	if c.StatsTimeout <= 0 {
		return fmt.Errorf("stats_timeout must be positive")
	}
	if c.TelegramTimeout <= 0 {
		return fmt.Errorf("telegram_timeout must be positive")
	}
	if strings.Count(c.TelegramEndpoint, "%s") != 2 {
		return fmt.Errorf("invalid telegram_endpoint %q: needs two %%s verbs for token and method", c.TelegramEndpoint)
	}
	if c.Stage == "" || strings.Contains(c.Stage, "/") {
		return fmt.Errorf("invalid stage %q: must be a single path segment", c.Stage)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q", c.LogLevel)
		}
	}
	return nil
}

// ResolveToken returns the bot token from configuration, falling back to
// the system keychain. It returns ErrMissingToken when neither has one.
func (c *Config) ResolveToken() (string, error) {
	if c.TelegramToken != "" {
		return c.TelegramToken, nil
	}
	if c.KeychainAccount == "" {
		return "", ErrMissingToken
	}
	token, err := keychain.Get(c.KeychainAccount)
	switch {
	case errors.Is(err, keychain.ErrNotFound):
		return "", ErrMissingToken
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrMissingToken, err)
	case token == "":
		return "", ErrMissingToken
	}
	return token, nil
}
