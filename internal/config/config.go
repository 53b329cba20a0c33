package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Telegram TelegramConfig `yaml:"telegram"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Matching MatchingConfig `yaml:"matching"`
	Reply    ReplyConfig    `yaml:"reply"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port" env:"TL_PORT"`
	BasePath string `yaml:"base_path" env:"TL_BASE_PATH"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level          string `yaml:"level" env:"TL_LOG_LEVEL"`
	Format         string `yaml:"format" env:"TL_LOG_FORMAT"`
	FilePath       string `yaml:"file_path" env:"TL_LOG_FILE"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxFiles   int    `yaml:"file_max_files"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// TelegramConfig holds Telegram Bot API settings. The bot token and webhook
// secret are usually supplied through the environment rather than the file.
type TelegramConfig struct {
	BotToken      string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChannelID     string `yaml:"channel_id" env:"TELEGRAM_CHANNEL_ID"`
	WebhookSecret string `yaml:"webhook_secret" env:"TELEGRAM_WEBHOOK_SECRET"`
}

// CatalogConfig selects the music catalog used for track lookups.
type CatalogConfig struct {
	Provider string `yaml:"provider" env:"TL_CATALOG"`
}

// SpotifyConfig holds Spotify client-credentials settings.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"SPOTIFY_CLIENT_SECRET"`
}

// MatchingConfig holds candidate extraction and match selection settings.
type MatchingConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"TL_CONFIDENCE_THRESHOLD"`
	MaxCandidates       int     `yaml:"max_candidates" env:"TL_MAX_CANDIDATES"`
}

// ReplyConfig holds reply formatting settings. An empty NotFoundMessage means
// unmatched messages get no reply at all.
type ReplyConfig struct {
	NotFoundMessage string `yaml:"not_found_message" env:"TL_NOT_FOUND_MESSAGE"`
}

// NotifyConfig holds operator notification webhook settings.
type NotifyConfig struct {
	URLs []string `yaml:"urls" env:"TL_NOTIFY_URLS" envSeparator:","`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			Provider: "spotify",
		},
		Matching: MatchingConfig{
			ConfidenceThreshold: 0.6,
			MaxCandidates:       3,
		},
	}
}

// Load reads config from an optional .env file, a YAML file (if it exists),
// and environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")

	switch c.Catalog.Provider {
	case "spotify", "deezer":
	default:
		return fmt.Errorf("unknown catalog provider: %q", c.Catalog.Provider)
	}

	if c.Matching.ConfidenceThreshold <= 0 || c.Matching.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %g", c.Matching.ConfidenceThreshold)
	}
	if c.Matching.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be at least 1, got %d", c.Matching.MaxCandidates)
	}
	return nil
}

// MissingCredentials reports which integration credentials are unset. Missing
// credentials are not fatal at load time; the caller decides what to disable.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChannelID == "" {
		missing = append(missing, "TELEGRAM_CHANNEL_ID")
	}
	if c.Catalog.Provider == "spotify" {
		if c.Spotify.ClientID == "" {
			missing = append(missing, "SPOTIFY_CLIENT_ID")
		}
		if c.Spotify.ClientSecret == "" {
			missing = append(missing, "SPOTIFY_CLIENT_SECRET")
		}
	}
	return missing
}
