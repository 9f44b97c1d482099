package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	DataSource struct {
		Provider  string  `yaml:"provider" validate:"oneof=yahoo eodhd mock"`
		BaseURL   string  `yaml:"base_url" validate:"omitempty,url"`
		APIKey    string  `yaml:"api_key" validate:"required_if=Provider eodhd"`
		Exchange  string  `yaml:"exchange"`
		RateLimit int     `yaml:"rate_limit" validate:"gte=1"`
		MockPrice float64 `yaml:"mock_price" validate:"gte=0"`
	} `yaml:"data_source"`
	Cache struct {
		// TTL of cached provider results; negative keeps them until cleared.
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Schedule struct {
		CachePurgeCron string   `yaml:"cache_purge_cron" validate:"required"`
		DigestCron     string   `yaml:"digest_cron"`
		Watchlist      []string `yaml:"watchlist" validate:"dive,required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
		if cfg.DataSource.Provider == "" {
			cfg.DataSource.Provider = "eodhd"
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitSymbols(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Exchange == "" {
		cfg.DataSource.Exchange = "US"
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 5
	}
	if cfg.DataSource.MockPrice == 0 {
		cfg.DataSource.MockPrice = 100
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}
	if cfg.Schedule.CachePurgeCron == "" {
		cfg.Schedule.CachePurgeCron = "0 */5 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_terminal.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Schedule.DigestCron != "" {
		if len(c.Schedule.Watchlist) == 0 {
			return fmt.Errorf("schedule.watchlist is required with schedule.digest_cron")
		}
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required with schedule.digest_cron")
		}
	}
	return nil
}

// CacheTTL returns the cache lifetime, 0 meaning no expiry.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL < 0 {
		return 0
	}
	return c.Cache.TTL
}

// TelegramEnabled reports whether the Telegram surface should start.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
