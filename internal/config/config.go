package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string        `mapstructure:"env"`              // current application environment (local, dev, production etc)
	TelegramAPIToken string        `mapstructure:"-"`                // Telegram API token loaded from environment
	UIDSalt          string        `mapstructure:"-"`                // salt for one-way hashing of user ids
	CatalogPath      string        `mapstructure:"catalog_path"`     // path to YAML catalog with menu sections and polls
	Admins           []string      `mapstructure:"admins"`           // usernames allowed to see statistics
	SessionLifetime  time.Duration `mapstructure:"session_lifetime"` // TTL of every session field, refreshed on write
	Workers          int           `mapstructure:"workers"`          // number of update dispatcher shards
	KeyCacheSize     int           `mapstructure:"key_cache_size"`   // capacity of the poll key cache
	Redis            Redis         `mapstructure:"redis"`            // session and statistics store
	DB               DB            `mapstructure:"database"`         // completion archive
	Webhook          Webhook       `mapstructure:"webhook"`          // webhook transport settings
}

// Redis contains connection settings of the session and statistics store.
type Redis struct {
	URL string `mapstructure:"-"` // redis:// connection string loaded from environment
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Enabled reports whether the completion archive is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// Webhook contains settings of the webhook update source.
type Webhook struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`    // public host, without scheme
	Listen  string `mapstructure:"listen"` // local listen address
}

// IsAdmin reports whether username belongs to the admin allow-list.
func (c *Config) IsAdmin(username string) bool {
	if username == "" {
		return false
	}
	for _, a := range c.Admins {
		if strings.EqualFold(strings.TrimPrefix(a, "@"), username) {
			return true
		}
	}
	return false
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	return load(true)
}

// LoadWithoutBot is Load for maintenance commands that never talk to Telegram:
// TELEGRAM_API_TOKEN is not required.
func LoadWithoutBot() (*Config, error) {
	return load(false)
}

func load(requireBotToken bool) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("catalog_path", "conf/catalog.yaml")
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("workers", 8)
	v.SetDefault("key_cache_size", 1024)
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.listen", ":5000")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("uid_salt", "UID_SALT")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("admins_list", "ADMINS")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("webhook.enabled", "USE_WEBHOOK")
	_ = v.BindEnv("webhook.url", "URL")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.UIDSalt = v.GetString("uid_salt")
	cfg.Redis.URL = v.GetString("redis_url")
	if (requireBotToken && cfg.TelegramAPIToken == "") || cfg.UIDSalt == "" || cfg.Redis.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")

	if list := v.GetString("admins_list"); list != "" {
		cfg.Admins = splitList(list)
	}
	if port := v.GetString("port"); port != "" {
		cfg.Webhook.Listen = ":" + strings.TrimPrefix(port, ":")
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL == "" {
		return nil, fmt.Errorf("webhook enabled without URL: %w", ErrMissingEnvironmentVariables)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
