// Package config loads proxy settings from defaults, an optional YAML file,
// a .env file and LEX_PROXY_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/uzgidro/lex-parser/pkg/client"
	"github.com/uzgidro/lex-parser/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g. LEX_PROXY_CACHE_TTL.
const EnvPrefix = "LEX_PROXY"

// Config is the complete proxy configuration.
type Config struct {
	Listen   string   `mapstructure:"listen"`
	Upstream Upstream `mapstructure:"upstream"`
	Cache    Cache    `mapstructure:"cache"`
	Search   Search   `mapstructure:"search"`
	Log      Log      `mapstructure:"log"`
}

// Upstream configures the registry client.
type Upstream struct {
	BaseURL            string        `mapstructure:"base_url"`
	SearchPath         string        `mapstructure:"search_path"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxConnections     int           `mapstructure:"max_connections"`
	MaxIdleConnections int           `mapstructure:"max_idle_connections"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
	AcceptLanguage     string        `mapstructure:"accept_language"`
	CloudflareBypass   bool          `mapstructure:"cloudflare_bypass"`
}

// Cache configures the result cache.
type Cache struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// Search configures the query service and the HTTP input limits.
type Search struct {
	SingleFlight bool `mapstructure:"single_flight"`
	MaxPage      int  `mapstructure:"max_page"`
}

// Log configures zerolog.
type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	up := client.DefaultConfig()

	v.SetDefault("listen", "127.0.0.1:19780")

	v.SetDefault("upstream.base_url", up.BaseURL)
	v.SetDefault("upstream.search_path", up.SearchPath)
	v.SetDefault("upstream.timeout", up.Timeout)
	v.SetDefault("upstream.max_connections", up.MaxConnections)
	v.SetDefault("upstream.max_idle_connections", up.MaxIdleConnections)
	v.SetDefault("upstream.idle_timeout", up.IdleConnTimeout)
	v.SetDefault("upstream.user_agent", up.UserAgent)
	v.SetDefault("upstream.accept_language", up.AcceptLanguage)
	v.SetDefault("upstream.cloudflare_bypass", false)

	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.max_entries", 1000)

	v.SetDefault("search.single_flight", false)
	v.SetDefault("search.max_page", 100)

	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win; missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads file (or lex-proxy.yaml from the working directory or
// ~/.config/lex-proxy when file is empty), applies environment overrides and
// validates the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("lex-proxy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lex-proxy"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the proxy cannot run with.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute URL (got %q)", c.Upstream.BaseURL)
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive (got %s)", c.Upstream.Timeout)
	}

	if c.Upstream.MaxConnections < 1 {
		return fmt.Errorf("upstream.max_connections must be >= 1 (got %d)", c.Upstream.MaxConnections)
	}

	if c.Upstream.MaxIdleConnections < 0 {
		return fmt.Errorf("upstream.max_idle_connections must be >= 0 (got %d)", c.Upstream.MaxIdleConnections)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive (got %s)", c.Cache.TTL)
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be >= 1 (got %d)", c.Cache.MaxEntries)
	}

	if c.Search.MaxPage < 1 {
		return fmt.Errorf("search.max_page must be >= 1 (got %d)", c.Search.MaxPage)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// ClientConfig derives the upstream client configuration.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.Upstream.BaseURL
	cfg.SearchPath = c.Upstream.SearchPath
	cfg.Timeout = c.Upstream.Timeout
	cfg.MaxConnections = c.Upstream.MaxConnections
	cfg.MaxIdleConnections = c.Upstream.MaxIdleConnections
	cfg.IdleConnTimeout = c.Upstream.IdleTimeout
	if c.Upstream.UserAgent != "" {
		cfg.UserAgent = c.Upstream.UserAgent
	}
	if c.Upstream.AcceptLanguage != "" {
		cfg.AcceptLanguage = c.Upstream.AcceptLanguage
	}
	cfg.CloudflareBypass = c.Upstream.CloudflareBypass
	return cfg
}

// LoggingConfig derives the logger configuration. Validate has already
// checked the level.
func (c Config) LoggingConfig() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = c.Log.Pretty
	return cfg
}
