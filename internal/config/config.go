// Package config loads comicprice configuration from config.yaml, a .env
// file and COMICPRICE_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Ebay    EbayConfig    `yaml:"ebay" mapstructure:"ebay"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the cache backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	Redis       RedisConfig `yaml:"redis" mapstructure:"redis"`
	MaxConns    int32       `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32       `yaml:"min_conns" mapstructure:"min_conns"`

	// PruneIntervalSecs is how often the server deletes expired entries.
	// Zero disables background pruning.
	PruneIntervalSecs int `yaml:"prune_interval_secs" mapstructure:"prune_interval_secs"`
}

// RedisConfig configures the Redis store driver.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// EbayConfig holds marketplace credentials and endpoints.
type EbayConfig struct {
	ClientID          string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret      string  `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	OAuthURL          string  `yaml:"oauth_url" mapstructure:"oauth_url"`
	Scope             string  `yaml:"scope" mapstructure:"scope"`
	MarketplaceID     string  `yaml:"marketplace_id" mapstructure:"marketplace_id"`
	SoldURL           string  `yaml:"sold_url" mapstructure:"sold_url"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	ResultLimit       int     `yaml:"result_limit" mapstructure:"result_limit"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ScrapeConfig configures the sold listings page fetchers.
type ScrapeConfig struct {
	BrowserFallback   bool    `yaml:"browser_fallback" mapstructure:"browser_fallback"`
	ChromePath        string  `yaml:"chrome_path" mapstructure:"chrome_path"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PricingConfig tunes the pricing ladder.
type PricingConfig struct {
	RetentionDays    int    `yaml:"retention_days" mapstructure:"retention_days"`
	StageTimeoutSecs int    `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	LadderFile       string `yaml:"ladder_file" mapstructure:"ladder_file"`
	Coalesce         bool   `yaml:"coalesce" mapstructure:"coalesce"`
}

// Retention is RetentionDays as a duration.
func (p PricingConfig) Retention() time.Duration {
	return time.Duration(p.RetentionDays) * 24 * time.Hour
}

// StageTimeout is StageTimeoutSecs as a duration.
func (p PricingConfig) StageTimeout() time.Duration {
	return time.Duration(p.StageTimeoutSecs) * time.Second
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMICPRICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "comicprice.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.prefix", "comicprice:")
	v.SetDefault("store.prune_interval_secs", 3600)
	v.SetDefault("ebay.client_id", "")
	v.SetDefault("ebay.client_secret", "")
	v.SetDefault("ebay.base_url", "https://api.ebay.com")
	v.SetDefault("ebay.oauth_url", "https://api.ebay.com/identity/v1/oauth2/token")
	v.SetDefault("ebay.scope", "https://api.ebay.com/oauth/api_scope")
	v.SetDefault("ebay.marketplace_id", "EBAY_US")
	v.SetDefault("ebay.sold_url", "https://www.ebay.com/sch/i.html")
	v.SetDefault("ebay.user_agent", "")
	v.SetDefault("ebay.result_limit", 100)
	v.SetDefault("ebay.requests_per_second", 5.0)
	v.SetDefault("scrape.browser_fallback", false)
	v.SetDefault("scrape.chrome_path", "")
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.requests_per_second", 2.0)
	v.SetDefault("pricing.retention_days", 7)
	v.SetDefault("pricing.stage_timeout_secs", 10)
	v.SetDefault("pricing.ladder_file", "")
	v.SetDefault("pricing.coalesce", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the given mode depends on. Modes: "serve",
// "price", "cache".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "redis", "memory":
	default:
		errs = append(errs, "store.driver must be one of sqlite, postgres, redis, memory")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required for the postgres driver")
	}

	switch mode {
	case "serve", "price":
		if c.Pricing.RetentionDays <= 0 {
			errs = append(errs, "pricing.retention_days must be > 0")
		}
		if c.Pricing.StageTimeoutSecs <= 0 {
			errs = append(errs, "pricing.stage_timeout_secs must be > 0")
		}
		if c.Scrape.TimeoutSecs <= 0 {
			errs = append(errs, "scrape.timeout_secs must be > 0")
		}
		if c.Ebay.ResultLimit < 1 || c.Ebay.ResultLimit > 200 {
			errs = append(errs, "ebay.result_limit must be between 1 and 200")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "cache":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// HasEbayCredentials reports whether the active listings API can be used.
func (c *Config) HasEbayCredentials() bool {
	return c.Ebay.ClientID != "" && c.Ebay.ClientSecret != ""
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
