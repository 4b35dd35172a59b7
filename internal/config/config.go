package config

import (
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string  `mapstructure:"PORT"`
	Env                  string  `mapstructure:"ENV"`
	LogLevel             string  `mapstructure:"LOG_LEVEL"`
	DatabaseURL          string  `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32   `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32   `mapstructure:"DB_MIN_CONNS"`
	CacheTimeout         int     `mapstructure:"CACHE_TIMEOUT"`
	CacheCleanupInterval int     `mapstructure:"CACHE_CLEANUP_INTERVAL"`
	RequestTimeout       int     `mapstructure:"REQUEST_TIMEOUT"`
	QueryConcurrency     int     `mapstructure:"QUERY_CONCURRENCY"`
	RateLimitRPS         float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int     `mapstructure:"RATE_LIMIT_BURST"`
	TLSEnabled           bool    `mapstructure:"TLS_ENABLED"`
	TLSCertFile          string  `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile           string  `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8050")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CACHE_TIMEOUT", 300)
	v.SetDefault("CACHE_CLEANUP_INTERVAL", 60)
	v.SetDefault("REQUEST_TIMEOUT", 30)
	v.SetDefault("QUERY_CONCURRENCY", 4)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CACHE_TIMEOUT")
	v.BindEnv("CACHE_CLEANUP_INTERVAL")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("QUERY_CONCURRENCY")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: running in DEVELOPMENT mode (ENV=development), console logging enabled")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheTTL is how long query results and filter options stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTimeout) * time.Second
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CacheCleanupInterval) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Level parses LOG_LEVEL, falling back to info for unknown values.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.CacheTimeout < 0 {
		return fmt.Errorf("CACHE_TIMEOUT must not be negative, got %d", c.CacheTimeout)
	}
	if c.CacheTimeout > 0 && c.CacheCleanupInterval <= 0 {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be positive when caching is enabled")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.RequestTimeout)
	}

	if c.QueryConcurrency <= 0 {
		return fmt.Errorf("QUERY_CONCURRENCY must be positive, got %d", c.QueryConcurrency)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
