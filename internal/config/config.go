package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration loaded from environment variables.
// It is loaded once at startup and passed around by value.
type Config struct {
	DBName     string `env:"DB_NAME" envDefault:"agenciakaizen_cms"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// DatabaseURL overrides the individual DB_* parts when set.
	DatabaseURL string `env:"DATABASE_URL"`

	DBPoolSize           int `env:"DB_POOL_SIZE" envDefault:"10"`
	DBMaxOverflow        int `env:"DB_MAX_OVERFLOW" envDefault:"20"`
	DBPoolTimeoutSeconds int `env:"DB_POOL_TIMEOUT_SECONDS" envDefault:"30"`

	SecretKey                string `env:"SECRET_KEY,required"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`

	CorsOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	SiteURL     string   `env:"SITE_URL" envDefault:"https://site2025.agenciakaizen.com.br"`
	Debug       bool     `env:"DEBUG" envDefault:"false"`
	Port        string   `env:"PORT" envDefault:"8080"`

	RedisURL            string   `env:"REDIS_URL"`
	SitemapCacheSeconds int      `env:"SITEMAP_CACHE_SECONDS" envDefault:"300"`
	StaticPages         []string `env:"STATIC_PAGES" envSeparator:"," envDefault:"/,/nossas-empresas,/blog,/onde-estamos,/contato"`

	LogDir           string `env:"LOG_DIR" envDefault:"storage/logs"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"7"`

	MetricsDiskPath      string `env:"METRICS_DISK_PATH" envDefault:"/"`
	MetricsStreamSeconds int    `env:"METRICS_STREAM_SECONDS" envDefault:"5"`
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load parses the environment into a Config and validates it. Callers are
// expected to abort startup on error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CorsOrigins = cleanList(cfg.CorsOrigins)
	cfg.StaticPages = cleanList(cfg.StaticPages)
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that makes the snapshot unusable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("missing env var: SECRET_KEY")
	}
	if !supportedAlgorithms[c.Algorithm] {
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenExpireMinutes < 1 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.DatabaseURL == "" && (c.DBName == "" || c.DBHost == "" || c.DBUser == "") {
		return fmt.Errorf("missing database settings: DB_NAME, DB_HOST and DB_USER are required")
	}
	if c.DBPoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be positive")
	}
	if c.DBMaxOverflow < 0 {
		return fmt.Errorf("DB_MAX_OVERFLOW must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c Config) PoolTimeout() time.Duration {
	return time.Duration(c.DBPoolTimeoutSeconds) * time.Second
}

func (c Config) SitemapCacheTTL() time.Duration {
	return time.Duration(c.SitemapCacheSeconds) * time.Second
}

func (c Config) MetricsInterval() time.Duration {
	if c.MetricsStreamSeconds < 1 {
		return 5 * time.Second
	}
	return time.Duration(c.MetricsStreamSeconds) * time.Second
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func cleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value != "" {
			cleaned = append(cleaned, value)
		}
	}
	return cleaned
}
