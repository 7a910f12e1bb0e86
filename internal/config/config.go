package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/abt/cbhts-integration/internal/platform/db"
)

type Config struct {
	Host     string `mapstructure:"INTEGRATION_SERVICE_HOST"`
	Port     int    `mapstructure:"INTEGRATION_SERVICE_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	AuthEnabled bool   `mapstructure:"AUTH_ENABLED"`
	AuthSecret  string `mapstructure:"INTEGRATION_SERVICE_SECRET_KEY"`

	DBURL      string `mapstructure:"OPENSRP_DB_URL"`
	DBHost     string `mapstructure:"OPENSRP_DB_HOST"`
	DBPort     int    `mapstructure:"OPENSRP_DB_PORT"`
	DBName     string `mapstructure:"OPENSRP_DB_NAME"`
	DBUser     string `mapstructure:"OPENSRP_DB_USER"`
	DBPassword string `mapstructure:"OPENSRP_DB_PASSWORD"`
	DBSSLMode  string `mapstructure:"OPENSRP_DB_SSLMODE"`
	DBSchema   string `mapstructure:"OPENSRP_DB_SCHEMA"`
	DBMaxConns int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns int32  `mapstructure:"DB_MIN_CONNS"`

	OpenSRPEventURL  string        `mapstructure:"OPENSRP_SERVER_EVENT_URL"`
	OpenSRPServerURL string        `mapstructure:"OPENSRP_SERVER_URL"`
	OpenSRPUsername  string        `mapstructure:"OPENSRP_SERVER_USERNAME"`
	OpenSRPPassword  string        `mapstructure:"OPENSRP_SERVER_PASSWORD"`
	OpenSRPTimeout   time.Duration `mapstructure:"OPENSRP_SEND_TIMEOUT"`

	CatalogDictionaryPath string `mapstructure:"CATALOG_DICTIONARY_PATH"`
	CatalogFormsDir       string `mapstructure:"CATALOG_FORMS_DIR"`

	PlatformIDFallback bool `mapstructure:"MAPPER_PLATFORM_ID_FALLBACK"`
	ParallelThreshold  int  `mapstructure:"MAPPER_PARALLEL_THRESHOLD"`
}

var defaults = map[string]any{
	"INTEGRATION_SERVICE_HOST":    "127.0.0.1",
	"INTEGRATION_SERVICE_PORT":    8080,
	"ENV":                         "production",
	"LOG_LEVEL":                   "info",
	"BODY_LIMIT":                  "2M",
	"REQUEST_TIMEOUT":             "60s",
	"AUTH_ENABLED":                false,
	"OPENSRP_DB_HOST":             "localhost",
	"OPENSRP_DB_PORT":             5432,
	"OPENSRP_DB_NAME":             "opensrp",
	"OPENSRP_DB_SCHEMA":           "public",
	"DB_MAX_CONNS":                10,
	"DB_MIN_CONNS":                1,
	"OPENSRP_SEND_TIMEOUT":        "30s",
	"MAPPER_PLATFORM_ID_FALLBACK": false,
	"MAPPER_PARALLEL_THRESHOLD":   64,
}

var unset = []string{
	"INTEGRATION_SERVICE_SECRET_KEY",
	"OPENSRP_DB_URL",
	"OPENSRP_DB_USER",
	"OPENSRP_DB_PASSWORD",
	"OPENSRP_DB_SSLMODE",
	"OPENSRP_SERVER_EVENT_URL",
	"OPENSRP_SERVER_URL",
	"OPENSRP_SERVER_USERNAME",
	"OPENSRP_SERVER_PASSWORD",
	"CATALOG_DICTIONARY_PATH",
	"CATALOG_FORMS_DIR",
}

// Load reads the environment, overlaid on an optional .env file in the
// working directory, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}
	for _, key := range unset {
		_ = v.BindEnv(key)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseURL returns OPENSRP_DB_URL, or a URL built from the discrete
// OPENSRP_DB_* settings when it is empty.
func (c *Config) DatabaseURL() string {
	if u := strings.TrimSpace(c.DBURL); u != "" {
		return u
	}
	return db.BuildURL(c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode)
}

// Level parses LOG_LEVEL.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("INTEGRATION_SERVICE_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if err := db.ValidateSchema(c.DBSchema); err != nil {
		errs = append(errs, fmt.Errorf("OPENSRP_DB_SCHEMA: %w", err))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.DBMinConns))
	}
	if c.AuthEnabled && strings.TrimSpace(c.AuthSecret) == "" {
		errs = append(errs, errors.New("INTEGRATION_SERVICE_SECRET_KEY is required when AUTH_ENABLED is true"))
	}
	if c.ParallelThreshold < 1 {
		errs = append(errs, fmt.Errorf("MAPPER_PARALLEL_THRESHOLD must be at least 1, got %d", c.ParallelThreshold))
	}
	if c.OpenSRPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("OPENSRP_SEND_TIMEOUT must be positive, got %s", c.OpenSRPTimeout))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}
