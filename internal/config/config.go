// Package config loads process configuration from an optional config.yml and the
// environment, environment winning.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

const (
	defaultJWTSecret     = "change-me-access-secret"
	defaultRefreshSecret = "change-me-refresh-secret"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppPort string `mapstructure:"APP_PORT"`

	DBDriver      string `mapstructure:"DB_DRIVER"`
	MySQLHost     string `mapstructure:"MYSQL_HOST"`
	MySQLPort     string `mapstructure:"MYSQL_PORT"`
	MySQLDB       string `mapstructure:"MYSQL_DB"`
	MySQLUser     string `mapstructure:"MYSQL_USER"`
	MySQLPass     string `mapstructure:"MYSQL_PASS"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// RedisAddr empty runs without redis: no idempotency, per-process rate limits.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	IdempTTLSecs    int    `mapstructure:"IDEMPOTENCY_TTL_SECONDS"`
	SequenceBackend string `mapstructure:"SEQUENCE_BACKEND"`

	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn         time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	RefreshSecret        string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	RefreshExpiresIn     time.Duration `mapstructure:"REFRESH_TOKEN_EXPIRES_IN"`
	AuthAllowAdminSignup bool          `mapstructure:"AUTH_ALLOW_ADMIN_SIGNUP"`

	AllowedOrigins  string        `mapstructure:"ALLOWED_ORIGINS"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaAuditTopic string `mapstructure:"KAFKA_AUDIT_TOPIC"`
	AuditQueueSize  int    `mapstructure:"AUDIT_QUEUE_SIZE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSampleRatio  float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

var defaults = map[string]any{
	"APP_ENV":  "development",
	"APP_PORT": "8080",

	"DB_DRIVER":       "mysql",
	"MYSQL_HOST":      "mysql",
	"MYSQL_PORT":      "3306",
	"MYSQL_DB":        "creditcard",
	"MYSQL_USER":      "creditcard",
	"MYSQL_PASS":      "creditcard",
	"POSTGRES_DSN":    "",
	"SQLITE_PATH":     "creditcard.db",
	"DB_AUTO_MIGRATE": true,

	"REDIS_ADDR":              "redis:6379",
	"REDIS_DB":                0,
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"SEQUENCE_BACKEND":        "db",

	"JWT_SECRET":               defaultJWTSecret,
	"JWT_EXPIRES_IN":           "15m",
	"REFRESH_TOKEN_SECRET":     defaultRefreshSecret,
	"REFRESH_TOKEN_EXPIRES_IN": "168h",
	"AUTH_ALLOW_ADMIN_SIGNUP":  false,

	"ALLOWED_ORIGINS":         "http://localhost:3000",
	"RATE_LIMIT_WINDOW":       "60s",
	"RATE_LIMIT_MAX_REQUESTS": 100,

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",

	"KAFKA_BROKERS":     "",
	"KAFKA_AUDIT_TOPIC": "creditcard.audit",
	"AUDIT_QUEUE_SIZE":  1024,

	"TRACING_ENABLED":       false,
	"TRACING_EXPORTER":      "stdout",
	"TRACING_OTLP_ENDPOINT": "localhost:4318",
	"TRACING_SAMPLE_RATIO":  1.0,
}

// Load reads config.yml from the working directory (if present) and the environment,
// then validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.SequenceBackend = strings.ToLower(strings.TrimSpace(c.SequenceBackend))

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" || c.AppEnv == "prod" }

func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.AppPort, 10, 16); err != nil {
		return fmt.Errorf("invalid APP_PORT %q", c.AppPort)
	}

	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.SequenceBackend {
	case "db":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("SEQUENCE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported SEQUENCE_BACKEND %q", c.SequenceBackend)
	}

	if c.JWTSecret == "" || c.RefreshSecret == "" {
		return errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.JWTSecret == c.RefreshSecret {
		return errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.JWTExpiresIn <= 0 || c.RefreshExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || c.RefreshSecret == defaultRefreshSecret {
			return errors.New("JWT secrets must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 || len(c.RefreshSecret) < 32 {
			return errors.New("JWT secrets must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			return errors.New("ALLOWED_ORIGINS must not be '*' in production")
		}
	}

	if c.RateLimitWindow <= 0 || c.RateLimitMax <= 0 {
		return errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO %v out of [0,1]", c.TracingSampleRatio)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc pins scanned times to UTC
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for DBDriver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) Origins() []string { return splitList(c.AllowedOrigins) }

func (c *Config) Brokers() []string { return splitList(c.KafkaBrokers) }

// GormLogLevel keeps SQL logging quiet unless LOG_LEVEL asks for debug output.
func (c *Config) GormLogLevel() logger.LogLevel {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "trace":
		return logger.Info
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Warn
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
