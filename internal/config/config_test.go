package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// inTempDir runs the test from an empty directory so no stray config.yml is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", c.AppEnv)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "db", c.SequenceBackend)
	assert.Equal(t, 15*time.Minute, c.JWTExpiresIn)
	assert.Equal(t, 7*24*time.Hour, c.RefreshExpiresIn)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.Equal(t, 100, c.RateLimitMax)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Origins())
	assert.Equal(t, 5*time.Minute, c.IdempotencyTTL())
	assert.Equal(t, 1024, c.AuditQueueSize)
	assert.Empty(t, c.Brokers())
	assert.False(t, c.AuthAllowAdminSignup)
	assert.Equal(t, "creditcard:creditcard@tcp(mysql:3306)/creditcard?parseTime=true&loc=UTC&charset=utf8mb4", c.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/cc.db")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("AUTH_ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("SEQUENCE_BACKEND", "redis")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "/tmp/cc.db", c.DSN())
	assert.Equal(t, 30*time.Minute, c.JWTExpiresIn)
	assert.Equal(t, 5, c.RateLimitMax)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Brokers())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
	assert.True(t, c.AuthAllowAdminSignup)
	assert.Equal(t, "redis", c.SequenceBackend)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := inTempDir(t)
	yml := "APP_PORT: \"7070\"\nLOG_LEVEL: debug\nDB_DRIVER: postgres\nPOSTGRES_DSN: postgres://u:p@db/cc\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))
	t.Setenv("APP_PORT", "6060")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", c.AppPort, "environment wins over the file")
	assert.Equal(t, "postgres://u:p@db/cc", c.DSN())
	assert.Equal(t, logger.Info, c.GormLogLevel())
}

func TestLoad_InvalidFailsFast(t *testing.T) {
	inTempDir(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func validConfig() *Config {
	return &Config{
		AppEnv:             "development",
		AppPort:            "8080",
		DBDriver:           "sqlite",
		SQLitePath:         ":memory:",
		SequenceBackend:    "db",
		IdempTTLSecs:       300,
		JWTSecret:          defaultJWTSecret,
		JWTExpiresIn:       15 * time.Minute,
		RefreshSecret:      defaultRefreshSecret,
		RefreshExpiresIn:   time.Hour,
		AllowedOrigins:     "http://localhost:3000",
		RateLimitWindow:    time.Minute,
		RateLimitMax:       100,
		TracingSampleRatio: 1,
	}
}

func TestValidate(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef-access"
	strongRefresh := "0123456789abcdef0123456789abcdef-refresh"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.AppPort = "http" }, "APP_PORT"},
		{"mysql missing host", func(c *Config) { c.DBDriver = "mysql"; c.MySQLPort = "3306" }, "missing MySQL config"},
		{"postgres without dsn", func(c *Config) { c.DBDriver = "postgres" }, "POSTGRES_DSN"},
		{"unknown sequence backend", func(c *Config) { c.SequenceBackend = "etcd" }, "SEQUENCE_BACKEND"},
		{"redis sequence without redis", func(c *Config) { c.SequenceBackend = "redis" }, "REDIS_ADDR"},
		{"same secrets", func(c *Config) { c.RefreshSecret = c.JWTSecret }, "must differ"},
		{"zero ttl", func(c *Config) { c.JWTExpiresIn = 0 }, "lifetimes"},
		{"production default secret", func(c *Config) { c.AppEnv = "production" }, "default value"},
		{"production short secret", func(c *Config) {
			c.AppEnv = "prod"
			c.JWTSecret, c.RefreshSecret = "short-a", "short-b"
		}, "at least 32"},
		{"production wildcard cors", func(c *Config) {
			c.AppEnv = "production"
			c.JWTSecret, c.RefreshSecret = strong, strongRefresh
			c.AllowedOrigins = "*"
		}, "ALLOWED_ORIGINS"},
		{"production strong secrets", func(c *Config) {
			c.AppEnv = "production"
			c.JWTSecret, c.RefreshSecret = strong, strongRefresh
		}, ""},
		{"zero rate limit", func(c *Config) { c.RateLimitMax = 0 }, "RATE_LIMIT"},
		{"sample ratio", func(c *Config) { c.TracingSampleRatio = 1.5 }, "TRACING_SAMPLE_RATIO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
