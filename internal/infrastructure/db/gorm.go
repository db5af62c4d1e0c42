package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver   string
	DSN      string
	LogLevel logger.LogLevel
	// MaxOpenConns <= 0 keeps the pool defaults below.
	MaxOpenConns int
}

// Dialector picks the gorm driver for opts.Driver.
func Dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case DriverMySQL, "":
		return mysql.Open(opts.DSN), nil
	case DriverPostgres:
		return postgres.Open(opts.DSN), nil
	case DriverSQLite:
		return sqlite.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
}

func OpenGorm(opts Options) (*gorm.DB, error) {
	dial, err := Dialector(opts)
	if err != nil {
		return nil, err
	}
	if opts.Driver == DriverSQLite && opts.MaxOpenConns <= 0 {
		// one writer; also keeps ":memory:" on a single database
		opts.MaxOpenConns = 1
	}
	return OpenGormWithDialector(dial, opts)
}

// OpenGormWithDialector opens, tunes the pool and pings.
// Unique violations surface as gorm.ErrDuplicatedKey.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Options) (*gorm.DB, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(o.LogLevel),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := 30
	if o.MaxOpenConns > 0 {
		maxOpen = o.MaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(10, maxOpen))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	logrus.WithField("driver", db.Dialector.Name()).Info("gorm: connected")
	return db, nil
}

// LogLevelFor maps a logrus level name onto gorm's logger levels.
func LogLevelFor(level string) logger.LogLevel {
	switch level {
	case "debug", "trace":
		return logger.Info
	case "warn", "warning", "info":
		return logger.Warn
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Warn
	}
}
