package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver from the backend URL scheme.
//
//	postgres://, postgresql://  -> Postgres (pgx)
//	mysql://user:pw@tcp(host)/db, or a bare MySQL DSN -> MySQL
//	sqlite://path, file:path, :memory: -> SQLite
func Dialector(backendURL string) (gorm.Dialector, error) {
	u := strings.TrimSpace(backendURL)
	switch {
	case u == "":
		return nil, ErrMissingBackendURL
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return postgres.Open(u), nil
	case strings.HasPrefix(u, "mysql://"):
		return mysql.Open(strings.TrimPrefix(u, "mysql://")), nil
	case strings.HasPrefix(u, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(u, "sqlite://")), nil
	case strings.HasPrefix(u, "file:"), u == ":memory:":
		return sqlite.Open(u), nil
	case strings.Contains(u, "@tcp("):
		return mysql.Open(u), nil
	default:
		return nil, fmt.Errorf("unsupported backend url %q", u)
	}
}

// OpenDatabase connects to the backend described by cfg and pings it.
func OpenDatabase(cfg AppConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.BackendURL)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger: derive level from app LogLevel and raise slow-sql threshold to reduce noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// a single connection keeps :memory: databases alive and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	// Ping at startup so network/auth problems surface before the first query
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// closeDB releases the pool of a handle that failed to open, if it has one.
func closeDB(db *gorm.DB) {
	if db == nil || db.ConnPool == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		// Suppress per-statement logs; keep warnings (including slow SQL)
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
