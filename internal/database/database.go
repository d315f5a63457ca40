// Package database keeps the dither job history in SQLite or PostgreSQL.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/logging"
)

var DB *gorm.DB

// Config selects and addresses the job store
type Config struct {
	Type     string // "sqlite" or "postgres"
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	DataDir  string // sqlite only
}

// ConfigFromEnv reads DB_* and DATA_DIR
func ConfigFromEnv() *Config {
	return &Config{
		Type:     config.Get("DB_TYPE", "sqlite"),
		Host:     config.Get("DB_HOST", "localhost"),
		Port:     config.GetInt("DB_PORT", 5432),
		User:     config.Get("DB_USER", "halftone"),
		Password: config.Get("DB_PASSWORD", ""),
		DBName:   config.Get("DB_NAME", "halftone"),
		SSLMode:  config.Get("DB_SSLMODE", "disable"),
		DataDir:  config.Get("DATA_DIR", "./data"),
	}
}

// SQLitePath is where the sqlite store lives
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "halftone.db")
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		if err := os.MkdirAll(c.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return sqlite.Open(c.SQLitePath() + "?_pragma=busy_timeout(5000)"), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

// Initialize opens the store described by the environment into DB
func Initialize() error {
	cfg := ConfigFromEnv()
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db

	logging.InfoWithComponent(logging.ComponentDatabase, "database initialized", "type", cfg.Type)
	return nil
}

// Open connects to the store and brings its schema up to date
func Open(cfg *Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// gormLogger sends GORM output through the tint handler. SQL is traced only
// when debugging.
func gormLogger() logger.Interface {
	level := logger.Warn
	if config.Get("GIN_MODE", "") == "debug" || config.Get("LOG_LEVEL", "") == "debug" {
		level = logger.Info
	}
	l := logging.Logger().With(slog.String("component", logging.ComponentDatabase))
	return logger.NewSlogLogger(l, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func GetDB() *gorm.DB {
	return DB
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
