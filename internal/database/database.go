// Package database provides the sqlite connection for the backup-ledger
// index. The pure Go driver (glebarez/sqlite -> modernc.org/sqlite) avoids
// CGO; PRAGMAs are applied via DSN parameters so every pooled connection
// gets them.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cardpress/cardpress/internal/config"
	"github.com/cardpress/cardpress/internal/models"
)

// DB wraps a GORM database connection.
type DB struct {
	*gorm.DB
	logger *slog.Logger
}

// New opens the ledger index at the given sqlite DSN and migrates the schema.
func New(cfg config.DatabaseConfig, dsn string, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}

	if dsn != ":memory:" {
		if !strings.Contains(dsn, "?") {
			dsn += "?"
		} else {
			dsn += "&"
		}
		dsn += "_pragma=busy_timeout(30000)" +
			"&_pragma=journal_mode(WAL)" +
			"&_pragma=synchronous(NORMAL)" +
			"&_pragma=foreign_keys(ON)"
	}

	gormCfg := &gorm.Config{
		Logger:                 gormLogger(cfg.LogLevel),
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening ledger index: %w", err)
	}

	if err := db.AutoMigrate(&models.BackupRecord{}); err != nil {
		return nil, fmt.Errorf("migrating ledger index: %w", err)
	}

	return &DB{DB: db, logger: log}, nil
}

// gormLogger maps a config log level to a GORM logger.
func gormLogger(level string) logger.Interface {
	var gormLevel logger.LogLevel
	switch level {
	case "silent":
		gormLevel = logger.Silent
	case "error":
		gormLevel = logger.Error
	case "info":
		gormLevel = logger.Info
	default:
		gormLevel = logger.Warn
	}
	return logger.Default.LogMode(gormLevel)
}

// Ping verifies the database connection.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
