// Package store persists notes and tasks with gorm.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/types"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver     string
	SQLitePath string
	DSN        string
	// PingRetries bounds how often a postgres connection is retried at startup.
	PingRetries uint64
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, opts Options, log *logger.Logger) (*gorm.DB, error) {
	log = log.Component("store")
	cfg := &gorm.Config{
		Logger: gormLogger.New(log, gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(SQLiteDSN(opts.SQLitePath)), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sqlite handle: %w", err)
		}
		// SQLite serializes writers; one connection avoids "database is locked"
		// and keeps in-memory databases on a single handle.
		sqlDB.SetMaxOpenConns(1)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(opts.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := ping(ctx, db, opts.PingRetries); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	log.WithField("driver", db.Dialector.Name()).Info("database ready")
	return db, nil
}

// SQLiteDSN turns a path into a DSN with foreign keys enforced, so deleting a
// note cascades to its tasks.
func SQLiteDSN(path string) string {
	if path == "" {
		path = "meeting_notes.db"
	}
	if strings.Contains(path, "_foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func ping(ctx context.Context, db *gorm.DB, retries uint64) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get postgres handle: %w", err)
	}
	if retries == 0 {
		retries = 5
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	if err := backoff.Retry(func() error { return sqlDB.PingContext(ctx) }, b); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&types.Note{}, &types.Task{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
