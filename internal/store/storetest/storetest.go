// Package storetest opens throwaway in-memory SQLite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/store"
)

var seq atomic.Int64

// New returns a migrated store backed by a private in-memory database.
func New(tb testing.TB) *store.Store {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory", name, seq.Add(1))

	log := logger.Discard()
	db, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, SQLitePath: dsn}, log)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db, log)
}
