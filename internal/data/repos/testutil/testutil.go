package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/yungbote/baseapi-backend/internal/data/db"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// ObservedLogger records entries at or above level for assertions.
func ObservedLogger(tb testing.TB, level zapcore.Level) (*logger.Logger, *observer.ObservedLogs) {
	tb.Helper()
	core, logs := observer.New(level)
	return logger.FromZap(zap.New(core)), logs
}

// DB opens a private in-memory SQLite database with the full schema. Each call
// gets its own database, so tests may register GORM callbacks freely.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return DBWithLogger(tb, Logger(tb))
}

func DBWithLogger(tb testing.TB, log *logger.Logger) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	svc, err := db.NewSQLiteService(dsn, log)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	if err := db.EnsureAuditIndexes(svc.DB()); err != nil {
		tb.Fatalf("failed to index test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := svc.DB().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return svc.DB()
}

// FailOn makes every GORM operation of kind ("create", "update", "delete")
// against table fail with err.
func FailOn(tb testing.TB, gdb *gorm.DB, kind, table string, err error) {
	tb.Helper()
	name := fmt.Sprintf("testutil:fail_%s_%s", kind, table)
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}
	var regErr error
	switch kind {
	case "create":
		regErr = gdb.Callback().Create().Before("gorm:create").Register(name, fail)
	case "update":
		regErr = gdb.Callback().Update().Before("gorm:update").Register(name, fail)
	case "delete":
		regErr = gdb.Callback().Delete().Before("gorm:delete").Register(name, fail)
	default:
		tb.Fatalf("unknown callback kind %q", kind)
	}
	if regErr != nil {
		tb.Fatalf("register %s: %v", name, regErr)
	}
}

// CancelOn cancels the running operation's context when GORM creates a row in
// table, and fails the statement with the context's error.
func CancelOn(tb testing.TB, gdb *gorm.DB, table string, cancel context.CancelFunc) {
	tb.Helper()
	name := fmt.Sprintf("testutil:cancel_create_%s", table)
	err := gdb.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		cancel()
		_ = tx.AddError(tx.Statement.Context.Err())
	})
	if err != nil {
		tb.Fatalf("register %s: %v", name, err)
	}
}
