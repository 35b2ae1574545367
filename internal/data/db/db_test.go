package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "app", Password: "pw", Name: "baseapi"}
	if got := cfg.DSN(); got != "postgres://app:pw@db:5432/baseapi?sslmode=disable" {
		t.Fatalf("DSN = %q", got)
	}
	cfg.SSLMode = "require"
	if got := cfg.DSN(); got != "postgres://app:pw@db:5432/baseapi?sslmode=require" {
		t.Fatalf("DSN = %q", got)
	}
}

func TestOpen_SQLiteMigratesAndIndexes(t *testing.T) {
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := Open(Config{Driver: "SQLite", SQLitePath: path}, testLogger(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := EnsureAuditIndexes(gdb); err != nil {
			t.Fatalf("EnsureAuditIndexes run %d: %v", i+1, err)
		}
	}
	for _, table := range []string{"products", "users", "audit_logs", "logs"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if !gdb.Migrator().HasIndex("audit_logs", "idx_audit_logs_table_entity") {
		t.Fatalf("missing composite audit index")
	}
}

func TestOpen_Rejects(t *testing.T) {
	if _, err := Open(Config{Driver: "mysql"}, testLogger(t)); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := Open(Config{Driver: DriverSQLite}, testLogger(t)); err == nil {
		t.Fatalf("expected missing path error")
	}
}
