// Package testutil opens throwaway Postgres schemas for repository tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNEnv names the variable holding a reachable test database. Tests that
// need Postgres are skipped when it is unset.
const DSNEnv = "NOTEMARKET_TEST_DSN"

// NewPostgres connects to the database named by NOTEMARKET_TEST_DSN, creates
// a schema unique to t, migrates models into it and drops it on cleanup.
func NewPostgres(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres test", DSNEnv)
		return nil
	}
	cfg := &gorm.Config{Logger: logger.Discard}

	admin, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		t.Skipf("Postgres not available for testing: %v", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sqlDB, err := admin.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		t.Skipf("Postgres not responding: %v", err)
		return nil
	}

	schema := fmt.Sprintf("nm_test_%d", time.Now().UnixNano())
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	gdb, err := gorm.Open(postgres.Open(withSearchPath(dsn, schema)), cfg)
	if err != nil {
		t.Fatalf("open test schema: %v", err)
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	t.Cleanup(func() {
		if s, err := gdb.DB(); err == nil {
			_ = s.Close()
		}
		if err := admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error; err != nil {
			t.Logf("warning: failed to drop schema %s: %v", schema, err)
		}
		_ = sqlDB.Close()
	})
	return gdb
}

// withSearchPath adds a search_path runtime parameter to either DSN form.
func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}
