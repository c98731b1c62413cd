// Package testutil opens throwaway SQLite databases for repo and service
// tests. The schema mirrors the Postgres one minus the server-side defaults,
// which SQLite cannot express; the application never relies on them because
// gorm fills IDs and timestamps client-side.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE "group" (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		safe_name TEXT NOT NULL,
		ldap_dn TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE project (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		name TEXT NOT NULL,
		safe_name TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE sample (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		safe_name TEXT NOT NULL,
		scientist TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE run (
		id TEXT PRIMARY KEY,
		sample_id TEXT NOT NULL,
		name TEXT NOT NULL,
		safe_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'uninitiated',
		status_error TEXT,
		md5_verification_status TEXT NOT NULL DEFAULT 'pending',
		md5_verification_attempts INTEGER NOT NULL DEFAULT 0,
		md5_verification_last_attempt DATETIME,
		md5_verification_completed_at DATETIME,
		verification_summary TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE "read" (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		file_id TEXT NOT NULL,
		md5 TEXT,
		destination_md5 TEXT,
		md5_mismatch BOOLEAN,
		md5_checked_at DATETIME,
		paired BOOLEAN NOT NULL DEFAULT 0,
		sibling_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE file (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		original_name TEXT NOT NULL,
		path TEXT NOT NULL,
		temp_path TEXT,
		upload_method TEXT NOT NULL,
		file_type TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE additional_file (
		id TEXT PRIMARY KEY,
		parent_type TEXT NOT NULL,
		parent_id TEXT NOT NULL,
		file_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE app_user (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT,
		password TEXT,
		group_id TEXT,
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
}

// OpenDB returns an in-memory database scoped to the calling test. The
// shared-cache name keys off the test name so parallel tests never see each
// other's tables.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// SQLite takes table locks on write; a single connection keeps concurrent
	// service code from tripping over SQLITE_BUSY in tests.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
