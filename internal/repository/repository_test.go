package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medstock/internal/domain"
	"medstock/internal/domain/medicine"
	"medstock/internal/domain/prescription"
)

// openTestDB returns an isolated in-memory database. The pool is pinned to a
// single connection so every query sees the same in-memory instance.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.AuditLog{},
		&medicine.Medicine{},
		&prescription.Prescription{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}
