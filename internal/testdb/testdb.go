// Package testdb поднимает изолированную in-memory SQLite базу со схемой
// приложения для тестов репозиториев и сервисов.
package testdb

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open создаёт новую базу на каждый тест. Таблица profiles не создаётся,
// как и в миграциях: её добавляет WithProfiles.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&domain.Branch{},
		&domain.Department{},
		&domain.Employee{},
		&domain.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// WithProfiles создаёт таблицу profiles и заполняет её
func WithProfiles(t testing.TB, db *gorm.DB, profiles ...domain.Profile) {
	t.Helper()

	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		t.Fatalf("migrate profiles: %v", err)
	}
	if len(profiles) == 0 {
		return
	}
	if err := db.Create(&profiles).Error; err != nil {
		t.Fatalf("seed profiles: %v", err)
	}
}

// Drop удаляет таблицу, имитируя отсутствующее отношение
func Drop(t testing.TB, db *gorm.DB, table string) {
	t.Helper()

	if err := db.Migrator().DropTable(table); err != nil {
		t.Fatalf("drop %s: %v", table, err)
	}
}

// Logger возвращает логгер, который ничего не пишет
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
