package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// IsMissingRelation проверяет, что запрос упал из-за отсутствующей таблицы
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrMissingRelation) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	// SQLite не возвращает типизированных кодов
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// storeError оборачивает ошибку хранилища, сохраняя имя таблицы
func storeError(table, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsMissingRelation(err) && !errors.Is(err, domain.ErrMissingRelation) {
		err = errors.Join(domain.ErrMissingRelation, err)
	}
	return &domain.StoreError{Table: table, Op: op, Err: err}
}
