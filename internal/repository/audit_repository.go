package repository

import (
	"context"

	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository - журнал только на добавление: методов изменения
// и удаления записей нет намеренно
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository создаёт новый экземпляр репозитория
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storeError(domain.TableAuditLogs, "insert", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	entries := make([]domain.AuditLog, 0)
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.TableName != nil {
		query = query.Where("table_name = ?", *filter.TableName)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, storeError(domain.TableAuditLogs, "list", err)
	}
	return entries, nil
}
