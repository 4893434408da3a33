package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction - тип изменения, зафиксированного в журнале
type AuditAction string

const (
	ActionInsert AuditAction = "INSERT"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

// ActorResolution показывает, удалось ли определить email автора записи
type ActorResolution string

const (
	ActorResolved            ActorResolution = "resolved"
	ActorNotFound            ActorResolution = "actor_not_found"
	ActorRelationUnavailable ActorResolution = "relation_unavailable"
	ActorLookupFailed        ActorResolution = "lookup_failed"
)

// UnknownActor подставляется, когда email автора определить не удалось
const UnknownActor = "Unknown"

// AuditLog - неизменяемая запись журнала аудита
type AuditLog struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Table       string         `json:"table_name" gorm:"column:table_name;type:varchar(100);not null;index"`
	RecordID    uuid.UUID      `json:"record_id" gorm:"type:uuid;not null;index"`
	Action      AuditAction    `json:"action" gorm:"type:varchar(10);not null;index"`
	OldData     datatypes.JSON `json:"old_data" gorm:"type:jsonb"`
	NewData     datatypes.JSON `json:"new_data" gorm:"type:jsonb"`
	Changes     datatypes.JSON `json:"changes,omitempty" gorm:"type:jsonb"`
	PerformedBy uuid.UUID      `json:"performed_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index"`

	ActorEmail      string          `json:"actor_email" gorm:"-"`
	ActorResolution ActorResolution `json:"actor_resolution" gorm:"-"`
}

// TableName задаёт имя таблицы для GORM
func (AuditLog) TableName() string {
	return TableAuditLogs
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsEmptyJSON сообщает, что снимок отсутствует (NULL в базе)
func IsEmptyJSON(j datatypes.JSON) bool {
	return len(j) == 0 || string(j) == "null"
}

// AuditLogFilter - параметры выборки журнала аудита
type AuditLogFilter struct {
	TableName *string      `json:"table_name" validate:"omitempty,min=1,max=100"`
	Action    *AuditAction `json:"action" validate:"omitempty,oneof=INSERT UPDATE DELETE"`
	Limit     int          `json:"limit" validate:"min=0"`
}
