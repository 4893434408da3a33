package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Имена таблиц, отслеживаемых аудитом
const (
	TableBranches    = "branches"
	TableDepartments = "departments"
	TableEmployees   = "employees"
	TableAuditLogs   = "audit_logs"
	TableProfiles    = "profiles"
)

// Роли сотрудников, которые считаются руководителями
const (
	RoleManager    = "Manager"
	RoleHRManager  = "HR Manager"
	RoleSuperAdmin = "Super Admin"
)

// ManagerRoles - значения role, при которых сотрудник попадает в выборку руководителей
var ManagerRoles = []string{RoleManager, RoleHRManager, RoleSuperAdmin}

// IsManagerRole проверяет, квалифицируется ли сотрудник как руководитель
func IsManagerRole(role string, accessRole *string) bool {
	for _, r := range ManagerRoles {
		if role == r {
			return true
		}
	}
	return accessRole != nil && *accessRole == RoleManager
}

// Branch представляет филиал - корень иерархии
type Branch struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(200);not null;uniqueIndex"`
	Address       *string   `json:"address" gorm:"type:varchar(500)"`
	ContactNumber *string   `json:"contact_number" gorm:"type:varchar(50)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Branch) TableName() string {
	return TableBranches
}

func (b *Branch) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Department представляет отдел. Ссылка на филиал может отсутствовать
// или указывать на несуществующую запись (осиротевший отдел).
type Department struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(200);not null"`
	BranchID  *uuid.UUID `json:"branch_id" gorm:"type:uuid;index"`
	ManagerID *uuid.UUID `json:"manager_id" gorm:"type:uuid"`
	Location  *string    `json:"location" gorm:"type:varchar(200)"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Денормализованные поля, заполняются отдельным шагом обогащения
	BranchName  *string `json:"branch_name,omitempty" gorm:"-"`
	ManagerName *string `json:"manager_name,omitempty" gorm:"-"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return TableDepartments
}

func (d *Department) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Employee представляет сотрудника. Руководители - проекция этой таблицы.
type Employee struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName     string     `json:"last_name" gorm:"type:varchar(100);not null"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Role         string     `json:"role" gorm:"type:varchar(100);not null;index"`
	AccessRole   *string    `json:"access_role" gorm:"type:varchar(100)"`
	DepartmentID *uuid.UUID `json:"department_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return TableEmployees
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// FullName возвращает имя и фамилию через пробел
func (e Employee) FullName() string {
	return JoinName(e.FirstName, e.LastName)
}

// IsManager сообщает, проходит ли сотрудник ролевой фильтр руководителей
func (e Employee) IsManager() bool {
	return IsManagerRole(e.Role, e.AccessRole)
}

// Manager - сотрудник с ролью руководителя, опционально обогащённый
// названием отдела и филиалом этого отдела
type Manager struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	AccessRole     *string    `json:"access_role,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id"`
	DepartmentName *string    `json:"department_name,omitempty"`
	BranchID       *uuid.UUID `json:"branch_id,omitempty"`
}

// ManagerList - выборка руководителей. Enriched=false означает, что
// данные отдела получить не удалось и список построен без join; в этом
// случае принадлежность к филиалу неизвестна и фильтр по филиалу
// не применяется (BranchFilterSkipped).
type ManagerList struct {
	Managers            []Manager
	Enriched            bool
	BranchFilterSkipped bool
}

// ManagerFromEmployee строит проекцию руководителя без обогащения
func ManagerFromEmployee(e *Employee) *Manager {
	return &Manager{
		ID:           e.ID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		Role:         e.Role,
		AccessRole:   e.AccessRole,
		DepartmentID: e.DepartmentID,
	}
}

// Profile - запись справочника пользователей, которым управляет внешний
// сервис аутентификации. Таблица может отсутствовать.
type Profile struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
}

// TableName задаёт имя таблицы для GORM
func (Profile) TableName() string {
	return TableProfiles
}

// Actor - пользователь, от имени которого выполняется изменение
type Actor struct {
	ID uuid.UUID
}

// JoinName склеивает имя и фамилию, пропуская пустые части
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
