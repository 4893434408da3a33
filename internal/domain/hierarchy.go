package domain

import (
	"time"

	"github.com/google/uuid"
)

// Уровни иерархии, которые загружаются агрегатором
const (
	LevelBranches    = "branches"
	LevelDepartments = "departments"
	LevelManagers    = "managers"
)

// BranchRef - минимальная проекция филиала для построения дерева
type BranchRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DepartmentRef - минимальная проекция отдела
type DepartmentRef struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	BranchID *uuid.UUID `json:"branch_id"`
}

// ManagerRef - минимальная проекция руководителя
type ManagerRef struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

type BranchNode struct {
	BranchRef
	Departments []DepartmentNode `json:"departments"`
}

type DepartmentNode struct {
	DepartmentRef
	Managers []ManagerRef `json:"managers"`
}

// HierarchyStats - счётчики качества данных одного снимка
type HierarchyStats struct {
	Branches            int           `json:"branches"`
	Departments         int           `json:"departments"`
	Managers            int           `json:"managers"`
	OrphanedDepartments int           `json:"orphaned_departments"`
	OrphanedManagers    int           `json:"orphaned_managers"`
	PlacedDepartments   int           `json:"placed_departments"`
	PlacedManagers      int           `json:"placed_managers"`
	FetchDuration       time.Duration `json:"fetch_duration_ns"`
}

// Hierarchy - дерево Branch -> Department -> Manager и статистика
type Hierarchy struct {
	Branches []BranchNode   `json:"hierarchy"`
	Stats    HierarchyStats `json:"stats"`
}

// OrphanReport перечисляет осиротевшие записи одного снимка
type OrphanReport struct {
	Departments []DepartmentRef `json:"departments"`
	Managers    []ManagerRef    `json:"managers"`
}

// ValidationReason различает структурные нарушения и сбой проверки
type ValidationReason string

const (
	ReasonNone               ValidationReason = ""
	ReasonDepartmentNotFound ValidationReason = "department_not_found"
	ReasonBranchMismatch     ValidationReason = "branch_mismatch"
	ReasonManagerNotFound    ValidationReason = "manager_not_found"
	ReasonDepartmentMismatch ValidationReason = "department_mismatch"
	ReasonServerError        ValidationReason = "server_error"
)

// Сообщения валидатора иерархии
const (
	MsgDepartmentNotFound = "Department not found"
	MsgBranchMismatch     = "Selected Department does not belong to the selected Branch"
	MsgManagerNotFound    = "Manager not found"
	MsgDepartmentMismatch = "Selected Line Manager does not belong to the selected Department"
	MsgServerError        = "Validation failed due to server error"
)

// ValidationResult - итог проверки вложенности branch/department/manager
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Message string           `json:"message,omitempty"`
	Reason  ValidationReason `json:"reason,omitempty"`
}

// IsServerError отличает "не удалось проверить" от "структура неверна"
func (r ValidationResult) IsServerError() bool {
	return r.Reason == ReasonServerError
}
