package dto

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
)

// NullableUUID различает отсутствующее поле и явный null в PATCH-запросе
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// SetTo возвращает NullableUUID с явно заданным значением
func SetTo(id *uuid.UUID) NullableUUID {
	return NullableUUID{Set: true, Value: id}
}

// CreateBranchRequest - запрос на создание филиала
type CreateBranchRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Address       *string `json:"address" validate:"omitempty,max=500"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=50"`
}

// UpdateBranchRequest - запрос на обновление филиала
type UpdateBranchRequest struct {
	Name          *string `json:"name" validate:"omitnil,min=1,max=200"`
	Address       *string `json:"address" validate:"omitempty,max=500"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=50"`
}

// CreateDepartmentRequest - запрос на создание отдела
type CreateDepartmentRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	BranchID  *uuid.UUID `json:"branch_id"`
	ManagerID *uuid.UUID `json:"manager_id"`
	Location  *string    `json:"location" validate:"omitempty,max=200"`
}

// UpdateDepartmentRequest - запрос на обновление отдела
type UpdateDepartmentRequest struct {
	Name      *string      `json:"name" validate:"omitnil,min=1,max=200"`
	BranchID  NullableUUID `json:"branch_id"`
	ManagerID NullableUUID `json:"manager_id"`
	Location  *string      `json:"location" validate:"omitempty,max=200"`
}

// CreateManagerRequest - запрос на создание сотрудника-руководителя
type CreateManagerRequest struct {
	FirstName    string     `json:"first_name" validate:"required,min=1,max=100"`
	LastName     string     `json:"last_name" validate:"required,min=1,max=100"`
	Email        string     `json:"email" validate:"required,email,max=255"`
	Role         string     `json:"role" validate:"required,max=100"`
	AccessRole   *string    `json:"access_role" validate:"omitempty,max=100"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

// UpdateManagerRequest - запрос на обновление руководителя
type UpdateManagerRequest struct {
	FirstName    *string      `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName     *string      `json:"last_name" validate:"omitnil,min=1,max=100"`
	Email        *string      `json:"email" validate:"omitnil,email,max=255"`
	Role         *string      `json:"role" validate:"omitnil,min=1,max=100"`
	AccessRole   *string      `json:"access_role" validate:"omitempty,max=100"`
	DepartmentID NullableUUID `json:"department_id"`
}

// ValidateHierarchyRequest - тройка для проверки вложенности
type ValidateHierarchyRequest struct {
	BranchID     uuid.UUID  `json:"branch_id"`
	DepartmentID uuid.UUID  `json:"department_id"`
	ManagerID    *uuid.UUID `json:"manager_id"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListResponse оборачивает коллекции
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse гарантирует пустой массив вместо null
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// ManagerListResponse дополняет список признаками полноты данных
type ManagerListResponse struct {
	ListResponse[domain.Manager]
	Enriched            bool `json:"enriched"`
	BranchFilterSkipped bool `json:"branch_filter_skipped,omitempty"`
}

func NewManagerListResponse(list *domain.ManagerList) ManagerListResponse {
	return ManagerListResponse{
		ListResponse:        NewListResponse(list.Managers),
		Enriched:            list.Enriched,
		BranchFilterSkipped: list.BranchFilterSkipped,
	}
}
