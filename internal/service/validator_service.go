package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/repository"
)

// HierarchyValidator проверяет вложенность филиал -> отдел -> руководитель
// перед сохранением назначения
type HierarchyValidator interface {
	ValidateHierarchy(ctx context.Context, branchID, departmentID uuid.UUID, managerID *uuid.UUID) domain.ValidationResult
}

type hierarchyValidator struct {
	deptRepo    repository.DepartmentRepository
	managerRepo repository.ManagerRepository
	logger      *slog.Logger
}

// NewHierarchyValidator создаёт новый экземпляр валидатора
func NewHierarchyValidator(
	deptRepo repository.DepartmentRepository,
	managerRepo repository.ManagerRepository,
	logger *slog.Logger,
) HierarchyValidator {
	return &hierarchyValidator{
		deptRepo:    deptRepo,
		managerRepo: managerRepo,
		logger:      logger,
	}
}

// ValidateHierarchy никогда не возвращает ошибку: нарушение вложенности
// и невозможность проверки различаются полем Reason
func (v *hierarchyValidator) ValidateHierarchy(
	ctx context.Context,
	branchID, departmentID uuid.UUID,
	managerID *uuid.UUID,
) domain.ValidationResult {
	dept, err := v.deptRepo.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, domain.ErrDepartmentNotFound) {
			return invalid(domain.ReasonDepartmentNotFound, domain.MsgDepartmentNotFound)
		}
		return v.serverError(err, domain.TableDepartments)
	}
	if dept.BranchID == nil || *dept.BranchID != branchID {
		return invalid(domain.ReasonBranchMismatch, domain.MsgBranchMismatch)
	}

	if managerID == nil {
		return domain.ValidationResult{Valid: true}
	}

	manager, err := v.managerRepo.GetByID(ctx, *managerID)
	if err != nil {
		if errors.Is(err, domain.ErrManagerNotFound) {
			return invalid(domain.ReasonManagerNotFound, domain.MsgManagerNotFound)
		}
		return v.serverError(err, domain.TableEmployees)
	}
	if manager.DepartmentID == nil || *manager.DepartmentID != departmentID {
		return invalid(domain.ReasonDepartmentMismatch, domain.MsgDepartmentMismatch)
	}

	return domain.ValidationResult{Valid: true}
}

func (v *hierarchyValidator) serverError(err error, table string) domain.ValidationResult {
	v.logger.Error("hierarchy validation failed",
		slog.String("table", table),
		slog.Any("error", err),
	)
	return invalid(domain.ReasonServerError, domain.MsgServerError)
}

func invalid(reason domain.ValidationReason, msg string) domain.ValidationResult {
	return domain.ValidationResult{Valid: false, Message: msg, Reason: reason}
}
