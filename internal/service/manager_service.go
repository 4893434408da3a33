package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/repository"
)

// ManagerService определяет интерфейс бизнес-логики для руководителей
type ManagerService interface {
	List(ctx context.Context, filter repository.ManagerFilter) (*domain.ManagerList, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	Create(ctx context.Context, actor domain.Actor, req *dto.CreateManagerRequest) (*domain.Employee, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateManagerRequest) (*domain.Employee, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Employee, error)
}

type managerService struct {
	managerRepo repository.ManagerRepository
	deptRepo    repository.DepartmentRepository
	audit       AuditService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewManagerService создаёт новый экземпляр сервиса
func NewManagerService(
	managerRepo repository.ManagerRepository,
	deptRepo repository.DepartmentRepository,
	audit AuditService,
	logger *slog.Logger,
) ManagerService {
	return &managerService{
		managerRepo: managerRepo,
		deptRepo:    deptRepo,
		audit:       audit,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (s *managerService) List(ctx context.Context, filter repository.ManagerFilter) (*domain.ManagerList, error) {
	return s.managerRepo.List(ctx, filter)
}

func (s *managerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return s.managerRepo.GetByID(ctx, id)
}

func (s *managerService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateManagerRequest) (*domain.Employee, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	req.AccessRole = emptyToNil(req.AccessRole)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if !domain.IsManagerRole(req.Role, req.AccessRole) {
		return nil, domain.ErrNotManagerRole
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	exists, err := s.managerRepo.ExistsByEmail(ctx, req.Email, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	emp := &domain.Employee{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         req.Role,
		AccessRole:   req.AccessRole,
		DepartmentID: req.DepartmentID,
	}
	if err := s.managerRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableEmployees, emp.ID, domain.ActionInsert, nil, emp)
	return emp, nil
}

func (s *managerService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateManagerRequest) (*domain.Employee, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.FirstName = trimmed(req.FirstName)
	req.LastName = trimmed(req.LastName)
	req.Email = trimmed(req.Email)
	req.Role = trimmed(req.Role)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	emp, err := s.managerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *emp

	if req.FirstName != nil {
		emp.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		emp.LastName = *req.LastName
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	if req.AccessRole != nil {
		emp.AccessRole = emptyToNil(req.AccessRole)
	}
	// Руководитель не может быть понижен через этот сервис
	if !emp.IsManager() {
		return nil, domain.ErrNotManagerRole
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, emp.Email) {
		exists, err := s.managerRepo.ExistsByEmail(ctx, *req.Email, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEmail
		}
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}

	if req.DepartmentID.Set {
		if err := s.checkDepartment(ctx, req.DepartmentID.Value); err != nil {
			return nil, err
		}
		emp.DepartmentID = req.DepartmentID.Value
	}

	if err := s.managerRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableEmployees, emp.ID, domain.ActionUpdate, &old, emp)
	return emp, nil
}

func (s *managerService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Employee, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	emp, err := s.managerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.managerRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableEmployees, emp.ID, domain.ActionDelete, emp, nil)
	return emp, nil
}

func (s *managerService) checkDepartment(ctx context.Context, departmentID *uuid.UUID) error {
	if departmentID == nil {
		return nil
	}
	_, err := s.deptRepo.GetByID(ctx, *departmentID)
	return err
}
