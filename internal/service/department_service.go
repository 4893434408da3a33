package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/repository"
)

// DepartmentService определяет интерфейс бизнес-логики для отделов
type DepartmentService interface {
	List(ctx context.Context, branchID *uuid.UUID) ([]domain.Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	Create(ctx context.Context, actor domain.Actor, req *dto.CreateDepartmentRequest) (*domain.Department, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*domain.Department, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Department, error)
}

type departmentService struct {
	deptRepo    repository.DepartmentRepository
	branchRepo  repository.BranchRepository
	managerRepo repository.ManagerRepository
	audit       AuditService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewDepartmentService создаёт новый экземпляр сервиса
func NewDepartmentService(
	deptRepo repository.DepartmentRepository,
	branchRepo repository.BranchRepository,
	managerRepo repository.ManagerRepository,
	audit AuditService,
	logger *slog.Logger,
) DepartmentService {
	return &departmentService{
		deptRepo:    deptRepo,
		branchRepo:  branchRepo,
		managerRepo: managerRepo,
		audit:       audit,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (s *departmentService) List(ctx context.Context, branchID *uuid.UUID) ([]domain.Department, error) {
	return s.deptRepo.List(ctx, branchID)
}

func (s *departmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	return s.deptRepo.GetByID(ctx, id)
}

func (s *departmentService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateDepartmentRequest) (*domain.Department, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.Name = *trimmed(&req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if err := s.checkRefs(ctx, req.BranchID, req.ManagerID); err != nil {
		return nil, err
	}

	dept := &domain.Department{
		Name:      req.Name,
		BranchID:  req.BranchID,
		ManagerID: req.ManagerID,
		Location:  emptyToNil(req.Location),
	}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableDepartments, dept.ID, domain.ActionInsert, nil, dept)
	return dept, nil
}

func (s *departmentService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*domain.Department, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.Name = trimmed(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *dept

	// Проверяем только те ссылки, которые меняются в этом запросе
	var branchID, managerID *uuid.UUID
	if req.BranchID.Set {
		branchID = req.BranchID.Value
	}
	if req.ManagerID.Set {
		managerID = req.ManagerID.Value
	}
	if err := s.checkRefs(ctx, branchID, managerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		dept.Name = *req.Name
	}
	if req.BranchID.Set {
		dept.BranchID = req.BranchID.Value
	}
	if req.ManagerID.Set {
		dept.ManagerID = req.ManagerID.Value
	}
	if req.Location != nil {
		dept.Location = emptyToNil(req.Location)
	}

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableDepartments, dept.ID, domain.ActionUpdate, &old, dept)
	return dept, nil
}

// Delete удаляет отдел. Руководители этого отдела становятся осиротевшими.
func (s *departmentService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Department, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deptRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableDepartments, dept.ID, domain.ActionDelete, dept, nil)
	return dept, nil
}

// checkRefs проверяет, что заданные филиал и руководитель существуют
// на момент записи
func (s *departmentService) checkRefs(ctx context.Context, branchID, managerID *uuid.UUID) error {
	if branchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *branchID); err != nil {
			return err
		}
	}
	if managerID != nil {
		if _, err := s.managerRepo.GetByID(ctx, *managerID); err != nil {
			return err
		}
	}
	return nil
}
