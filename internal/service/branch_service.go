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

// BranchService определяет интерфейс бизнес-логики для филиалов
type BranchService interface {
	List(ctx context.Context) ([]domain.Branch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	Create(ctx context.Context, actor domain.Actor, req *dto.CreateBranchRequest) (*domain.Branch, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateBranchRequest) (*domain.Branch, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Branch, error)
}

type branchService struct {
	branchRepo repository.BranchRepository
	audit      AuditService
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewBranchService создаёт новый экземпляр сервиса
func NewBranchService(branchRepo repository.BranchRepository, audit AuditService, logger *slog.Logger) BranchService {
	return &branchService{
		branchRepo: branchRepo,
		audit:      audit,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *branchService) List(ctx context.Context) ([]domain.Branch, error) {
	return s.branchRepo.List(ctx)
}

func (s *branchService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	return s.branchRepo.GetByID(ctx, id)
}

func (s *branchService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateBranchRequest) (*domain.Branch, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.Name = *trimmed(&req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.branchRepo.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateBranchName
	}

	branch := &domain.Branch{
		Name:          req.Name,
		Address:       emptyToNil(req.Address),
		ContactNumber: emptyToNil(req.ContactNumber),
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableBranches, branch.ID, domain.ActionInsert, nil, branch)
	return branch, nil
}

func (s *branchService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateBranchRequest) (*domain.Branch, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	req.Name = trimmed(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := *branch

	if req.Name != nil && *req.Name != branch.Name {
		exists, err := s.branchRepo.ExistsByName(ctx, *req.Name, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateBranchName
		}
		branch.Name = *req.Name
	}
	if req.Address != nil {
		branch.Address = emptyToNil(req.Address)
	}
	if req.ContactNumber != nil {
		branch.ContactNumber = emptyToNil(req.ContactNumber)
	}

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableBranches, branch.ID, domain.ActionUpdate, &old, branch)
	return branch, nil
}

// Delete удаляет филиал. Отделы, ссылавшиеся на него, становятся
// осиротевшими и видны в статистике иерархии.
func (s *branchService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Branch, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, actor, domain.TableBranches, branch.ID, domain.ActionDelete, branch, nil)
	return branch, nil
}
