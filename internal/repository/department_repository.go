package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentRepository определяет интерфейс для работы с отделами
type DepartmentRepository interface {
	List(ctx context.Context, branchID *uuid.UUID) ([]domain.Department, error)
	ListRefs(ctx context.Context) ([]domain.DepartmentRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type departmentRepository struct {
	db       *gorm.DB
	branches BranchRepository
	logger   *slog.Logger
}

// NewDepartmentRepository создаёт новый экземпляр репозитория. Названия
// филиалов для обогащения списка берутся из branches.
func NewDepartmentRepository(db *gorm.DB, branches BranchRepository, logger *slog.Logger) DepartmentRepository {
	return &departmentRepository{db: db, branches: branches, logger: logger}
}

// List возвращает отделы (опционально одного филиала) и затем отдельным
// шагом дополняет их названием филиала и именем руководителя.
// Сбой дополнения не делает вызов неуспешным.
func (r *departmentRepository) List(ctx context.Context, branchID *uuid.UUID) ([]domain.Department, error) {
	depts := make([]domain.Department, 0)
	query := r.db.WithContext(ctx).Order("name ASC")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	if err := query.Find(&depts).Error; err != nil {
		return nil, storeError(domain.TableDepartments, "list", err)
	}

	r.enrichBranchNames(ctx, depts)
	r.enrichManagerNames(ctx, depts)

	return depts, nil
}

func (r *departmentRepository) enrichBranchNames(ctx context.Context, depts []domain.Department) {
	ids := collectIDs(depts, func(d domain.Department) *uuid.UUID { return d.BranchID })
	if len(ids) == 0 {
		return
	}

	names, err := r.branches.NamesByIDs(ctx, ids)
	if err != nil {
		r.logger.Warn("branch name enrichment failed",
			slog.String("table", domain.TableBranches),
			slog.Any("error", err),
		)
		return
	}

	for i := range depts {
		if depts[i].BranchID == nil {
			continue
		}
		if name, ok := names[*depts[i].BranchID]; ok {
			depts[i].BranchName = &name
		}
	}
}

func (r *departmentRepository) enrichManagerNames(ctx context.Context, depts []domain.Department) {
	ids := collectIDs(depts, func(d domain.Department) *uuid.UUID { return d.ManagerID })
	if len(ids) == 0 {
		return
	}

	var refs []domain.ManagerRef
	err := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		r.logger.Warn("manager name enrichment failed",
			slog.String("table", domain.TableEmployees),
			slog.Any("error", err),
		)
		return
	}

	names := make(map[uuid.UUID]string, len(refs))
	for _, ref := range refs {
		names[ref.ID] = domain.JoinName(ref.FirstName, ref.LastName)
	}
	for i := range depts {
		if depts[i].ManagerID == nil {
			continue
		}
		if name, ok := names[*depts[i].ManagerID]; ok {
			depts[i].ManagerName = &name
		}
	}
}

func (r *departmentRepository) ListRefs(ctx context.Context) ([]domain.DepartmentRef, error) {
	refs := make([]domain.DepartmentRef, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.Department{}).
		Select("id", "name", "branch_id").
		Order("name ASC").
		Find(&refs).Error
	if err != nil {
		return nil, storeError(domain.TableDepartments, "list", err)
	}
	return refs, nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).First(&dept, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, storeError(domain.TableDepartments, "get", err)
	}
	return &dept, nil
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	if err := r.db.WithContext(ctx).Create(dept).Error; err != nil {
		return storeError(domain.TableDepartments, "insert", err)
	}
	return nil
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	result := r.db.WithContext(ctx).Model(dept).Select("*").Updates(dept)
	if result.Error != nil {
		return storeError(domain.TableDepartments, "update", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Department{}, "id = ?", id)
	if result.Error != nil {
		return storeError(domain.TableDepartments, "delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

// collectIDs собирает уникальные непустые ссылки
func collectIDs[T any](items []T, ref func(T) *uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id := ref(item)
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	return ids
}
