package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// BranchRepository определяет интерфейс для работы с филиалами
type BranchRepository interface {
	List(ctx context.Context) ([]domain.Branch, error)
	ListRefs(ctx context.Context) ([]domain.BranchRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository создаёт новый экземпляр репозитория
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	branches := make([]domain.Branch, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&branches).Error; err != nil {
		return nil, storeError(domain.TableBranches, "list", err)
	}
	return branches, nil
}

func (r *branchRepository) ListRefs(ctx context.Context) ([]domain.BranchRef, error) {
	refs := make([]domain.BranchRef, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.Branch{}).
		Select("id", "name").
		Order("name ASC").
		Find(&refs).Error
	if err != nil {
		return nil, storeError(domain.TableBranches, "list", err)
	}
	return refs, nil
}

func (r *branchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, storeError(domain.TableBranches, "get", err)
	}
	return &branch, nil
}

func (r *branchRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var refs []domain.BranchRef
	err := r.db.WithContext(ctx).
		Model(&domain.Branch{}).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&refs).Error
	if err != nil {
		return nil, storeError(domain.TableBranches, "lookup", err)
	}
	for _, ref := range refs {
		names[ref.ID] = ref.Name
	}
	return names, nil
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBranchName
		}
		return storeError(domain.TableBranches, "insert", err)
	}
	return nil
}

// Update перезаписывает все поля существующей записи. Удалённая
// тем временем запись не воссоздаётся.
func (r *branchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	result := r.db.WithContext(ctx).Model(branch).Select("*").Updates(branch)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrDuplicateBranchName
		}
		return storeError(domain.TableBranches, "update", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}

func (r *branchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Branch{}, "id = ?", id)
	if result.Error != nil {
		return storeError(domain.TableBranches, "delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}

func (r *branchRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Branch{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, storeError(domain.TableBranches, "count", err)
	}
	return count > 0, nil
}
