package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// ManagerFilter - уточнение выборки руководителей
type ManagerFilter struct {
	BranchID     *uuid.UUID
	DepartmentID *uuid.UUID
}

// ManagerRepository определяет интерфейс для работы с руководителями -
// сотрудниками, прошедшими ролевой фильтр
type ManagerRepository interface {
	List(ctx context.Context, filter ManagerFilter) (*domain.ManagerList, error)
	ListRefs(ctx context.Context) ([]domain.ManagerRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
}

type managerRepository struct {
	db     *gorm.DB
	caps   *Capabilities
	logger *slog.Logger
}

// NewManagerRepository создаёт новый экземпляр репозитория
func NewManagerRepository(db *gorm.DB, caps *Capabilities, logger *slog.Logger) ManagerRepository {
	return &managerRepository{db: db, caps: caps, logger: logger}
}

type managerRow struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Role           string
	AccessRole     *string
	DepartmentID   *uuid.UUID
	DepartmentName *string
	BranchID       *uuid.UUID
}

const managerRolePredicate = "(e.role IN ? OR e.access_role = ?)"

// List возвращает руководителей. Сначала выполняется запрос с join
// по departments (название отдела и филиал); если он не удался по любой
// причине, список строится без join. Фатальна только ошибка сокращённого
// запроса. Фильтры применяются в памяти.
func (r *managerRepository) List(ctx context.Context, filter ManagerFilter) (*domain.ManagerList, error) {
	rows, enriched, err := r.listRows(ctx)
	if err != nil {
		return nil, storeError(domain.TableEmployees, "list", err)
	}

	result := &domain.ManagerList{
		Managers:            make([]domain.Manager, 0, len(rows)),
		Enriched:            enriched,
		BranchFilterSkipped: filter.BranchID != nil && !enriched,
	}
	for _, row := range rows {
		if filter.DepartmentID != nil && !sameID(row.DepartmentID, *filter.DepartmentID) {
			continue
		}
		if filter.BranchID != nil && enriched && !sameID(row.BranchID, *filter.BranchID) {
			continue
		}
		result.Managers = append(result.Managers, domain.Manager(row))
	}
	return result, nil
}

// listRows сообщает, удалось ли получить обогащённую форму
func (r *managerRepository) listRows(ctx context.Context) ([]managerRow, bool, error) {
	if r.caps.HasRelation(ctx, domain.TableDepartments) {
		rows, err := r.listRich(ctx)
		if err == nil {
			return rows, true, nil
		}
		if IsMissingRelation(err) {
			r.caps.MarkMissing(domain.TableDepartments)
		} else {
			r.logger.Warn("manager enrichment failed, using reduced query shape",
				slog.String("table", domain.TableDepartments),
				slog.Any("error", err),
			)
		}
	}

	rows, err := r.listBasic(ctx)
	return rows, false, err
}

func (r *managerRepository) listRich(ctx context.Context) ([]managerRow, error) {
	var rows []managerRow
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select("e.id, e.first_name, e.last_name, e.email, e.role, e.access_role, e.department_id, " +
			"d.name AS department_name, d.branch_id AS branch_id").
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Where(managerRolePredicate, domain.ManagerRoles, domain.RoleManager).
		Order("e.last_name ASC, e.first_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *managerRepository) listBasic(ctx context.Context) ([]managerRow, error) {
	var rows []managerRow
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select("e.id, e.first_name, e.last_name, e.email, e.role, e.access_role, e.department_id").
		Where(managerRolePredicate, domain.ManagerRoles, domain.RoleManager).
		Order("e.last_name ASC, e.first_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *managerRepository) ListRefs(ctx context.Context) ([]domain.ManagerRef, error) {
	refs := make([]domain.ManagerRef, 0)
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select("e.id, e.first_name, e.last_name, e.role, e.department_id").
		Where(managerRolePredicate, domain.ManagerRoles, domain.RoleManager).
		Order("e.last_name ASC, e.first_name ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, storeError(domain.TableEmployees, "list", err)
	}
	return refs, nil
}

func (r *managerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).First(&emp, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrManagerNotFound
		}
		return nil, storeError(domain.TableEmployees, "get", err)
	}
	if !emp.IsManager() {
		return nil, domain.ErrManagerNotFound
	}
	return &emp, nil
}

func (r *managerRepository) Create(ctx context.Context, emp *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(emp).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return storeError(domain.TableEmployees, "insert", err)
	}
	return nil
}

func (r *managerRepository) Update(ctx context.Context, emp *domain.Employee) error {
	result := r.db.WithContext(ctx).Model(emp).Select("*").Updates(emp)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrDuplicateEmail
		}
		return storeError(domain.TableEmployees, "update", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrManagerNotFound
	}
	return nil
}

func (r *managerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Employee{}, "id = ?", id)
	if result.Error != nil {
		return storeError(domain.TableEmployees, "delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrManagerNotFound
	}
	return nil
}

func (r *managerRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Employee{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, storeError(domain.TableEmployees, "count", err)
	}
	return count > 0, nil
}

func sameID(ref *uuid.UUID, id uuid.UUID) bool {
	return ref != nil && *ref == id
}
