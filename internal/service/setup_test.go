package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/org-hierarchy-api/internal/service"
	"github.com/org-hierarchy-api/internal/testdb"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture собирает сервисы поверх одной SQLite базы так же, как cmd/api
type fixture struct {
	db    *gorm.DB
	actor domain.Actor

	caps        *repository.Capabilities
	branchRepo  repository.BranchRepository
	deptRepo    repository.DepartmentRepository
	managerRepo repository.ManagerRepository

	audit       service.AuditService
	hierarchy   service.HierarchyService
	validator   service.HierarchyValidator
	branches    service.BranchService
	departments service.DepartmentService
	managers    service.ManagerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.Open(t)
	logger := testdb.Logger()

	f := &fixture{db: db, actor: domain.Actor{ID: uuid.New()}}
	f.caps = repository.NewCapabilities(db, time.Minute, logger)
	f.branchRepo = repository.NewBranchRepository(db)
	f.deptRepo = repository.NewDepartmentRepository(db, f.branchRepo, logger)
	f.managerRepo = repository.NewManagerRepository(db, f.caps, logger)

	f.audit = service.NewAuditService(
		repository.NewAuditRepository(db),
		repository.NewProfileRepository(db, f.caps),
		service.AuditLimits{Default: 100, Max: 1000},
		logger,
	)
	f.hierarchy = service.NewHierarchyService(f.branchRepo, f.deptRepo, f.managerRepo, 5*time.Second, logger)
	f.validator = service.NewHierarchyValidator(f.deptRepo, f.managerRepo, logger)
	f.branches = service.NewBranchService(f.branchRepo, f.audit, logger)
	f.departments = service.NewDepartmentService(f.deptRepo, f.branchRepo, f.managerRepo, f.audit, logger)
	f.managers = service.NewManagerService(f.managerRepo, f.deptRepo, f.audit, logger)
	return f
}

func (f *fixture) branch(t *testing.T, name string) *domain.Branch {
	t.Helper()
	b, err := f.branches.Create(context.Background(), f.actor, &dto.CreateBranchRequest{Name: name})
	require.NoError(t, err)
	return b
}

func (f *fixture) department(t *testing.T, name string, branchID *uuid.UUID) *domain.Department {
	t.Helper()
	d, err := f.departments.Create(context.Background(), f.actor, &dto.CreateDepartmentRequest{
		Name:     name,
		BranchID: branchID,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) manager(t *testing.T, first, last string, departmentID *uuid.UUID) *domain.Employee {
	t.Helper()
	m, err := f.managers.Create(context.Background(), f.actor, &dto.CreateManagerRequest{
		FirstName:    first,
		LastName:     last,
		Email:        uuid.NewString() + "@example.com",
		Role:         domain.RoleManager,
		DepartmentID: departmentID,
	})
	require.NoError(t, err)
	return m
}

// rawDepartment пишет отдел в обход сервиса, например с висячей ссылкой
func (f *fixture) rawDepartment(t *testing.T, name string, branchID *uuid.UUID) *domain.Department {
	t.Helper()
	d := &domain.Department{Name: name, BranchID: branchID}
	require.NoError(t, f.db.Create(d).Error)
	return d
}

func (f *fixture) rawManager(t *testing.T, first, last, role string, departmentID *uuid.UUID) *domain.Employee {
	t.Helper()
	e := &domain.Employee{
		FirstName:    first,
		LastName:     last,
		Email:        uuid.NewString() + "@example.com",
		Role:         role,
		DepartmentID: departmentID,
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

func (f *fixture) auditLogs(t *testing.T, table string, action domain.AuditAction) []domain.AuditLog {
	t.Helper()
	entries, err := f.audit.GetAuditLogs(context.Background(), domain.AuditLogFilter{
		TableName: &table,
		Action:    &action,
	})
	require.NoError(t, err)
	return entries
}

func ptr[T any](v T) *T { return &v }
