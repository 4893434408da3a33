package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// HierarchyService определяет интерфейс агрегатора иерархии
type HierarchyService interface {
	Load(ctx context.Context) (*domain.Hierarchy, error)
	Orphans(ctx context.Context) (*domain.OrphanReport, error)
}

type hierarchyService struct {
	branchRepo   repository.BranchRepository
	deptRepo     repository.DepartmentRepository
	managerRepo  repository.ManagerRepository
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewHierarchyService создаёт новый экземпляр сервиса
func NewHierarchyService(
	branchRepo repository.BranchRepository,
	deptRepo repository.DepartmentRepository,
	managerRepo repository.ManagerRepository,
	fetchTimeout time.Duration,
	logger *slog.Logger,
) HierarchyService {
	return &hierarchyService{
		branchRepo:   branchRepo,
		deptRepo:     deptRepo,
		managerRepo:  managerRepo,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// levelSet - три уровня, загруженные в рамках одного вызова
type levelSet struct {
	branches    []domain.BranchRef
	departments []domain.DepartmentRef
	managers    []domain.ManagerRef
	took        time.Duration
}

func (s *hierarchyService) Load(ctx context.Context) (*domain.Hierarchy, error) {
	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return buildHierarchy(snap), nil
}

func (s *hierarchyService) Orphans(ctx context.Context) (*domain.OrphanReport, error) {
	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	branchIDs := idSet(snap.branches, func(b domain.BranchRef) uuid.UUID { return b.ID })
	deptIDs := idSet(snap.departments, func(d domain.DepartmentRef) uuid.UUID { return d.ID })

	report := &domain.OrphanReport{
		Departments: []domain.DepartmentRef{},
		Managers:    []domain.ManagerRef{},
	}
	for _, d := range snap.departments {
		if !resolves(d.BranchID, branchIDs) {
			report.Departments = append(report.Departments, d)
		}
	}
	for _, m := range snap.managers {
		if !resolves(m.DepartmentID, deptIDs) {
			report.Managers = append(report.Managers, m)
		}
	}
	return report, nil
}

// fetch запускает три независимые загрузки одновременно и дожидается
// завершения всех. Ошибка одной загрузки не отменяет остальные.
func (s *hierarchyService) fetch(ctx context.Context) (*levelSet, error) {
	var (
		snap                           levelSet
		branchErr, deptErr, managerErr error
		g                              errgroup.Group
	)

	start := time.Now()
	g.Go(settle(ctx, s.fetchTimeout, &snap.branches, &branchErr, s.branchRepo.ListRefs))
	g.Go(settle(ctx, s.fetchTimeout, &snap.departments, &deptErr, s.deptRepo.ListRefs))
	g.Go(settle(ctx, s.fetchTimeout, &snap.managers, &managerErr, s.managerRepo.ListRefs))
	_ = g.Wait()
	snap.took = time.Since(start)

	var errs []error
	for _, level := range []struct {
		name string
		err  error
	}{
		{domain.LevelBranches, branchErr},
		{domain.LevelDepartments, deptErr},
		{domain.LevelManagers, managerErr},
	} {
		if level.err == nil {
			continue
		}
		s.logger.Error("hierarchy fetch failed",
			slog.String("level", level.name),
			slog.Any("error", level.err),
		)
		errs = append(errs, &domain.FetchError{Level: level.name, Err: level.err})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &snap, nil
}

// settle оборачивает загрузку уровня так, чтобы она никогда не
// возвращала ошибку в errgroup, а сохраняла её для последующего разбора
func settle[T any](
	ctx context.Context,
	timeout time.Duration,
	dst *[]T,
	errp *error,
	fetch func(context.Context) ([]T, error),
) func() error {
	return func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		*dst, *errp = fetch(fetchCtx)
		return nil
	}
}

// buildHierarchy собирает дерево со строгим совпадением ссылок и считает
// осиротевшие записи по тому же снимку
func buildHierarchy(snap *levelSet) *domain.Hierarchy {
	branchIDs := idSet(snap.branches, func(b domain.BranchRef) uuid.UUID { return b.ID })
	deptIDs := idSet(snap.departments, func(d domain.DepartmentRef) uuid.UUID { return d.ID })

	deptsByBranch := make(map[uuid.UUID][]domain.DepartmentRef, len(snap.branches))
	for _, d := range snap.departments {
		if d.BranchID != nil {
			deptsByBranch[*d.BranchID] = append(deptsByBranch[*d.BranchID], d)
		}
	}
	managersByDept := make(map[uuid.UUID][]domain.ManagerRef, len(snap.departments))
	for _, m := range snap.managers {
		if m.DepartmentID != nil {
			managersByDept[*m.DepartmentID] = append(managersByDept[*m.DepartmentID], m)
		}
	}

	branches := slices.Clone(snap.branches)
	slices.SortStableFunc(branches, func(a, b domain.BranchRef) int {
		return strings.Compare(a.Name, b.Name)
	})

	stats := domain.HierarchyStats{
		Branches:      len(snap.branches),
		Departments:   len(snap.departments),
		Managers:      len(snap.managers),
		FetchDuration: snap.took,
	}

	tree := make([]domain.BranchNode, 0, len(branches))
	for _, b := range branches {
		depts := deptsByBranch[b.ID]
		slices.SortStableFunc(depts, func(x, y domain.DepartmentRef) int {
			return strings.Compare(x.Name, y.Name)
		})

		node := domain.BranchNode{
			BranchRef:   b,
			Departments: make([]domain.DepartmentNode, 0, len(depts)),
		}
		for _, d := range depts {
			managers := slices.Clone(managersByDept[d.ID])
			if managers == nil {
				managers = []domain.ManagerRef{}
			}
			slices.SortStableFunc(managers, func(x, y domain.ManagerRef) int {
				return cmp.Or(
					strings.Compare(x.LastName, y.LastName),
					strings.Compare(x.FirstName, y.FirstName),
				)
			})
			node.Departments = append(node.Departments, domain.DepartmentNode{
				DepartmentRef: d,
				Managers:      managers,
			})
			stats.PlacedManagers += len(managers)
		}
		stats.PlacedDepartments += len(node.Departments)
		tree = append(tree, node)
	}

	for _, d := range snap.departments {
		if !resolves(d.BranchID, branchIDs) {
			stats.OrphanedDepartments++
		}
	}
	for _, m := range snap.managers {
		if !resolves(m.DepartmentID, deptIDs) {
			stats.OrphanedManagers++
		}
	}

	return &domain.Hierarchy{Branches: tree, Stats: stats}
}

func idSet[T any](items []T, id func(T) uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		set[id(item)] = struct{}{}
	}
	return set
}

// resolves проверяет, что ссылка не пустая и указывает на существующую запись
func resolves(ref *uuid.UUID, valid map[uuid.UUID]struct{}) bool {
	if ref == nil {
		return false
	}
	_, ok := valid[*ref]
	return ok
}
