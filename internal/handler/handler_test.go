package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/handler"
	"github.com/org-hierarchy-api/internal/middleware"
	"github.com/org-hierarchy-api/internal/repository"
)

type mockHierarchyService struct {
	result *domain.Hierarchy
	report *domain.OrphanReport
	err    error
}

func (m *mockHierarchyService) Load(ctx context.Context) (*domain.Hierarchy, error) {
	return m.result, m.err
}

func (m *mockHierarchyService) Orphans(ctx context.Context) (*domain.OrphanReport, error) {
	return m.report, m.err
}

type mockValidator struct {
	result domain.ValidationResult
	calls  []dto.ValidateHierarchyRequest
}

func (m *mockValidator) ValidateHierarchy(ctx context.Context, branchID, departmentID uuid.UUID, managerID *uuid.UUID) domain.ValidationResult {
	m.calls = append(m.calls, dto.ValidateHierarchyRequest{BranchID: branchID, DepartmentID: departmentID, ManagerID: managerID})
	return m.result
}

type mockBranchService struct {
	branches map[uuid.UUID]*domain.Branch
	actors   []domain.Actor
}

func newMockBranchService() *mockBranchService {
	return &mockBranchService{branches: make(map[uuid.UUID]*domain.Branch)}
}

func (s *mockBranchService) List(ctx context.Context) ([]domain.Branch, error) {
	result := make([]domain.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		result = append(result, *b)
	}
	return result, nil
}

func (s *mockBranchService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	if b, ok := s.branches[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBranchNotFound
}

func (s *mockBranchService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateBranchRequest) (*domain.Branch, error) {
	if actor.ID == uuid.Nil {
		return nil, domain.ErrActorRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	for _, b := range s.branches {
		if strings.EqualFold(b.Name, req.Name) {
			return nil, domain.ErrDuplicateBranchName
		}
	}
	s.actors = append(s.actors, actor)
	b := &domain.Branch{ID: uuid.New(), Name: req.Name, CreatedAt: time.Now()}
	s.branches[b.ID] = b
	return b, nil
}

func (s *mockBranchService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateBranchRequest) (*domain.Branch, error) {
	if actor.ID == uuid.Nil {
		return nil, domain.ErrActorRequired
	}
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	return b, nil
}

func (s *mockBranchService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Branch, error) {
	if actor.ID == uuid.Nil {
		return nil, domain.ErrActorRequired
	}
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(s.branches, id)
	return b, nil
}

type mockDepartmentService struct {
	lastBranchFilter *uuid.UUID
	lastUpdate       *dto.UpdateDepartmentRequest
}

func (s *mockDepartmentService) List(ctx context.Context, branchID *uuid.UUID) ([]domain.Department, error) {
	s.lastBranchFilter = branchID
	return nil, nil
}

func (s *mockDepartmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	return nil, domain.ErrDepartmentNotFound
}

func (s *mockDepartmentService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateDepartmentRequest) (*domain.Department, error) {
	if req.BranchID != nil {
		return nil, domain.ErrBranchNotFound
	}
	return &domain.Department{ID: uuid.New(), Name: req.Name}, nil
}

func (s *mockDepartmentService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*domain.Department, error) {
	s.lastUpdate = req
	return &domain.Department{ID: id, Name: "Engineering", BranchID: req.BranchID.Value}, nil
}

func (s *mockDepartmentService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Department, error) {
	return nil, domain.ErrDepartmentNotFound
}

type mockManagerService struct {
	lastFilter repository.ManagerFilter
	reduced    bool
}

func (s *mockManagerService) List(ctx context.Context, filter repository.ManagerFilter) (*domain.ManagerList, error) {
	s.lastFilter = filter
	return &domain.ManagerList{
		Managers:            []domain.Manager{{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Role: domain.RoleManager}},
		Enriched:            !s.reduced,
		BranchFilterSkipped: s.reduced && filter.BranchID != nil,
	}, nil
}

func (s *mockManagerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return nil, domain.ErrManagerNotFound
}

func (s *mockManagerService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateManagerRequest) (*domain.Employee, error) {
	if !domain.IsManagerRole(req.Role, req.AccessRole) {
		return nil, domain.ErrNotManagerRole
	}
	return nil, domain.ErrDuplicateEmail
}

func (s *mockManagerService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *dto.UpdateManagerRequest) (*domain.Employee, error) {
	return nil, domain.ErrManagerNotFound
}

func (s *mockManagerService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Employee, error) {
	return nil, domain.ErrManagerNotFound
}

type mockAuditService struct {
	lastFilter domain.AuditLogFilter
	entries    []domain.AuditLog
}

func (s *mockAuditService) LogAction(ctx context.Context, actor domain.Actor, table string, recordID uuid.UUID, action domain.AuditAction, oldData, newData any) {
}

func (s *mockAuditService) GetAuditLogs(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	s.lastFilter = filter
	if filter.Action != nil && *filter.Action != domain.ActionInsert && *filter.Action != domain.ActionUpdate && *filter.Action != domain.ActionDelete {
		return nil, fmt.Errorf("%w: action is invalid", domain.ErrValidation)
	}
	return s.entries, nil
}

type testServer struct {
	server      *httptest.Server
	actor       uuid.UUID
	hierarchy   *mockHierarchyService
	validator   *mockValidator
	branches    *mockBranchService
	departments *mockDepartmentService
	managers    *mockManagerService
	audit       *mockAuditService
}

func setupTestServer(_ *testing.T) *testServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	ts := &testServer{
		actor:       uuid.New(),
		hierarchy:   &mockHierarchyService{},
		validator:   &mockValidator{result: domain.ValidationResult{Valid: true}},
		branches:    newMockBranchService(),
		departments: &mockDepartmentService{},
		managers:    &mockManagerService{},
		audit:       &mockAuditService{},
	}

	router := handler.NewRouter(
		handler.NewHierarchyHandler(ts.hierarchy, ts.validator, logger),
		handler.NewBranchHandler(ts.branches, logger),
		handler.NewDepartmentHandler(ts.departments, logger),
		handler.NewManagerHandler(ts.managers, logger),
		handler.NewAuditHandler(ts.audit, logger),
		logger,
	)
	ts.server = httptest.NewServer(router.Setup())
	return ts
}

func (ts *testServer) Close() {
	ts.server.Close()
}

func (ts *testServer) do(method, path string, body any, withActor bool) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		buf.Write(data)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if withActor {
		req.Header.Set(middleware.ActorHeader, ts.actor.String())
	}
	return http.DefaultClient.Do(req)
}

func (ts *testServer) postJSON(path string, body map[string]any) (*http.Response, error) {
	return ts.do(http.MethodPost, path, body, true)
}

func (ts *testServer) patchJSON(path string, body map[string]any) (*http.Response, error) {
	return ts.do(http.MethodPatch, path, body, true)
}

func (ts *testServer) deleteRequest(path string) (*http.Response, error) {
	return ts.do(http.MethodDelete, path, nil, true)
}

func expectStatus(t *testing.T, resp *http.Response, err error, want int) {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != want {
		t.Errorf("expected %d, got %d", want, resp.StatusCode)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.server.URL + "/health")
	expectStatus(t, resp, err, http.StatusOK)
	resp.Body.Close()
}

func TestGetHierarchy_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	branchID := uuid.New()
	ts.hierarchy.result = &domain.Hierarchy{
		Branches: []domain.BranchNode{{
			BranchRef:   domain.BranchRef{ID: branchID, Name: "Sydney"},
			Departments: []domain.DepartmentNode{},
		}},
		Stats: domain.HierarchyStats{Branches: 1, OrphanedDepartments: 2},
	}

	resp, err := http.Get(ts.server.URL + "/hierarchy")
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	var result struct {
		Hierarchy []struct {
			ID   uuid.UUID `json:"id"`
			Name string    `json:"name"`
		} `json:"hierarchy"`
		Stats struct {
			Branches            int `json:"branches"`
			OrphanedDepartments int `json:"orphaned_departments"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Hierarchy) != 1 || result.Hierarchy[0].Name != "Sydney" {
		t.Errorf("unexpected hierarchy: %+v", result.Hierarchy)
	}
	if result.Stats.OrphanedDepartments != 2 {
		t.Errorf("expected 2 orphaned departments, got %d", result.Stats.OrphanedDepartments)
	}
}

func TestGetHierarchy_Unavailable(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.hierarchy.err = &domain.FetchError{Level: domain.LevelManagers, Err: context.DeadlineExceeded}

	resp, err := http.Get(ts.server.URL + "/hierarchy")
	expectStatus(t, resp, err, http.StatusServiceUnavailable)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "hierarchy view is unavailable" {
		t.Errorf("unexpected error %q", body.Error)
	}
	if body.Message != "failed levels: managers" {
		t.Errorf("expected failed level in message, got %q", body.Message)
	}
}

func TestGetHierarchy_UnavailableHidesDriverText(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.hierarchy.err = errors.Join(
		&domain.FetchError{Level: domain.LevelBranches, Err: errors.New("no such table: branches")},
		&domain.FetchError{Level: domain.LevelDepartments, Err: errors.New(`pq: relation "departments" does not exist`)},
	)

	resp, err := http.Get(ts.server.URL + "/hierarchy")
	expectStatus(t, resp, err, http.StatusServiceUnavailable)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Message != "failed levels: branches, departments" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if strings.Contains(body.Message, "no such table") || strings.Contains(body.Message, "does not exist") {
		t.Errorf("driver text leaked into response: %q", body.Message)
	}
}

func TestGetHierarchy_MethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/hierarchy", map[string]any{})
	expectStatus(t, resp, err, http.StatusMethodNotAllowed)
	resp.Body.Close()
}

func TestGetOrphans(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.hierarchy.report = &domain.OrphanReport{
		Departments: []domain.DepartmentRef{{ID: uuid.New(), Name: "D2"}},
		Managers:    []domain.ManagerRef{},
	}

	resp, err := http.Get(ts.server.URL + "/hierarchy/orphans")
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	var report domain.OrphanReport
	json.NewDecoder(resp.Body).Decode(&report)
	if len(report.Departments) != 1 || report.Departments[0].Name != "D2" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestValidateHierarchy_InvalidIsNotAnError(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.validator.result = domain.ValidationResult{
		Valid:   false,
		Message: domain.MsgBranchMismatch,
		Reason:  domain.ReasonBranchMismatch,
	}
	branchID, deptID := uuid.New(), uuid.New()

	resp, err := ts.postJSON("/hierarchy/validate", map[string]any{
		"branch_id":     branchID,
		"department_id": deptID,
	})
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	var result domain.ValidationResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Valid || result.Message != domain.MsgBranchMismatch {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(ts.validator.calls) != 1 || ts.validator.calls[0].ManagerID != nil {
		t.Errorf("unexpected validator calls: %+v", ts.validator.calls)
	}
	if ts.validator.calls[0].BranchID != branchID || ts.validator.calls[0].DepartmentID != deptID {
		t.Errorf("ids were not passed through")
	}
}

func TestValidateHierarchy_ServerError(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.validator.result = domain.ValidationResult{Message: domain.MsgServerError, Reason: domain.ReasonServerError}

	resp, err := ts.postJSON("/hierarchy/validate", map[string]any{
		"branch_id":     uuid.New(),
		"department_id": uuid.New(),
		"manager_id":    uuid.New(),
	})
	expectStatus(t, resp, err, http.StatusServiceUnavailable)
	resp.Body.Close()
}

func TestValidateHierarchy_InvalidJSON(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.server.URL+"/hierarchy/validate", "application/json", bytes.NewBufferString(`{"branch_id":"nope"}`))
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()
}

func TestCreateBranch_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/branches/", map[string]any{"name": "Sydney"})
	expectStatus(t, resp, err, http.StatusCreated)
	defer resp.Body.Close()

	var branch domain.Branch
	json.NewDecoder(resp.Body).Decode(&branch)
	if branch.Name != "Sydney" {
		t.Errorf("expected name 'Sydney', got '%s'", branch.Name)
	}
	if len(ts.branches.actors) != 1 || ts.branches.actors[0].ID != ts.actor {
		t.Errorf("actor was not passed to the service: %+v", ts.branches.actors)
	}
}

func TestCreateBranch_WithoutActor(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.do(http.MethodPost, "/branches/", map[string]any{"name": "Sydney"}, false)
	expectStatus(t, resp, err, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestCreateBranch_MalformedActor(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.server.URL+"/branches/", bytes.NewBufferString(`{"name":"Sydney"}`))
	req.Header.Set(middleware.ActorHeader, "not-a-uuid")
	resp, err := http.DefaultClient.Do(req)
	expectStatus(t, resp, err, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestCreateBranch_EmptyName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/branches/", map[string]any{"name": ""})
	expectStatus(t, resp, err, http.StatusBadRequest)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "validation error" || body.Message != "name is required" {
		t.Errorf("unexpected error body: %+v", body)
	}
}

func TestCreateBranch_DuplicateName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/branches/", map[string]any{"name": "Sydney"})
	expectStatus(t, resp, err, http.StatusCreated)
	resp.Body.Close()

	resp, err = ts.postJSON("/branches/", map[string]any{"name": "sydney"})
	expectStatus(t, resp, err, http.StatusConflict)
	resp.Body.Close()
}

func TestCreateBranch_InvalidJSON(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.server.URL+"/branches/", "application/json", bytes.NewBufferString("invalid"))
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()
}

func TestBranch_GetUpdateDelete(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/branches/", map[string]any{"name": "Sydney"})
	expectStatus(t, resp, err, http.StatusCreated)
	var created domain.Branch
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	path := "/branches/" + created.ID.String()

	resp, err = http.Get(ts.server.URL + path)
	expectStatus(t, resp, err, http.StatusOK)
	resp.Body.Close()

	resp, err = ts.patchJSON(path, map[string]any{"name": "Sydney CBD"})
	expectStatus(t, resp, err, http.StatusOK)
	var updated domain.Branch
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Name != "Sydney CBD" {
		t.Errorf("expected 'Sydney CBD', got '%s'", updated.Name)
	}

	resp, err = ts.deleteRequest(path)
	expectStatus(t, resp, err, http.StatusOK)
	var removed domain.Branch
	json.NewDecoder(resp.Body).Decode(&removed)
	resp.Body.Close()
	if removed.ID != created.ID {
		t.Errorf("expected removed record to be returned")
	}

	resp, err = http.Get(ts.server.URL + path)
	expectStatus(t, resp, err, http.StatusNotFound)
	resp.Body.Close()
}

func TestListBranches_EmptyIsArray(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.server.URL + "/branches/")
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&raw)
	if string(raw["items"]) != "[]" {
		t.Errorf("expected empty array, got %s", raw["items"])
	}
}

func TestGetBranch_InvalidID(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.server.URL + "/branches/abc")
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()
}

func TestBranch_UnknownSubpath(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.server.URL + "/branches/" + uuid.NewString() + "/departments")
	expectStatus(t, resp, err, http.StatusNotFound)
	resp.Body.Close()
}

func TestListDepartments_BranchFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	branchID := uuid.New()
	resp, err := http.Get(ts.server.URL + "/departments/?branch_id=" + branchID.String())
	expectStatus(t, resp, err, http.StatusOK)
	resp.Body.Close()

	if ts.departments.lastBranchFilter == nil || *ts.departments.lastBranchFilter != branchID {
		t.Errorf("branch filter was not passed through")
	}

	resp, err = http.Get(ts.server.URL + "/departments/?branch_id=bad")
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()
}

func TestCreateDepartment_BranchNotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/departments/", map[string]any{"name": "Engineering", "branch_id": uuid.New()})
	expectStatus(t, resp, err, http.StatusNotFound)
	resp.Body.Close()
}

func TestUpdateDepartment_NullClearsBranch(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.patchJSON("/departments/"+uuid.NewString(), map[string]any{"branch_id": nil})
	expectStatus(t, resp, err, http.StatusOK)
	resp.Body.Close()

	req := ts.departments.lastUpdate
	if req == nil || !req.BranchID.Set || req.BranchID.Value != nil {
		t.Errorf("expected explicit null branch_id, got %+v", req)
	}
	if req.ManagerID.Set {
		t.Errorf("manager_id was not in the body and must stay unset")
	}
}

func TestDeleteDepartment_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.deleteRequest("/departments/" + uuid.NewString())
	expectStatus(t, resp, err, http.StatusNotFound)
	resp.Body.Close()
}

func TestListManagers_Filters(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	branchID, deptID := uuid.New(), uuid.New()
	resp, err := http.Get(fmt.Sprintf("%s/managers/?branch_id=%s&department_id=%s", ts.server.URL, branchID, deptID))
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	filter := ts.managers.lastFilter
	if filter.BranchID == nil || *filter.BranchID != branchID || filter.DepartmentID == nil || *filter.DepartmentID != deptID {
		t.Errorf("filters were not passed through: %+v", filter)
	}

	var list dto.ManagerListResponse
	json.NewDecoder(resp.Body).Decode(&list)
	if list.Count != 1 || len(list.Items) != 1 {
		t.Errorf("expected 1 manager, got %d", list.Count)
	}
	if !list.Enriched || list.BranchFilterSkipped {
		t.Errorf("unexpected completeness flags: %+v", list)
	}
}

func TestListManagers_ReducedShapeIsFlagged(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()
	ts.managers.reduced = true

	resp, err := http.Get(ts.server.URL + "/managers/?branch_id=" + uuid.NewString())
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&raw)
	if string(raw["enriched"]) != "false" {
		t.Errorf("expected enriched=false, got %s", raw["enriched"])
	}
	if string(raw["branch_filter_skipped"]) != "true" {
		t.Errorf("expected branch_filter_skipped=true, got %s", raw["branch_filter_skipped"])
	}
	if string(raw["count"]) != "1" {
		t.Errorf("expected managers to be returned, got count %s", raw["count"])
	}
}

func TestCreateManager_Errors(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.postJSON("/managers/", map[string]any{
		"first_name": "Ken", "last_name": "Thompson", "email": "ken@example.com", "role": "Engineer",
	})
	expectStatus(t, resp, err, http.StatusUnprocessableEntity)
	resp.Body.Close()

	resp, err = ts.postJSON("/managers/", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "role": domain.RoleManager,
	})
	expectStatus(t, resp, err, http.StatusConflict)
	resp.Body.Close()
}

func TestManager_MethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := ts.do(http.MethodPut, "/managers/"+uuid.NewString(), map[string]any{}, true)
	expectStatus(t, resp, err, http.StatusMethodNotAllowed)
	resp.Body.Close()
}

func TestListAuditLogs_Filters(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	ts.audit.entries = []domain.AuditLog{{
		ID:              uuid.New(),
		Table:           domain.TableBranches,
		Action:          domain.ActionInsert,
		ActorEmail:      domain.UnknownActor,
		ActorResolution: domain.ActorRelationUnavailable,
	}}

	resp, err := http.Get(ts.server.URL + "/audit-logs?table_name=branches&action=insert&limit=5")
	expectStatus(t, resp, err, http.StatusOK)
	defer resp.Body.Close()

	filter := ts.audit.lastFilter
	if filter.TableName == nil || *filter.TableName != domain.TableBranches {
		t.Errorf("table filter was not passed through")
	}
	if filter.Action == nil || *filter.Action != domain.ActionInsert {
		t.Errorf("action filter was not normalized")
	}
	if filter.Limit != 5 {
		t.Errorf("expected limit 5, got %d", filter.Limit)
	}

	var list dto.ListResponse[domain.AuditLog]
	json.NewDecoder(resp.Body).Decode(&list)
	if list.Count != 1 || list.Items[0].ActorResolution != domain.ActorRelationUnavailable {
		t.Errorf("unexpected audit list: %+v", list)
	}
}

func TestListAuditLogs_BadQuery(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.server.URL + "/audit-logs?limit=many")
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()

	resp, err = http.Get(ts.server.URL + "/audit-logs?action=patch")
	expectStatus(t, resp, err, http.StatusBadRequest)
	resp.Body.Close()
}
