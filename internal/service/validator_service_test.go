package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

func TestValidateHierarchy_SydneyEngineering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b1 := f.branch(t, "Sydney")
	d1 := f.department(t, "Engineering", &b1.ID)
	m1 := f.manager(t, "Ada", "Lovelace", &d1.ID)

	result := f.validator.ValidateHierarchy(ctx, b1.ID, d1.ID, &m1.ID)
	require.Equal(t, domain.ValidationResult{Valid: true}, result)

	result = f.validator.ValidateHierarchy(ctx, b1.ID, d1.ID, &uuid.Nil)
	require.False(t, result.Valid)
	require.Equal(t, "Manager not found", result.Message)
	require.Equal(t, domain.ReasonManagerNotFound, result.Reason)
}

func TestValidateHierarchy_TruthTable(t *testing.T) {
	f := newFixture(t)

	sydney := f.branch(t, "Sydney")
	perth := f.branch(t, "Perth")
	eng := f.department(t, "Engineering", &sydney.ID)
	ops := f.department(t, "Operations", &sydney.ID)
	floating := f.department(t, "Floating", nil)
	ada := f.manager(t, "Ada", "Lovelace", &eng.ID)
	grace := f.manager(t, "Grace", "Hopper", &ops.ID)
	loose := f.manager(t, "Loose", "End", nil)
	engineer := f.rawManager(t, "Ken", "Thompson", "Engineer", &eng.ID)

	tests := []struct {
		name       string
		branchID   uuid.UUID
		deptID     uuid.UUID
		managerID  *uuid.UUID
		wantReason domain.ValidationReason
		wantMsg    string
	}{
		{"department only", sydney.ID, eng.ID, nil, domain.ReasonNone, ""},
		{"full chain", sydney.ID, eng.ID, &ada.ID, domain.ReasonNone, ""},
		{"unknown department", sydney.ID, uuid.New(), nil, domain.ReasonDepartmentNotFound, domain.MsgDepartmentNotFound},
		{"department in other branch", perth.ID, eng.ID, nil, domain.ReasonBranchMismatch, domain.MsgBranchMismatch},
		{"department without branch", sydney.ID, floating.ID, nil, domain.ReasonBranchMismatch, domain.MsgBranchMismatch},
		{"branch checked before manager", perth.ID, eng.ID, ptr(uuid.New()), domain.ReasonBranchMismatch, domain.MsgBranchMismatch},
		{"unknown manager", sydney.ID, eng.ID, ptr(uuid.New()), domain.ReasonManagerNotFound, domain.MsgManagerNotFound},
		{"employee without manager role", sydney.ID, eng.ID, &engineer.ID, domain.ReasonManagerNotFound, domain.MsgManagerNotFound},
		// Руководитель соседнего отдела того же филиала не подходит
		{"manager of sibling department", sydney.ID, eng.ID, &grace.ID, domain.ReasonDepartmentMismatch, domain.MsgDepartmentMismatch},
		{"manager without department", sydney.ID, eng.ID, &loose.ID, domain.ReasonDepartmentMismatch, domain.MsgDepartmentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.validator.ValidateHierarchy(context.Background(), tt.branchID, tt.deptID, tt.managerID)
			require.Equal(t, tt.wantReason == domain.ReasonNone, result.Valid)
			require.Equal(t, tt.wantReason, result.Reason)
			require.Equal(t, tt.wantMsg, result.Message)
			require.False(t, result.IsServerError())
		})
	}
}

func TestValidateHierarchy_ServerErrorIsDistinct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sydney := f.branch(t, "Sydney")
	eng := f.department(t, "Engineering", &sydney.ID)
	testdb.Drop(t, f.db, domain.TableDepartments)

	result := f.validator.ValidateHierarchy(ctx, sydney.ID, eng.ID, nil)
	require.False(t, result.Valid)
	require.True(t, result.IsServerError())
	require.Equal(t, domain.MsgServerError, result.Message)
}

func TestValidateHierarchy_ManagerLookupServerError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sydney := f.branch(t, "Sydney")
	eng := f.department(t, "Engineering", &sydney.ID)
	ada := f.manager(t, "Ada", "Lovelace", &eng.ID)
	testdb.Drop(t, f.db, domain.TableEmployees)

	result := f.validator.ValidateHierarchy(ctx, sydney.ID, eng.ID, &ada.ID)
	require.Equal(t, domain.ReasonServerError, result.Reason)
}
