/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package rbac

import (
	"testing"

	"github.com/maintdesk/maintdesk/internal/api"
)

func TestRolePermits(t *testing.T) {
	tests := []struct {
		role    Role
		cap     Capability
		allowed bool
	}{
		// User
		{RoleUser, CapViewDashboard, true},
		{RoleUser, CapCreateRequests, true},
		{RoleUser, CapViewAllRequests, false},
		{RoleUser, CapUpdateRequestStatus, false},
		{RoleUser, CapAssignRequests, false},
		{RoleUser, CapManageEquipment, false},
		{RoleUser, CapManageUsers, false},
		{RoleUser, CapViewReports, false},

		// Technician
		{RoleTechnician, CapViewDashboard, true},
		{RoleTechnician, CapCreateRequests, true},
		{RoleTechnician, CapViewAllRequests, true},
		{RoleTechnician, CapUpdateRequestStatus, true},
		{RoleTechnician, CapAssignRequests, false},
		{RoleTechnician, CapManageEquipment, false},
		{RoleTechnician, CapManageUsers, false},

		// Admin
		{RoleAdmin, CapViewDashboard, true},
		{RoleAdmin, CapAssignRequests, true},
		{RoleAdmin, CapManageEquipment, true},
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapViewReports, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			got := rolePermits(tt.role, tt.cap)
			if got != tt.allowed {
				t.Errorf("rolePermits(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.allowed)
			}
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		claim string
		want  Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"superadmin", RoleAdmin},
		{"technician", RoleTechnician},
		{"Technician", RoleTechnician},
		{"user", RoleUser},
		{"", RoleUser},
		{"manager", RoleUser},
		{"  admin  ", RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.claim, func(t *testing.T) {
			if got := NormalizeRole(tt.claim); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %s, want %s", tt.claim, got, tt.want)
			}
		})
	}
}

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name string
		u    *Identity
		want Role
	}{
		{"nil identity", nil, RoleUser},
		{"plain user", &Identity{Role: RoleUser}, RoleUser},
		{"technician", &Identity{Role: RoleTechnician}, RoleTechnician},
		{"declared admin", &Identity{Role: RoleAdmin}, RoleAdmin},
		{"superuser overrides user role", &Identity{Role: RoleUser, IsSuperuser: true}, RoleAdmin},
		{"staff overrides technician role", &Identity{Role: RoleTechnician, IsStaff: true}, RoleAdmin},
		{"unknown role falls back to user", &Identity{Role: Role("auditor")}, RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveRole(tt.u); got != tt.want {
				t.Errorf("EffectiveRole() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	d := Decide(nil, CapViewDashboard)
	if d.Allowed {
		t.Error("expected denial for nil identity")
	}
	if d.Reason == "" {
		t.Error("expected a reason on denial")
	}

	tech := &Identity{ID: 7, Role: RoleTechnician}
	d = Decide(tech, CapUpdateRequestStatus)
	if !d.Allowed {
		t.Errorf("expected allow, got deny: %s", d.Reason)
	}

	d = Decide(tech, CapManageUsers)
	if d.Allowed {
		t.Error("expected deny for technician managing users")
	}
}

func TestCanUpdateRequestStatus(t *testing.T) {
	tech := &Identity{ID: 7, Role: RoleTechnician}
	admin := &Identity{ID: 1, Role: RoleAdmin}
	user := &Identity{ID: 3, Role: RoleUser}

	tests := []struct {
		name string
		u    *Identity
		req  *api.MaintenanceRequest
		want bool
	}{
		{"nil request", tech, nil, false},
		{"technician on own in-progress ticket", tech,
			&api.MaintenanceRequest{AssignedTechnician: 7, Status: api.StatusInProgress}, true},
		{"technician on own assigned ticket", tech,
			&api.MaintenanceRequest{AssignedTechnician: 7, Status: api.StatusAssigned}, true},
		{"technician on own completed ticket", tech,
			&api.MaintenanceRequest{AssignedTechnician: 7, Status: api.StatusCompleted}, false},
		{"technician on someone else's ticket", tech,
			&api.MaintenanceRequest{AssignedTechnician: 9, Status: api.StatusInProgress}, false},
		{"admin on any ticket", admin,
			&api.MaintenanceRequest{AssignedTechnician: 9, Status: api.StatusCompleted}, true},
		{"plain user", user,
			&api.MaintenanceRequest{Requester: 3, Status: api.StatusPending}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanUpdateRequestStatus(tt.u, tt.req); got != tt.want {
				t.Errorf("CanUpdateRequestStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanCancelRequest(t *testing.T) {
	user := &Identity{ID: 3, Role: RoleUser}
	tech := &Identity{ID: 7, Role: RoleTechnician}
	admin := &Identity{ID: 1, Role: RoleAdmin}

	tests := []struct {
		name string
		u    *Identity
		req  *api.MaintenanceRequest
		want bool
	}{
		{"requester on own pending ticket", user,
			&api.MaintenanceRequest{Requester: 3, Status: api.StatusPending}, true},
		{"requester on own in-progress ticket", user,
			&api.MaintenanceRequest{Requester: 3, Status: api.StatusInProgress}, false},
		{"requester on someone else's pending ticket", user,
			&api.MaintenanceRequest{Requester: 4, Status: api.StatusPending}, false},
		{"technician never cancels", tech,
			&api.MaintenanceRequest{Requester: 7, Status: api.StatusPending}, false},
		{"admin on anything", admin,
			&api.MaintenanceRequest{Requester: 4, Status: api.StatusCompleted}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCancelRequest(tt.u, tt.req); got != tt.want {
				t.Errorf("CanCancelRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAssignRequest(t *testing.T) {
	admin := &Identity{ID: 1, Role: RoleAdmin}
	tech := &Identity{ID: 7, Role: RoleTechnician}

	if !CanAssignRequest(admin, &api.MaintenanceRequest{Status: api.StatusPending}) {
		t.Error("admin should assign a pending ticket")
	}
	if CanAssignRequest(admin, &api.MaintenanceRequest{Status: api.StatusAssigned}) {
		t.Error("assignment is only valid while pending")
	}
	if CanAssignRequest(tech, &api.MaintenanceRequest{Status: api.StatusPending}) {
		t.Error("technician must not assign tickets")
	}
}

func TestSuperuserOverridesEntityChecks(t *testing.T) {
	// A superuser with a plain user role claim still acts as admin everywhere.
	su := &Identity{ID: 2, Role: RoleUser, IsSuperuser: true}
	req := &api.MaintenanceRequest{Requester: 99, AssignedTechnician: 98, Status: api.StatusInProgress}

	if !Can(su, CapManageUsers) {
		t.Error("superuser should hold every capability")
	}
	if !CanUpdateRequestStatus(su, req) {
		t.Error("superuser should update any ticket")
	}
	if !CanCancelRequest(su, req) {
		t.Error("superuser should cancel any ticket")
	}
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(&Identity{Role: RoleTechnician})
	if len(caps) != len(AllCapabilities()) {
		t.Fatalf("expected %d capabilities, got %d", len(AllCapabilities()), len(caps))
	}
	if !caps[CapViewAllRequests] {
		t.Error("technician should view all requests")
	}
	if caps[CapManageEquipment] {
		t.Error("technician must not manage equipment")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		u    Identity
		want string
	}{
		{"full name", Identity{FirstName: "Ada", LastName: "Chan", Username: "achan"}, "Ada Chan"},
		{"first only", Identity{FirstName: "Ada", Username: "achan"}, "Ada"},
		{"username fallback", Identity{Username: "achan"}, "achan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
