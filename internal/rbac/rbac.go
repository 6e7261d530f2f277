/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package rbac evaluates role-based capabilities for the maintenance client.
//
// The capability table is static and defined at process start; the rendering
// layer consults it before showing or enabling controls. Entity-aware checks
// (who may touch a given request) are pure functions of the identity and the
// fetched record — mutation always goes through the API, never through here.
package rbac

import (
	"fmt"
	"strings"
	"time"

	"github.com/maintdesk/maintdesk/internal/api"
)

// Role is the coarse-grained identity class driving permissions.
type Role string

const (
	// RoleUser can file requests and follow their own tickets.
	RoleUser Role = "user"

	// RoleTechnician additionally works tickets assigned to them.
	RoleTechnician Role = "technician"

	// RoleAdmin can do everything, including assignment and user management.
	RoleAdmin Role = "admin"
)

// Capability names a boolean permission checked before an action or control.
type Capability string

const (
	CapViewDashboard       Capability = "dashboard:view"
	CapCreateRequests      Capability = "requests:create"
	CapViewAllRequests     Capability = "requests:view-all"
	CapUpdateRequestStatus Capability = "requests:update-status"
	CapAssignRequests      Capability = "requests:assign"
	CapManageEquipment     Capability = "equipment:manage"
	CapManageUsers         Capability = "users:manage"
	CapViewReports         Capability = "reports:view"
)

// Identity is the client-held user record, derived from the login response or
// reconstructed from access-token claims. Role is always normalized.
type Identity struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        Role      `json:"role"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	ExpiresAt   time.Time `json:"-"`
}

// DisplayName returns the best human-readable name for the identity.
func (u *Identity) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Username
}

// Decision is the result of an explainable capability check.
type Decision struct {
	Allowed bool
	Reason  string
}

// NormalizeRole maps a raw role claim to a known Role. Unknown claims default
// to user; the legacy "superadmin" spelling folds to admin.
func NormalizeRole(claim string) Role {
	switch strings.ToLower(strings.TrimSpace(claim)) {
	case "admin", "superadmin":
		return RoleAdmin
	case "technician":
		return RoleTechnician
	default:
		return RoleUser
	}
}

// EffectiveRole resolves the identity's role with fixed precedence:
// superuser/staff flag overrides the explicit role claim, which overrides the
// user default. Staff status is the authoritative admin signal.
func EffectiveRole(u *Identity) Role {
	if u == nil {
		return RoleUser
	}
	if u.IsSuperuser || u.IsStaff {
		return RoleAdmin
	}
	switch u.Role {
	case RoleAdmin, RoleTechnician, RoleUser:
		return u.Role
	default:
		return RoleUser
	}
}

// Can reports whether the identity holds the named capability.
func Can(u *Identity, cap Capability) bool {
	return rolePermits(EffectiveRole(u), cap)
}

// Decide is Can with an explanation attached, for audit trails and UI hints.
func Decide(u *Identity, cap Capability) Decision {
	if u == nil {
		return Decision{Allowed: false, Reason: "no user identity"}
	}
	role := EffectiveRole(u)
	if !rolePermits(role, cap) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("role %s does not grant %s", role, cap),
		}
	}
	return Decision{
		Allowed: true,
		Reason:  fmt.Sprintf("granted by role %s", role),
	}
}

// AllCapabilities lists every defined capability in display order.
func AllCapabilities() []Capability {
	return []Capability{
		CapViewDashboard,
		CapCreateRequests,
		CapViewAllRequests,
		CapUpdateRequestStatus,
		CapAssignRequests,
		CapManageEquipment,
		CapManageUsers,
		CapViewReports,
	}
}

// Capabilities returns the full capability map for the identity's effective
// role, for rendering a permissions overview.
func Capabilities(u *Identity) map[Capability]bool {
	all := AllCapabilities()
	role := EffectiveRole(u)
	out := make(map[Capability]bool, len(all))
	for _, c := range all {
		out[c] = rolePermits(role, c)
	}
	return out
}

// CanUpdateRequestStatus reports whether the identity may change the status of
// the given request. Admins always can; a technician only on tickets assigned
// to them that are still live (pending, assigned, or in progress).
func CanUpdateRequestStatus(u *Identity, req *api.MaintenanceRequest) bool {
	if u == nil || req == nil {
		return false
	}
	switch EffectiveRole(u) {
	case RoleAdmin:
		return true
	case RoleTechnician:
		if req.AssignedTechnician != u.ID {
			return false
		}
		switch req.Status {
		case api.StatusPending, api.StatusAssigned, api.StatusInProgress:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// CanCancelRequest reports whether the identity may cancel the given request.
// Admins always can; the requester only while the ticket is still pending.
// Technicians never cancel.
func CanCancelRequest(u *Identity, req *api.MaintenanceRequest) bool {
	if u == nil || req == nil {
		return false
	}
	switch EffectiveRole(u) {
	case RoleAdmin:
		return true
	case RoleUser:
		return req.Requester == u.ID && req.Status == api.StatusPending
	default:
		return false
	}
}

// CanAssignRequest reports whether the identity may assign a technician to the
// given request: admin only, and only while the ticket is pending.
func CanAssignRequest(u *Identity, req *api.MaintenanceRequest) bool {
	if u == nil || req == nil {
		return false
	}
	return EffectiveRole(u) == RoleAdmin && req.Status == api.StatusPending
}

// rolePermits is the static role → capability table. An unknown role gets the
// user row.
func rolePermits(r Role, cap Capability) bool {
	switch r {
	case RoleAdmin:
		return true // Admin holds every capability
	case RoleTechnician:
		switch cap {
		case CapViewDashboard, CapCreateRequests, CapViewAllRequests, CapUpdateRequestStatus:
			return true
		default:
			return false
		}
	default:
		switch cap {
		case CapViewDashboard, CapCreateRequests:
			return true
		default:
			return false
		}
	}
}
