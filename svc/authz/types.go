package authz

import (
	"time"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/perm"
)

// Fixed identifiers of the roles seeded for every tenant. System roles use
// stable ids so the provisioning saga can create and compensate them
// deterministically.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Role is a tenant-scoped named set of permissions.
//
// Resolved is a derived cache of the effective permission set (explicit
// grants plus every enabled permission contributed by the attached
// modules). It is recomputed synchronously by the Resolver on every
// mutation of Permissions or Modules and must never be edited directly.
type Role struct {
	ID          string
	TenantID    uuid.UUID
	Name        string
	Description string
	Permissions []string // explicit permission grants
	Modules     []string // attached module permission bundles, by module code
	Resolved    []string // cached resolved permission set
	System      bool     // system roles cannot be deleted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasResolved reports whether the cached resolved set satisfies the
// required permission. It consults only the cache; see Checker for the
// full authorization decision.
func (r *Role) HasResolved(required string) bool {
	return perm.Has(r.Resolved, required)
}

// Membership links a user to a tenant with exactly one role.
// There is at most one membership per (user, tenant) pair.
type Membership struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	RoleID   string
	// IsOwner marks the tenant owner. Owners bypass role-based checks;
	// their membership can be neither disabled nor reassigned.
	IsOwner   bool
	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
