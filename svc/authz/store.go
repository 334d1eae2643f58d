package authz

import (
	"context"

	"github.com/google/uuid"
)

// RoleStore persists tenant-scoped roles.
//
// Deletes are idempotent: removing an absent role is a no-op, not an
// error, so the saga's compensating actions are safe to retry.
type RoleStore interface {
	// Create inserts a role. Returns ErrRoleExists when the
	// (tenant, role id) pair is already present.
	Create(ctx context.Context, role Role) error

	// Get returns the role or ErrRoleNotFound.
	Get(ctx context.Context, tenantID uuid.UUID, roleID string) (Role, error)

	// ListByTenant returns every role of the tenant.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Role, error)

	// Update replaces the mutable fields of an existing role.
	// Returns ErrRoleNotFound when the role is absent.
	Update(ctx context.Context, role Role) error

	// SetResolved atomically replaces the cached resolved permission set.
	// Resolution is pure and deterministic, so concurrent identical writes
	// are harmless. Returns ErrRoleNotFound when the role is absent.
	SetResolved(ctx context.Context, tenantID uuid.UUID, roleID string, resolved []string) error

	// Delete removes the role if it exists.
	Delete(ctx context.Context, tenantID uuid.UUID, roleID string) error
}

// MembershipStore persists user-to-tenant assignments.
//
// Create must be atomic on the (user, tenant) key: two concurrent creates
// for the same pair must yield exactly one record and one ErrMembershipExists.
// Deletes are idempotent for the same reason as RoleStore's.
type MembershipStore interface {
	Create(ctx context.Context, m Membership) error

	// Get returns the membership or ErrMembershipNotFound.
	Get(ctx context.Context, userID, tenantID uuid.UUID) (Membership, error)

	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Membership, error)

	// ListByRole returns the memberships of a tenant assigned to the role.
	ListByRole(ctx context.Context, tenantID uuid.UUID, roleID string) ([]Membership, error)

	// Update replaces the mutable fields of an existing membership.
	Update(ctx context.Context, m Membership) error

	// Delete removes the membership if it exists.
	Delete(ctx context.Context, userID, tenantID uuid.UUID) error
}

// AdminSource answers whether a user is a platform-wide administrator,
// independent of any tenant. The checker treats a nil source as "nobody".
type AdminSource interface {
	IsGlobalAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AdminSourceFunc adapts a function to the AdminSource interface.
type AdminSourceFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

func (f AdminSourceFunc) IsGlobalAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f(ctx, userID)
}

// StaticAdminSource is an AdminSource backed by a fixed id list, useful for
// bootstrap configuration and tests.
func StaticAdminSource(ids ...uuid.UUID) AdminSource {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AdminSourceFunc(func(_ context.Context, userID uuid.UUID) (bool, error) {
		_, ok := set[userID]
		return ok, nil
	})
}
