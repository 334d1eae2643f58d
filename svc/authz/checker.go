package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/perm"
)

// Checker decides whether an actor may perform a privileged operation
// inside a tenant. Every privileged call path goes through it.
//
// Decision order, first match wins:
//  1. platform-wide administrators are allowed unconditionally
//  2. no membership in the tenant: deny
//  3. owners are allowed unconditionally, even while disabled (disabling
//     an owner is itself a forbidden operation at the management layer)
//  4. disabled memberships are denied
//  5. the membership's role must hold a grant satisfying the required
//     permission: "*", an exact match, or a coarser hierarchical grant
type Checker struct {
	memberships MembershipStore
	roles       RoleStore
	resolver    *Resolver
	admins      AdminSource // optional; nil means no global admins
}

// NewChecker builds a Checker. admins may be nil.
func NewChecker(memberships MembershipStore, roles RoleStore, resolver *Resolver, admins AdminSource) *Checker {
	return &Checker{
		memberships: memberships,
		roles:       roles,
		resolver:    resolver,
		admins:      admins,
	}
}

// Authorize returns nil when the actor holds the required permission in the
// tenant and a forbidden-class error (errors.Is ErrForbidden) otherwise.
// Store failures propagate as-is and are not denials.
func (c *Checker) Authorize(ctx context.Context, actorID, tenantID uuid.UUID, required string) error {
	if c.admins != nil {
		isAdmin, err := c.admins.IsGlobalAdmin(ctx, actorID)
		if err != nil {
			return fmt.Errorf("check global admin: %w", err)
		}
		if isAdmin {
			return nil
		}
	}

	m, err := c.memberships.Get(ctx, actorID, tenantID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("load membership: %w", err)
	}

	if m.IsOwner {
		return nil
	}
	if m.Disabled {
		return ErrMembershipDisabled
	}

	role, err := c.roles.Get(ctx, tenantID, m.RoleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("load role %s: %w", m.RoleID, err)
	}

	resolved := role.Resolved
	if resolved == nil {
		// Cache not populated yet; fall back to a pure computation.
		resolved = c.resolver.Resolve(role)
	}
	if len(resolved) == 0 {
		return ErrPermissionDenied
	}

	if !perm.Has(resolved, required) {
		return ErrPermissionDenied
	}
	return nil
}

// IsAllowed is the allow/deny form of Authorize. Forbidden-class errors map
// to false; infrastructure failures are returned as errors.
func (c *Checker) IsAllowed(ctx context.Context, actorID, tenantID uuid.UUID, required string) (bool, error) {
	err := c.Authorize(ctx, actorID, tenantID, required)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}
