package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/perm"
	"github.com/mahmudadem/erpcore/svc/registry"
)

// Resolver computes a role's effective permission set and maintains the
// cached copy on the role record.
//
// Resolution is pure and deterministic, so concurrent resolutions of the
// same role converge on the same value; the cache write is a single atomic
// replace. Callers must invoke ResolveRole synchronously after every
// mutation of a role's explicit grants or attached modules — the cache is
// never refreshed in the background.
type Resolver struct {
	roles   RoleStore
	catalog *registry.Registry
}

// NewResolver builds a Resolver over the role store and the permission
// definition catalog.
func NewResolver(roles RoleStore, catalog *registry.Registry) *Resolver {
	return &Resolver{roles: roles, catalog: catalog}
}

// Resolve computes the effective permission set of a role: its explicit
// grants plus every enabled permission declared by its attached modules.
// The result is deduplicated and sorted. Pure; no stores are touched.
func (r *Resolver) Resolve(role Role) []string {
	grants := make([]string, 0, len(role.Permissions))
	grants = append(grants, role.Permissions...)
	grants = append(grants, r.catalog.EnabledPermissions(role.Modules...)...)
	return perm.Normalize(grants)
}

// ResolveRole recomputes and persists one role's cached permission set.
// It returns found=false (and no error) when the role does not exist, so
// callers can distinguish a skipped resolution from a completed one.
func (r *Resolver) ResolveRole(ctx context.Context, tenantID uuid.UUID, roleID string) (bool, error) {
	role, err := r.roles.Get(ctx, tenantID, roleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve role %s: %w", roleID, err)
	}

	resolved := r.Resolve(role)
	if err := r.roles.SetResolved(ctx, tenantID, roleID, resolved); err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			// Deleted between read and write; nothing left to cache.
			return false, nil
		}
		return false, fmt.Errorf("store resolved permissions for role %s: %w", roleID, err)
	}
	return true, nil
}

// ResolveTenant recomputes the cached permission set of every role in the
// tenant, persisting each result.
func (r *Resolver) ResolveTenant(ctx context.Context, tenantID uuid.UUID) error {
	roles, err := r.roles.ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list roles for tenant %s: %w", tenantID, err)
	}
	for _, role := range roles {
		if _, err := r.ResolveRole(ctx, tenantID, role.ID); err != nil {
			return err
		}
	}
	return nil
}
