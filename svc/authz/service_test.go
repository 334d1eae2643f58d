package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/registry"
)

type svcFixture struct {
	roles       *authz.InMemRoleStore
	memberships *authz.InMemMembershipStore
	svc         *authz.Service
	tenantID    uuid.UUID
	ownerID     uuid.UUID
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	f := &svcFixture{
		roles:       authz.NewInMemRoleStore(),
		memberships: authz.NewInMemMembershipStore(),
		tenantID:    uuid.New(),
		ownerID:     uuid.New(),
	}
	f.svc = authz.NewService(f.roles, f.memberships,
		authz.NewResolver(f.roles, registry.Default()), nil)

	// System roles and the owner membership as provisioning leaves them.
	require.NoError(t, f.roles.Create(ctx, authz.Role{
		ID: authz.RoleOwner, TenantID: f.tenantID, Name: "Owner",
		Permissions: []string{"*"}, System: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.roles.Create(ctx, authz.Role{
		ID: authz.RoleMember, TenantID: f.tenantID, Name: "Member",
		System: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.memberships.Create(ctx, authz.Membership{
		UserID: f.ownerID, TenantID: f.tenantID, RoleID: authz.RoleOwner,
		IsOwner: true, CreatedAt: now, UpdatedAt: now,
	}))
	return f
}

func TestServiceRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create resolves the cache synchronously", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		role, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{
			Name:        "Warehouse Clerk",
			Permissions: []string{"inventory.items.view"},
			Modules:     []string{"inventory"},
		})
		require.NoError(t, err)
		assert.False(t, role.System)
		assert.Contains(t, role.Resolved, "inventory.items.view")
		assert.Contains(t, role.Resolved, "inventory.warehouses.manage")
	})

	t.Run("create requires a name", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		_, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{})
		require.ErrorIs(t, err, authz.ErrValidation)
	})

	t.Run("create compensates when resolution fails", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("cache write refused")
		roles := &resolveFailingRoleStore{
			RoleStore:  authz.NewInMemRoleStore(),
			resolveErr: boom,
		}
		svc := authz.NewService(roles, authz.NewInMemMembershipStore(),
			authz.NewResolver(roles, registry.Default()), nil)
		tenantID := uuid.New()

		_, err := svc.CreateRole(ctx, tenantID, authz.CreateRoleParams{Name: "Clerk"})
		require.ErrorIs(t, err, boom)

		// The unresolved role must not linger in the store.
		list, err := roles.ListByTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("grant update re-resolves before returning", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		role, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{
			Name: "Clerk", Permissions: []string{"inventory.items.view"},
		})
		require.NoError(t, err)

		updated, err := f.svc.UpdateRoleGrants(ctx, f.tenantID, role.ID,
			[]string{"accounting.vouchers.create"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"accounting.vouchers.create"}, updated.Resolved)
		assert.NotContains(t, updated.Resolved, "inventory.items.view")
	})

	t.Run("system roles cannot be deleted", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		err := f.svc.DeleteRole(ctx, f.tenantID, authz.RoleOwner)
		require.ErrorIs(t, err, authz.ErrSystemRole)
		require.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("roles in use cannot be deleted", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		role, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{Name: "Clerk"})
		require.NoError(t, err)
		_, err = f.svc.AddMember(ctx, f.tenantID, uuid.New(), role.ID)
		require.NoError(t, err)

		require.ErrorIs(t, f.svc.DeleteRole(ctx, f.tenantID, role.ID), authz.ErrRoleInUse)
	})

	t.Run("unused custom role deletes cleanly", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		role, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{Name: "Clerk"})
		require.NoError(t, err)
		require.NoError(t, f.svc.DeleteRole(ctx, f.tenantID, role.ID))

		_, err = f.roles.Get(ctx, f.tenantID, role.ID)
		require.ErrorIs(t, err, authz.ErrRoleNotFound)
	})
}

func TestServiceMembers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("add member requires an existing role", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		_, err := f.svc.AddMember(ctx, f.tenantID, uuid.New(), "ghost")
		require.ErrorIs(t, err, authz.ErrRoleNotFound)
	})

	t.Run("duplicate membership is rejected", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)
		user := uuid.New()

		_, err := f.svc.AddMember(ctx, f.tenantID, user, authz.RoleMember)
		require.NoError(t, err)
		_, err = f.svc.AddMember(ctx, f.tenantID, user, authz.RoleMember)
		require.ErrorIs(t, err, authz.ErrMembershipExists)
	})

	t.Run("role reassignment", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)
		user := uuid.New()

		role, err := f.svc.CreateRole(ctx, f.tenantID, authz.CreateRoleParams{Name: "Clerk"})
		require.NoError(t, err)
		_, err = f.svc.AddMember(ctx, f.tenantID, user, authz.RoleMember)
		require.NoError(t, err)

		require.NoError(t, f.svc.ChangeMemberRole(ctx, f.tenantID, user, role.ID))

		m, err := f.memberships.Get(ctx, user, f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, role.ID, m.RoleID)
	})

	t.Run("owner cannot be reassigned", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		err := f.svc.ChangeMemberRole(ctx, f.tenantID, f.ownerID, authz.RoleMember)
		require.ErrorIs(t, err, authz.ErrOwnerProtected)
	})

	t.Run("disable and re-enable", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)
		user := uuid.New()

		_, err := f.svc.AddMember(ctx, f.tenantID, user, authz.RoleMember)
		require.NoError(t, err)

		require.NoError(t, f.svc.SetMemberDisabled(ctx, f.tenantID, user, true))
		m, err := f.memberships.Get(ctx, user, f.tenantID)
		require.NoError(t, err)
		assert.True(t, m.Disabled)
		assert.Equal(t, authz.RoleMember, m.RoleID) // role survives disabling

		require.NoError(t, f.svc.SetMemberDisabled(ctx, f.tenantID, user, false))
		m, err = f.memberships.Get(ctx, user, f.tenantID)
		require.NoError(t, err)
		assert.False(t, m.Disabled)
	})

	t.Run("owner cannot be disabled", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		err := f.svc.SetMemberDisabled(ctx, f.tenantID, f.ownerID, true)
		require.ErrorIs(t, err, authz.ErrOwnerProtected)
	})

	t.Run("owner cannot be removed", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)

		err := f.svc.RemoveMember(ctx, f.tenantID, f.ownerID)
		require.ErrorIs(t, err, authz.ErrOwnerProtected)
		require.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("remove member", func(t *testing.T) {
		t.Parallel()
		f := newSvcFixture(t)
		user := uuid.New()

		_, err := f.svc.AddMember(ctx, f.tenantID, user, authz.RoleMember)
		require.NoError(t, err)
		require.NoError(t, f.svc.RemoveMember(ctx, f.tenantID, user))

		_, err = f.memberships.Get(ctx, user, f.tenantID)
		require.ErrorIs(t, err, authz.ErrMembershipNotFound)
	})
}

// resolveFailingRoleStore accepts role creation but refuses to persist the
// resolved permission cache.
type resolveFailingRoleStore struct {
	authz.RoleStore
	resolveErr error
}

func (s *resolveFailingRoleStore) SetResolved(ctx context.Context, tenantID uuid.UUID, roleID string, resolved []string) error {
	return s.resolveErr
}
