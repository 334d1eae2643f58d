package authz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/logger"
	"github.com/mahmudadem/erpcore/pkg/perm"
)

// Service manages roles and memberships inside a tenant and enforces the
// protected operations: system roles cannot be deleted, roles with active
// assignees cannot be deleted, and the owner membership can be neither
// disabled, reassigned nor removed.
//
// Every mutation of a role's grants or modules triggers a synchronous
// re-resolution of its cached permission set before the call returns.
type Service struct {
	roles       RoleStore
	memberships MembershipStore
	resolver    *Resolver
	log         *slog.Logger
}

// NewService builds the management service. log may be nil.
func NewService(roles RoleStore, memberships MembershipStore, resolver *Resolver, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{roles: roles, memberships: memberships, resolver: resolver, log: log}
}

// CreateRoleParams describes a custom role to create.
type CreateRoleParams struct {
	Name        string
	Description string
	Permissions []string
	Modules     []string
}

// CreateRole creates a non-system role and resolves its permission cache.
func (s *Service) CreateRole(ctx context.Context, tenantID uuid.UUID, params CreateRoleParams) (Role, error) {
	if params.Name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", ErrValidation)
	}

	now := time.Now().UTC()
	role := Role{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        params.Name,
		Description: params.Description,
		Permissions: perm.Normalize(params.Permissions),
		Modules:     params.Modules,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return Role{}, fmt.Errorf("create role: %w", err)
	}
	if _, err := s.resolver.ResolveRole(ctx, tenantID, role.ID); err != nil {
		// A role without a resolved cache must not linger; compensate the
		// create before reporting the failure.
		if derr := s.roles.Delete(ctx, tenantID, role.ID); derr != nil {
			s.log.ErrorContext(ctx, "failed to delete role after resolution failure",
				logger.TenantID(tenantID), logger.RoleID(role.ID), logger.Error(derr))
		}
		return Role{}, err
	}

	return s.roles.Get(ctx, tenantID, role.ID)
}

// UpdateRoleGrants replaces a role's explicit grants and attached modules
// and re-resolves its cache before returning.
func (s *Service) UpdateRoleGrants(ctx context.Context, tenantID uuid.UUID, roleID string, permissions, modules []string) (Role, error) {
	role, err := s.roles.Get(ctx, tenantID, roleID)
	if err != nil {
		return Role{}, err
	}

	role.Permissions = perm.Normalize(permissions)
	role.Modules = modules
	role.UpdatedAt = time.Now().UTC()

	if err := s.roles.Update(ctx, role); err != nil {
		return Role{}, fmt.Errorf("update role %s: %w", roleID, err)
	}
	if _, err := s.resolver.ResolveRole(ctx, tenantID, roleID); err != nil {
		return Role{}, err
	}

	return s.roles.Get(ctx, tenantID, roleID)
}

// ListRoles returns every role in the tenant.
func (s *Service) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]Role, error) {
	return s.roles.ListByTenant(ctx, tenantID)
}

// DeleteRole removes a custom role. System roles and roles that still have
// assignees are protected.
func (s *Service) DeleteRole(ctx context.Context, tenantID uuid.UUID, roleID string) error {
	role, err := s.roles.Get(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if role.System {
		return ErrSystemRole
	}

	assignees, err := s.memberships.ListByRole(ctx, tenantID, roleID)
	if err != nil {
		return fmt.Errorf("list assignees of role %s: %w", roleID, err)
	}
	if len(assignees) > 0 {
		return ErrRoleInUse
	}

	return s.roles.Delete(ctx, tenantID, roleID)
}

// AddMember assigns a user to the tenant with the given role. The role must
// exist; owner memberships are created only by the provisioning saga.
func (s *Service) AddMember(ctx context.Context, tenantID, userID uuid.UUID, roleID string) (Membership, error) {
	if _, err := s.roles.Get(ctx, tenantID, roleID); err != nil {
		return Membership{}, err
	}

	now := time.Now().UTC()
	m := Membership{
		UserID:    userID,
		TenantID:  tenantID,
		RoleID:    roleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return Membership{}, fmt.Errorf("create membership: %w", err)
	}
	return m, nil
}

// ListMembers returns every membership in the tenant.
func (s *Service) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]Membership, error) {
	return s.memberships.ListByTenant(ctx, tenantID)
}

// ChangeMemberRole reassigns a member to a different role.
// The owner membership cannot be reassigned.
func (s *Service) ChangeMemberRole(ctx context.Context, tenantID, userID uuid.UUID, roleID string) error {
	m, err := s.memberships.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if m.IsOwner {
		return ErrOwnerProtected
	}
	if _, err := s.roles.Get(ctx, tenantID, roleID); err != nil {
		return err
	}

	m.RoleID = roleID
	m.UpdatedAt = time.Now().UTC()
	return s.memberships.Update(ctx, m)
}

// SetMemberDisabled enables or disables a membership. A disabled membership
// keeps its role but fails all authorization checks. Owners cannot be
// disabled.
func (s *Service) SetMemberDisabled(ctx context.Context, tenantID, userID uuid.UUID, disabled bool) error {
	m, err := s.memberships.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if m.IsOwner && disabled {
		return ErrOwnerProtected
	}

	m.Disabled = disabled
	m.UpdatedAt = time.Now().UTC()
	return s.memberships.Update(ctx, m)
}

// RemoveMember deletes a membership. The owner membership is removed only
// when the tenant itself is deleted or rolled back.
func (s *Service) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	m, err := s.memberships.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if m.IsOwner {
		return ErrOwnerProtected
	}

	s.log.InfoContext(ctx, "removing member",
		logger.TenantID(tenantID), logger.UserID(userID), logger.RoleID(m.RoleID))
	return s.memberships.Delete(ctx, userID, tenantID)
}
