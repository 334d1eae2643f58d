package authz

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRoleStore is a thread-safe RoleStore for tests and single-process
// deployments. It makes defensive copies so callers cannot mutate stored
// state through returned values.
type InMemRoleStore struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]map[string]Role
}

func NewInMemRoleStore() *InMemRoleStore {
	return &InMemRoleStore{roles: make(map[uuid.UUID]map[string]Role)}
}

func (s *InMemRoleStore) Create(ctx context.Context, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.roles[role.TenantID]
	if !ok {
		tenant = make(map[string]Role)
		s.roles[role.TenantID] = tenant
	}
	if _, exists := tenant[role.ID]; exists {
		return ErrRoleExists
	}
	tenant[role.ID] = copyRole(role)
	return nil
}

func (s *InMemRoleStore) Get(ctx context.Context, tenantID uuid.UUID, roleID string) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[tenantID][roleID]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return copyRole(role), nil
}

func (s *InMemRoleStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant := s.roles[tenantID]
	out := make([]Role, 0, len(tenant))
	for _, role := range tenant {
		out = append(out, copyRole(role))
	}
	return out, nil
}

func (s *InMemRoleStore) Update(ctx context.Context, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.TenantID][role.ID]; !ok {
		return ErrRoleNotFound
	}
	s.roles[role.TenantID][role.ID] = copyRole(role)
	return nil
}

func (s *InMemRoleStore) SetResolved(ctx context.Context, tenantID uuid.UUID, roleID string, resolved []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[tenantID][roleID]
	if !ok {
		return ErrRoleNotFound
	}
	role.Resolved = slices.Clone(resolved)
	role.UpdatedAt = time.Now().UTC()
	s.roles[tenantID][roleID] = role
	return nil
}

func (s *InMemRoleStore) Delete(ctx context.Context, tenantID uuid.UUID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.roles[tenantID], roleID)
	return nil
}

// InMemMembershipStore is a thread-safe MembershipStore for tests and
// single-process deployments.
type InMemMembershipStore struct {
	mu      sync.RWMutex
	members map[uuid.UUID]map[uuid.UUID]Membership // tenant -> user -> membership
}

func NewInMemMembershipStore() *InMemMembershipStore {
	return &InMemMembershipStore{members: make(map[uuid.UUID]map[uuid.UUID]Membership)}
}

func (s *InMemMembershipStore) Create(ctx context.Context, m Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.members[m.TenantID]
	if !ok {
		tenant = make(map[uuid.UUID]Membership)
		s.members[m.TenantID] = tenant
	}
	if _, exists := tenant[m.UserID]; exists {
		return ErrMembershipExists
	}
	tenant[m.UserID] = m
	return nil
}

func (s *InMemMembershipStore) Get(ctx context.Context, userID, tenantID uuid.UUID) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[tenantID][userID]
	if !ok {
		return Membership{}, ErrMembershipNotFound
	}
	return m, nil
}

func (s *InMemMembershipStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant := s.members[tenantID]
	out := make([]Membership, 0, len(tenant))
	for _, m := range tenant {
		out = append(out, m)
	}
	return out, nil
}

func (s *InMemMembershipStore) ListByRole(ctx context.Context, tenantID uuid.UUID, roleID string) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Membership
	for _, m := range s.members[tenantID] {
		if m.RoleID == roleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemMembershipStore) Update(ctx context.Context, m Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[m.TenantID][m.UserID]; !ok {
		return ErrMembershipNotFound
	}
	s.members[m.TenantID][m.UserID] = m
	return nil
}

func (s *InMemMembershipStore) Delete(ctx context.Context, userID, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members[tenantID], userID)
	return nil
}

func copyRole(r Role) Role {
	r.Permissions = slices.Clone(r.Permissions)
	r.Modules = slices.Clone(r.Modules)
	r.Resolved = slices.Clone(r.Resolved)
	return r
}
